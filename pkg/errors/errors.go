package errors

import "errors"

// ErrOptimisticLock reports that a guarded update matched zero rows: the
// record was modified, or left the expected state, by a concurrent caller.
var ErrOptimisticLock = errors.New("record modified by a concurrent operation")
