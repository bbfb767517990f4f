package service

import (
	"fmt"
	"sort"
	"time"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// timestampLayout is the wire format for timestamps.
const timestampLayout = "2006-01-02T15:04:05Z"

// parseDate parses a YYYY-MM-DD date, truncated to midnight UTC.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// rangesOverlap reports whether the inclusive date ranges [aStart,aEnd] and
// [bStart,bEnd] intersect. A nil end means the range extends indefinitely.
// This is the single place open-ended ranges are interpreted.
func rangesOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && aEnd.Before(bStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(aStart) {
		return false
	}
	return true
}

// laterStart returns the later of two dates, the first day both ranges hold.
func laterStart(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// findConflicts scans an employee's active assignments for overlaps with the
// candidate range. Absence of conflicts is the success path; presence is
// returned as data for the caller to act on.
func findConflicts(assignments []model.ShiftAssignment, employeeID string, candStart time.Time, candEnd *time.Time) []dto.Conflict {
	var conflicts []dto.Conflict
	for i := range assignments {
		a := &assignments[i]
		if !a.IsActive {
			continue
		}
		if !rangesOverlap(a.StartDate, a.EndDate, candStart, candEnd) {
			continue
		}
		reason := "overlapping assignment"
		if a.Shift != nil {
			reason = fmt.Sprintf("overlapping assignment to shift %q", a.Shift.Name)
		}
		conflicts = append(conflicts, dto.Conflict{
			EmployeeID:              employeeID,
			ConflictDate:            laterStart(a.StartDate, candStart).Format(dateLayout),
			ConflictingAssignmentID: a.AssignmentID,
			Reason:                  reason,
		})
	}
	return conflicts
}

// hasConflict is the boolean gate used before creating an assignment.
func hasConflict(assignments []model.ShiftAssignment, candStart time.Time, candEnd *time.Time) bool {
	for i := range assignments {
		a := &assignments[i]
		if a.IsActive && rangesOverlap(a.StartDate, a.EndDate, candStart, candEnd) {
			return true
		}
	}
	return false
}

// branchConflicts finds overlapping pairs within each employee's assignment
// list: sort by start date and flag adjacent pairs whose ranges touch. Used
// for manager-facing reports, not for gating writes.
func branchConflicts(assignments []model.ShiftAssignment, windowStart time.Time, windowEnd *time.Time) []dto.Conflict {
	byEmployee := make(map[string][]model.ShiftAssignment)
	for i := range assignments {
		a := assignments[i]
		if !a.IsActive {
			continue
		}
		if !rangesOverlap(a.StartDate, a.EndDate, windowStart, windowEnd) {
			continue
		}
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}

	employeeIDs := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	var conflicts []dto.Conflict
	for _, empID := range employeeIDs {
		list := byEmployee[empID]
		sort.Slice(list, func(i, j int) bool {
			return list[i].StartDate.Before(list[j].StartDate)
		})
		for i := 0; i+1 < len(list); i++ {
			cur, next := &list[i], &list[i+1]
			if !rangesOverlap(cur.StartDate, cur.EndDate, next.StartDate, next.EndDate) {
				continue
			}
			conflicts = append(conflicts, dto.Conflict{
				EmployeeID:              empID,
				ConflictDate:            laterStart(cur.StartDate, next.StartDate).Format(dateLayout),
				ConflictingAssignmentID: next.AssignmentID,
				Reason:                  fmt.Sprintf("overlaps assignment %s", cur.AssignmentID),
			})
		}
	}
	return conflicts
}
