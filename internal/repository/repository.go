package repository

import "gorm.io/gorm"

// Repository aggregates every data-access interface.
type Repository struct {
	Employee   EmployeeRepository
	Shift      ShiftRepository
	Assignment AssignmentRepository
	Swap       SwapRepository
	Coverage   CoverageRepository
}

// NewRepository wires the gorm implementations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Employee:   NewEmployeeRepo(db),
		Shift:      NewShiftRepo(db),
		Assignment: NewAssignmentRepo(db),
		Swap:       NewSwapRepo(db),
		Coverage:   NewCoverageRepo(db),
	}
}
