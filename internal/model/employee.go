package model

import "time"

// Employee mirrors the HR platform's employee directory. Rows are written by
// an external sync job; this service reads them only.
type Employee struct {
	EmployeeID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name       string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Email      string    `gorm:"type:varchar(255);not null"                     json:"email"`
	Role       string    `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"` // employee | manager | admin
	BranchID   string    `gorm:"type:uuid;not null"                             json:"branch_id"`
	IsActive   bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }
