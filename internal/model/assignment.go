package model

import "time"

// ShiftAssignment binds one employee to one shift over an inclusive date
// range. A nil EndDate means the assignment runs indefinitely. Inactive rows
// are either soft-ended assignments or broadcast placeholders; they do not
// participate in conflict detection.
type ShiftAssignment struct {
	AssignmentID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	EmployeeID    string     `gorm:"type:uuid;not null"                             json:"employee_id"`
	ShiftID       string     `gorm:"type:uuid;not null"                             json:"shift_id"`
	StartDate     time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate       *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	IsActive      bool       `gorm:"not null;default:true"                          json:"is_active"`
	Notes         string     `gorm:"type:varchar(1000)"                             json:"notes,omitempty"`
	AutoGenerated bool       `gorm:"not null;default:false"                         json:"auto_generated"`
	RotationWeek  *int       `gorm:"type:smallint"                                  json:"rotation_week,omitempty"`
	AssignedBy    *string    `gorm:"type:uuid"                                      json:"assigned_by,omitempty"`
	VersionedModel

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
	Shift    *Shift    `gorm:"foreignKey:ShiftID;references:ShiftID"       json:"shift,omitempty"`
}

func (ShiftAssignment) TableName() string { return "shift_assignments" }
