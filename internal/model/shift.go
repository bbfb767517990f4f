package model

// Shift type values.
const (
	ShiftTypeFixed    = "fixed"
	ShiftTypeFlexible = "flexible"
	ShiftTypeRotating = "rotating"
)

// Shift is a shift definition: a daily time window plus the days of the week
// it runs on. Name is unique within an organization.
type Shift struct {
	ShiftID        string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	Name           string   `gorm:"type:varchar(100);not null"                     json:"name"`
	ShiftType      string   `gorm:"type:varchar(20);not null;default:'fixed'"      json:"shift_type"` // fixed | flexible | rotating
	StartTime      string   `gorm:"type:varchar(5);not null"                       json:"start_time"` // "HH:MM"
	EndTime        string   `gorm:"type:varchar(5);not null"                       json:"end_time"`
	IsOvernight    bool     `gorm:"not null;default:false"                         json:"is_overnight"`
	WorkingDays    IntArray `gorm:"type:int[]"                                     json:"working_days"` // 0=Sunday..6; empty = every day
	OrganizationID string   `gorm:"type:uuid;not null"                             json:"organization_id"`
	BranchID       string   `gorm:"type:uuid;not null"                             json:"branch_id"`
	IsActive       bool     `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

func (Shift) TableName() string { return "shifts" }
