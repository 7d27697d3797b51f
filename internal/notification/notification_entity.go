package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeLeave      = "Leave"
	TypePayroll    = "Payroll"
	TypeAttendance = "Attendance"
	TypeGeneral    = "General"
)

// Notification rows are immutable after creation except for the read flag.
type Notification struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID    uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index"`
	Title         string     `gorm:"column:title;type:varchar(200);not null"`
	Message       string     `gorm:"column:message;type:text;not null"`
	Type          string     `gorm:"column:type;type:varchar(20);not null;default:General"`
	IsRead        bool       `gorm:"column:is_read;not null;default:false"`
	ReferenceID   *uuid.UUID `gorm:"column:reference_id;type:uuid"`
	ReferenceType *string    `gorm:"column:reference_type;type:varchar(50)"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
