package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeCasual    = "Casual"
	TypeSick      = "Sick"
	TypeEarned    = "Earned"
	TypeMaternity = "Maternity"
	TypePaternity = "Paternity"
	TypeUnpaid    = "Unpaid"
)

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

// UnlimitedQuota marks leave types with no annual cap.
const UnlimitedQuota = -1

// AnnualQuota returns the yearly allowance in days for a leave type,
// or UnlimitedQuota when the type has no cap.
func AnnualQuota(leaveType string) int {
	switch leaveType {
	case TypeCasual:
		return 12
	case TypeSick:
		return 12
	case TypeEarned:
		return 15
	case TypeMaternity:
		return 180
	case TypePaternity:
		return 15
	default:
		return UnlimitedQuota
	}
}

type LeaveRequest struct {
	ID            uuid.UUID    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID    uuid.UUID    `gorm:"column:employee_id;type:uuid;not null;index"`
	LeaveType     string       `gorm:"column:leave_type;type:varchar(20);not null"`
	StartDate     time.Time    `gorm:"column:start_date;type:date;not null"`
	EndDate       time.Time    `gorm:"column:end_date;type:date;not null"`
	TotalDays     int          `gorm:"column:total_days;not null"`
	Reason        string       `gorm:"column:reason;type:text;not null"`
	Status        string       `gorm:"column:status;type:varchar(20);not null;default:Pending"`
	ReviewedBy    *uuid.UUID   `gorm:"column:reviewed_by;type:uuid"`
	ReviewComment *string      `gorm:"column:review_comment;type:text"`
	ReviewedAt    *time.Time   `gorm:"column:reviewed_at;type:timestamptz"`
	CreatedAt     time.Time    `gorm:"column:created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at"`
	Employee      *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// EmployeeRef is a read-only projection of the employees table for
// joined listings. It avoids an import cycle with the employee package.
type EmployeeRef struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	EmployeeCode string    `gorm:"column:employee_code"`
	Department   string    `gorm:"column:department"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}
