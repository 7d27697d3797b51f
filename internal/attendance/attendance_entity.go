package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusHalfDay = "Half-day"
	StatusLeave   = "Leave"
	StatusHoliday = "Holiday"
	StatusWeekend = "Weekend"
)

// Attendance is keyed one row per employee per calendar date. The
// uq_attendance_employee_date constraint arbitrates concurrent writers.
type Attendance struct {
	ID         uuid.UUID    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID    `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date"`
	Date       time.Time    `gorm:"column:date;type:date;not null;uniqueIndex:uq_attendance_employee_date"`
	CheckIn    *time.Time   `gorm:"column:check_in;type:timestamptz"`
	CheckOut   *time.Time   `gorm:"column:check_out;type:timestamptz"`
	Status     string       `gorm:"column:status;type:varchar(20);not null;default:Present"`
	WorkHours  float64      `gorm:"column:work_hours;type:numeric(5,2);not null;default:0"`
	Notes      *string      `gorm:"column:notes;type:text"`
	CreatedAt  time.Time    `gorm:"column:created_at"`
	UpdatedAt  time.Time    `gorm:"column:updated_at"`
	Employee   *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// EmployeeRef is a read-only projection of the employees table used for
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
