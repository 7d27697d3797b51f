package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_user"`
	EmployeeCode string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_employee_code"`

	FirstName   string     `gorm:"type:varchar(50);not null"`
	LastName    string     `gorm:"type:varchar(50);not null"`
	Phone       string     `gorm:"type:varchar(15)"`
	DateOfBirth *time.Time `gorm:"type:date"`
	Gender      string     `gorm:"type:varchar(10)"`
	Address     string     `gorm:"type:text"`

	Department    string    `gorm:"type:varchar(50);index"`
	Designation   string    `gorm:"type:varchar(50)"`
	DateOfJoining time.Time `gorm:"type:date;not null"`
	EmploymentType string   `gorm:"type:varchar(20);not null;default:'Full-time'"`

	ProfilePicture   string `gorm:"type:varchar(255)"`
	EmergencyContact string `gorm:"type:varchar(15)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User *AccountUser `gorm:"foreignKey:UserID;references:ID"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// AccountUser is a read-only projection of the users table, enough for
// responses that need the login email and role without importing auth.
type AccountUser struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email    string
	Role     string
	IsActive bool
}

func (AccountUser) TableName() string {
	return "users"
}

// SystemTotals are the row counts surfaced on the admin dashboard.
type SystemTotals struct {
	Users             int64
	Employees         int64
	AttendanceRecords int64
}
