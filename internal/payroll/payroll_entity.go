package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "Pending"
	StatusProcessed = "Processed"
	StatusPaid      = "Paid"
)

// Payroll keys one row per employee per period. Money columns are
// fixed-point decimals; binary floats never touch salary math.
type Payroll struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID      uuid.UUID       `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_payroll_employee_period"`
	Month           int             `gorm:"column:month;not null;uniqueIndex:uq_payroll_employee_period"`
	Year            int             `gorm:"column:year;not null;uniqueIndex:uq_payroll_employee_period"`
	BasicSalary     decimal.Decimal `gorm:"column:basic_salary;type:numeric(12,2);not null"`
	HRA             decimal.Decimal `gorm:"column:hra;type:numeric(12,2);not null"`
	DA              decimal.Decimal `gorm:"column:da;type:numeric(12,2);not null"`
	TA              decimal.Decimal `gorm:"column:ta;type:numeric(12,2);not null"`
	OtherAllowances decimal.Decimal `gorm:"column:other_allowances;type:numeric(12,2);not null"`
	GrossSalary     decimal.Decimal `gorm:"column:gross_salary;type:numeric(12,2);not null"`
	PFDeduction     decimal.Decimal `gorm:"column:pf_deduction;type:numeric(12,2);not null"`
	TaxDeduction    decimal.Decimal `gorm:"column:tax_deduction;type:numeric(12,2);not null"`
	OtherDeductions decimal.Decimal `gorm:"column:other_deductions;type:numeric(12,2);not null"`
	TotalDeductions decimal.Decimal `gorm:"column:total_deductions;type:numeric(12,2);not null"`
	NetSalary       decimal.Decimal `gorm:"column:net_salary;type:numeric(12,2);not null"`
	PaymentStatus   string          `gorm:"column:payment_status;type:varchar(20);not null;default:Pending"`
	PaymentDate     *time.Time      `gorm:"column:payment_date;type:date"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
	Employee        *EmployeeRef    `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Payroll) TableName() string {
	return "payrolls"
}

// EmployeeRef is a read-only projection of the employees table for
// joined listings. It avoids an import cycle with the employee package.
type EmployeeRef struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	EmployeeCode string    `gorm:"column:employee_code"`
	Department   string    `gorm:"column:department"`
	Designation  string    `gorm:"column:designation"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}
