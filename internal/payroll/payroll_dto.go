package payroll

import "github.com/shopspring/decimal"

type UpsertRequest struct {
	EmployeeID      string          `json:"employee_id" binding:"required,uuid"`
	Month           int             `json:"month" binding:"required,min=1,max=12"`
	Year            int             `json:"year" binding:"required,min=2000,max=2200"`
	BasicSalary     decimal.Decimal `json:"basic_salary" binding:"required"`
	HRA             decimal.Decimal `json:"hra"`
	DA              decimal.Decimal `json:"da"`
	TA              decimal.Decimal `json:"ta"`
	OtherAllowances decimal.Decimal `json:"other_allowances"`
	PFDeduction     decimal.Decimal `json:"pf_deduction"`
	TaxDeduction    decimal.Decimal `json:"tax_deduction"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
}

type ProcessRequest struct {
	Status      string  `json:"status" binding:"required,oneof=Processed Paid"`
	PaymentDate *string `json:"payment_date"`
}

type GenerateBulkRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000,max=2200"`
}

type ListFilter struct {
	Month      int
	Year       int
	Department string
	Status     string
}

type PayrollResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	EmployeeCode    string  `json:"employee_code,omitempty"`
	Department      string  `json:"department,omitempty"`
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	BasicSalary     string  `json:"basic_salary"`
	HRA             string  `json:"hra"`
	DA              string  `json:"da"`
	TA              string  `json:"ta"`
	OtherAllowances string  `json:"other_allowances"`
	GrossSalary     string  `json:"gross_salary"`
	PFDeduction     string  `json:"pf_deduction"`
	TaxDeduction    string  `json:"tax_deduction"`
	OtherDeductions string  `json:"other_deductions"`
	TotalDeductions string  `json:"total_deductions"`
	NetSalary       string  `json:"net_salary"`
	PaymentStatus   string  `json:"payment_status"`
	PaymentDate     *string `json:"payment_date,omitempty"`
}

type ListSummary struct {
	TotalGross string `json:"total_gross"`
	TotalNet   string `json:"total_net"`
	Count      int    `json:"count"`
}

type ListAllResponse struct {
	Summary  ListSummary       `json:"summary"`
	Payrolls []PayrollResponse `json:"payrolls"`
}

type GenerateBulkResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
