package events

import "time"

const PayrollProcessedTopic = "hrms.payroll.processed.v1"

// PayrollProcessedEvent is written to the outbox when a payroll record
// is moved to Processed or Paid. The consumer renders the payslip from
// it asynchronously.
type PayrollProcessedEvent struct {
	EventType   string    `json:"event_type"`
	PayrollID   string    `json:"payroll_id"`
	EmployeeID  string    `json:"employee_id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	NetSalary   string    `json:"net_salary"`
	Status      string    `json:"status"`
	ProcessedBy string    `json:"processed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
