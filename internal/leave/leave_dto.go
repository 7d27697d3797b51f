package leave

type ApplyRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=Casual Sick Earned Maternity Paternity Unpaid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type ReviewRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=Approved Rejected"`
	Comment  *string `json:"comment"`
}

type ListFilter struct {
	Status     string
	Department string
}

type LeaveResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name,omitempty"`
	EmployeeCode  string  `json:"employee_code,omitempty"`
	Department    string  `json:"department,omitempty"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewComment *string `json:"review_comment,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type BalanceEntry struct {
	LeaveType string `json:"leave_type"`
	Quota     int    `json:"quota"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Unlimited bool   `json:"unlimited"`
}

type BalanceResponse struct {
	Year     int            `json:"year"`
	Balances []BalanceEntry `json:"balances"`
}
