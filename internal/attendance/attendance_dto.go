package attendance

import "time"

type ManualRecordRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	Date       string  `json:"date" binding:"required"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`
	Status     *string `json:"status" binding:"omitempty,oneof=Present Absent Half-day Leave Holiday Weekend"`
	Notes      *string `json:"notes"`
}

type HistoryFilter struct {
	From *time.Time
	To   *time.Time
}

type ListByDateFilter struct {
	Date       time.Time
	Department string
}

type AttendanceResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	EmployeeCode string  `json:"employee_code,omitempty"`
	Department   string  `json:"department,omitempty"`
	Date         string  `json:"date"`
	CheckIn      *string `json:"check_in"`
	CheckOut     *string `json:"check_out"`
	Status       string  `json:"status"`
	WorkHours    float64 `json:"work_hours"`
	Notes        *string `json:"notes,omitempty"`
}

type WeeklySummaryResponse struct {
	WeekStart    string               `json:"week_start"`
	WeekEnd      string               `json:"week_end"`
	PresentDays  int                  `json:"present_days"`
	HalfDays     int                  `json:"half_days"`
	LeaveDays    int                  `json:"leave_days"`
	AbsentDays   int                  `json:"absent_days"`
	TotalHours   float64              `json:"total_hours"`
	DailyRecords []AttendanceResponse `json:"daily_records"`
}

type DailyListResponse struct {
	Date    string               `json:"date"`
	Summary DailySummary         `json:"summary"`
	Records []AttendanceResponse `json:"records"`
}

type DailySummary struct {
	TotalEmployees int `json:"total_employees"`
	Present        int `json:"present"`
	HalfDay        int `json:"half_day"`
	OnLeave        int `json:"on_leave"`
	Absent         int `json:"absent"`
}
