package employee

type UpdateProfileRequest struct {
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergency_contact"`
	ProfilePicture   *string `json:"profile_picture"`
}

type UpdateEmployeeRequest struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"date_of_birth"`
	Gender           *string `json:"gender"`
	Address          *string `json:"address"`
	Department       *string `json:"department"`
	Designation      *string `json:"designation"`
	EmploymentType   *string `json:"employment_type"`
	ProfilePicture   *string `json:"profile_picture"`
	EmergencyContact *string `json:"emergency_contact"`
	Role             *string `json:"role"`
}

type ListFilter struct {
	Department string
	Search     string
}

type EmployeeResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	EmployeeCode     string  `json:"employee_code"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email,omitempty"`
	Role             string  `json:"role,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	DateOfBirth      *string `json:"date_of_birth,omitempty"`
	Gender           string  `json:"gender,omitempty"`
	Address          string  `json:"address,omitempty"`
	Department       string  `json:"department,omitempty"`
	Designation      string  `json:"designation,omitempty"`
	DateOfJoining    string  `json:"date_of_joining"`
	EmploymentType   string  `json:"employment_type"`
	ProfilePicture   string  `json:"profile_picture,omitempty"`
	EmergencyContact string  `json:"emergency_contact,omitempty"`
}

type OptionResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type AdminStatsResponse struct {
	TotalUsers             int64 `json:"total_users"`
	TotalEmployees         int64 `json:"total_employees"`
	TotalAttendanceRecords int64 `json:"total_attendance_records"`
}
