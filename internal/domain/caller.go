package domain

const (
	RoleEmployee = "Employee"
	RoleHR       = "HR"
	RoleAdmin    = "Admin"
)

// CallerContext identifies the authenticated caller for every engine
// operation. It replaces any framework-held request state: handlers build it
// from verified token claims and pass it down explicitly.
type CallerContext struct {
	UserID     string
	EmployeeID string
	Role       string
}

// Privileged reports whether the caller may use HR/Admin-only operations.
func (c CallerContext) Privileged() bool {
	return c.Role == RoleHR || c.Role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	}
	return false
}

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}
