package employee_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hrms/internal/domain"
	"hrms/internal/employee"
	employeeerrors "hrms/internal/employee/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	getAllFn        func(ctx context.Context, filter employee.ListFilter) ([]employee.EmployeeResponse, error)
	getByIDFn       func(ctx context.Context, caller domain.CallerContext, id string) (employee.EmployeeResponse, error)
	profileFn       func(ctx context.Context, userID string) (employee.EmployeeResponse, error)
	updateProfileFn func(ctx context.Context, userID string, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error)
	updateFn        func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	deactivateFn    func(ctx context.Context, id string) error
	optionsFn       func(ctx context.Context) ([]employee.OptionResponse, error)
	departmentsFn   func(ctx context.Context) ([]string, error)
	adminStatsFn    func(ctx context.Context) (employee.AdminStatsResponse, error)
}

func (f *fakeService) GetAll(ctx context.Context, filter employee.ListFilter) ([]employee.EmployeeResponse, error) {
	return f.getAllFn(ctx, filter)
}
func (f *fakeService) GetByID(ctx context.Context, caller domain.CallerContext, id string) (employee.EmployeeResponse, error) {
	return f.getByIDFn(ctx, caller, id)
}
func (f *fakeService) Profile(ctx context.Context, userID string) (employee.EmployeeResponse, error) {
	return f.profileFn(ctx, userID)
}
func (f *fakeService) UpdateProfile(ctx context.Context, userID string, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	return f.updateProfileFn(ctx, userID, req)
}
func (f *fakeService) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.updateFn(ctx, id, req)
}
func (f *fakeService) Deactivate(ctx context.Context, id string) error {
	return f.deactivateFn(ctx, id)
}
func (f *fakeService) Options(ctx context.Context) ([]employee.OptionResponse, error) {
	return f.optionsFn(ctx)
}
func (f *fakeService) Departments(ctx context.Context) ([]string, error) {
	return f.departmentsFn(ctx)
}
func (f *fakeService) AdminStats(ctx context.Context) (employee.AdminStatsResponse, error) {
	return f.adminStatsFn(ctx)
}

func TestHandler_GetAll_Paginates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		getAllFn: func(ctx context.Context, filter employee.ListFilter) ([]employee.EmployeeResponse, error) {
			assert.Equal(t, "Engineering", filter.Department)
			rows := make([]employee.EmployeeResponse, 5)
			for i := range rows {
				rows[i] = employee.EmployeeResponse{ID: uuid.New().String()}
			}
			return rows, nil
		},
	}

	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/employees?department=Engineering&page=2&page_size=2", nil)
	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"meta"`)
	assert.Contains(t, w.Body.String(), `"total":5`)
}

func TestHandler_Update_InvalidRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		updateFn: func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
			return employee.EmployeeResponse{}, employeeerrors.ErrInvalidRole
		},
	}

	h := employee.NewHandler(svc)

	body := `{"role":"Manager"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodPut, "/employees/x", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_GetDepartments(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		departmentsFn: func(ctx context.Context) ([]string, error) {
			return []string{"Engineering", "Finance"}, nil
		},
	}

	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/employees/departments", nil)
	h.GetDepartments(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"departments":["Engineering","Finance"]`)
}

func TestHandler_AdminStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		adminStatsFn: func(ctx context.Context) (employee.AdminStatsResponse, error) {
			return employee.AdminStatsResponse{
				TotalUsers:             12,
				TotalEmployees:         11,
				TotalAttendanceRecords: 340,
			}, nil
		},
	}

	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	h.AdminStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_users":12`)
	assert.Contains(t, w.Body.String(), `"total_attendance_records":340`)
}

func TestHandler_Deactivate_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		deactivateFn: func(ctx context.Context, id string) error {
			return employeeerrors.ErrEmployeeNotFound
		},
	}

	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/employees/x", nil)
	h.Deactivate(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
