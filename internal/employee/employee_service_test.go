package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hrms/internal/domain"
	employeeerrors "hrms/internal/employee/errors"
	"hrms/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	withTxFn        func(tx *sql.Tx) Repository
	createFn        func(ctx context.Context, e *Employee) error
	findByIDFn      func(ctx context.Context, id string) (*Employee, error)
	findByUserIDFn  func(ctx context.Context, userID string) (*Employee, error)
	findAllFn       func(ctx context.Context, filter ListFilter) ([]Employee, error)
	updateFn        func(ctx context.Context, e *Employee) error
	setUserRoleFn   func(ctx context.Context, userID, role string) error
	setUserActiveFn func(ctx context.Context, userID string, active bool) error
	departmentsFn   func(ctx context.Context) ([]string, error)
	countTotalsFn   func(ctx context.Context) (SystemTotals, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f.withTxFn(tx) }
func (f *fakeRepo) Create(ctx context.Context, e *Employee) error {
	return f.createFn(ctx, e)
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Employee, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindByUserID(ctx context.Context, userID string) (*Employee, error) {
	return f.findByUserIDFn(ctx, userID)
}
func (f *fakeRepo) FindAll(ctx context.Context, filter ListFilter) ([]Employee, error) {
	return f.findAllFn(ctx, filter)
}
func (f *fakeRepo) Update(ctx context.Context, e *Employee) error {
	return f.updateFn(ctx, e)
}
func (f *fakeRepo) SetUserRole(ctx context.Context, userID, role string) error {
	return f.setUserRoleFn(ctx, userID, role)
}
func (f *fakeRepo) SetUserActive(ctx context.Context, userID string, active bool) error {
	return f.setUserActiveFn(ctx, userID, active)
}
func (f *fakeRepo) ListDepartments(ctx context.Context) ([]string, error) {
	return f.departmentsFn(ctx)
}
func (f *fakeRepo) CountTotals(ctx context.Context) (SystemTotals, error) {
	return f.countTotalsFn(ctx)
}

func testEmployee() *Employee {
	userID := uuid.New()
	return &Employee{
		ID:             uuid.New(),
		UserID:         userID,
		EmployeeCode:   "EMP00007",
		FirstName:      "Asha",
		LastName:       "Rao",
		Phone:          "9876543210",
		Department:     "Engineering",
		Designation:    "Engineer",
		DateOfJoining:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		EmploymentType: "Full-time",
		User: &AccountUser{
			ID:       userID,
			Email:    "asha@example.com",
			Role:     domain.RoleEmployee,
			IsActive: true,
		},
	}
}

func strPtr(s string) *string { return &s }

func TestService_Update_ChangesRole(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel(OptionsCacheKey).SetVal(1)

	row := testEmployee()

	var gotUserID, gotRole string
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		copied := *row
		return &copied, nil
	}
	repo.updateFn = func(ctx context.Context, e *Employee) error { return nil }
	repo.setUserRoleFn = func(ctx context.Context, userID, role string) error {
		gotUserID, gotRole = userID, role
		return nil
	}

	svc := NewService(db, repo, rdb)

	resp, err := svc.Update(context.Background(), row.ID.String(), UpdateEmployeeRequest{
		Designation: strPtr("Senior Engineer"),
		Role:        strPtr(domain.RoleHR),
	})

	assert.NoError(t, err)
	assert.Equal(t, row.UserID.String(), gotUserID)
	assert.Equal(t, domain.RoleHR, gotRole)
	assert.Equal(t, domain.RoleHR, resp.Role)
	assert.Equal(t, "Senior Engineer", resp.Designation)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Update_InvalidRole(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	roleChanged := false
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		return testEmployee(), nil
	}
	repo.updateFn = func(ctx context.Context, e *Employee) error { return nil }
	repo.setUserRoleFn = func(ctx context.Context, userID, role string) error {
		roleChanged = true
		return nil
	}

	svc := NewService(db, repo, nil)

	_, err := svc.Update(context.Background(), uuid.New().String(), UpdateEmployeeRequest{
		Role: strPtr("Manager"),
	})

	assert.ErrorIs(t, err, employeeerrors.ErrInvalidRole)
	assert.False(t, roleChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_UpdateProfile_ContactFieldsOnly(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel(OptionsCacheKey).SetVal(1)

	row := testEmployee()

	var persisted *Employee
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByUserIDFn = func(ctx context.Context, userID string) (*Employee, error) {
		copied := *row
		return &copied, nil
	}
	repo.updateFn = func(ctx context.Context, e *Employee) error {
		persisted = e
		return nil
	}

	svc := NewService(db, repo, rdb)

	resp, err := svc.UpdateProfile(context.Background(), row.UserID.String(), UpdateProfileRequest{
		Phone:   strPtr("9000000001"),
		Address: strPtr("12 MG Road"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "9000000001", persisted.Phone)
	assert.Equal(t, "12 MG Road", persisted.Address)
	// identity fields stay untouched through the self-service path
	assert.Equal(t, row.FirstName, persisted.FirstName)
	assert.Equal(t, row.Department, persisted.Department)
	assert.Equal(t, "9000000001", resp.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Deactivate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	row := testEmployee()

	rowMutated := false
	var gotUserID string
	var gotActive bool
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		copied := *row
		return &copied, nil
	}
	repo.updateFn = func(ctx context.Context, e *Employee) error {
		rowMutated = true
		return nil
	}
	repo.setUserActiveFn = func(ctx context.Context, userID string, active bool) error {
		gotUserID, gotActive = userID, active
		return nil
	}

	svc := NewService(db, repo, nil)

	err := svc.Deactivate(context.Background(), row.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, row.UserID.String(), gotUserID)
	assert.False(t, gotActive)
	// deactivation only flips the login, the employee row survives
	assert.False(t, rowMutated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Deactivate_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewService(db, repo, nil)

	err := svc.Deactivate(context.Background(), uuid.New().String())

	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetByID_SelfOnlyForEmployees(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	row := testEmployee()
	repo := &fakeRepo{}
	repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		copied := *row
		return &copied, nil
	}

	svc := NewService(db, repo, nil)

	_, err := svc.GetByID(context.Background(), domain.CallerContext{
		UserID: uuid.New().String(),
		Role:   domain.RoleEmployee,
	}, row.ID.String())
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	resp, err := svc.GetByID(context.Background(), domain.CallerContext{
		UserID: row.UserID.String(),
		Role:   domain.RoleEmployee,
	}, row.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, row.ID.String(), resp.ID)
}

func TestService_Options_CacheHit(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	cached := []OptionResponse{{ID: uuid.New().String(), FullName: "Asha Rao"}}
	payload, err := json.Marshal(cached)
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(OptionsCacheKey).SetVal(string(payload))

	queried := false
	repo := &fakeRepo{}
	repo.findAllFn = func(ctx context.Context, filter ListFilter) ([]Employee, error) {
		queried = true
		return nil, nil
	}

	svc := NewService(db, repo, rdb)

	options, err := svc.Options(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, cached, options)
	assert.False(t, queried)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Options_CacheMissFillsCache(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	first := testEmployee()
	second := testEmployee()
	second.FirstName, second.LastName = "Ravi", "Iyer"

	expected := []OptionResponse{
		{ID: first.ID.String(), FullName: "Asha Rao"},
		{ID: second.ID.String(), FullName: "Ravi Iyer"},
	}
	payload, err := json.Marshal(expected)
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(OptionsCacheKey).RedisNil()
	redisMock.ExpectSet(OptionsCacheKey, payload, 10*time.Minute).SetVal("OK")

	repo := &fakeRepo{}
	repo.findAllFn = func(ctx context.Context, filter ListFilter) ([]Employee, error) {
		return []Employee{*first, *second}, nil
	}

	svc := NewService(db, repo, rdb)

	options, err := svc.Options(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, options)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Departments(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{}
	repo.departmentsFn = func(ctx context.Context) ([]string, error) {
		return []string{"Engineering", "Finance", "People"}, nil
	}

	svc := NewService(db, repo, nil)

	departments, err := svc.Departments(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Finance", "People"}, departments)
}

func TestService_AdminStats(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{}
	repo.countTotalsFn = func(ctx context.Context) (SystemTotals, error) {
		return SystemTotals{Users: 12, Employees: 11, AttendanceRecords: 340}, nil
	}

	svc := NewService(db, repo, nil)

	stats, err := svc.AdminStats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, AdminStatsResponse{
		TotalUsers:             12,
		TotalEmployees:         11,
		TotalAttendanceRecords: 340,
	}, stats)
}

func TestService_Options_DedupesConcurrentFills(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	var calls int32
	release := make(chan struct{})
	repo := &fakeRepo{}
	repo.findAllFn = func(ctx context.Context, filter ListFilter) ([]Employee, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []Employee{*testEmployee()}, nil
	}

	svc := NewService(db, repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			options, err := svc.Options(context.Background())
			assert.NoError(t, err)
			assert.Len(t, options, 1)
		}()
	}

	// let every caller join the in-flight fill before it returns
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
