package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	autherrors "hrms/internal/auth/errors"
	"hrms/internal/domain"
	"hrms/internal/employee"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeRepo struct {
	withTxFn         func(tx *sql.Tx) Repository
	createFn         func(ctx context.Context, u *User) error
	getByEmailFn     func(ctx context.Context, email string) (*User, error)
	getByIDFn        func(ctx context.Context, id string) (*User, error)
	updatePasswordFn func(ctx context.Context, id, passwordHash string) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository              { return f.withTxFn(tx) }
func (f *fakeRepo) Create(ctx context.Context, u *User) error { return f.createFn(ctx, u) }
func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return f.getByEmailFn(ctx, email)
}
func (f *fakeRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return f.updatePasswordFn(ctx, id, passwordHash)
}

type fakeEmployeeRepo struct {
	createFn       func(ctx context.Context, e *employee.Employee) error
	findByUserIDFn func(ctx context.Context, userID string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepo) WithTx(tx *sql.Tx) employee.Repository { return f }
func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error {
	return f.createFn(ctx, e)
}
func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepo) FindByUserID(ctx context.Context, userID string) (*employee.Employee, error) {
	return f.findByUserIDFn(ctx, userID)
}
func (f *fakeEmployeeRepo) FindAll(ctx context.Context, filter employee.ListFilter) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) Update(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) SetUserRole(ctx context.Context, userID, role string) error {
	return nil
}
func (f *fakeEmployeeRepo) SetUserActive(ctx context.Context, userID string, active bool) error {
	return nil
}
func (f *fakeEmployeeRepo) ListDepartments(ctx context.Context) ([]string, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) CountTotals(ctx context.Context) (employee.SystemTotals, error) {
	return employee.SystemTotals{}, nil
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	db, mock, _ := sqlmock.New()
	defer db.Close()

	var createdUser *User
	var createdEmployee *employee.Employee

	repo := &fakeRepo{
		createFn: func(ctx context.Context, u *User) error { createdUser = u; return nil },
	}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }

	employeeRepo := &fakeEmployeeRepo{
		createFn: func(ctx context.Context, e *employee.Employee) error { createdEmployee = e; return nil },
	}
	counterRepo := &fakeCounter{next: 41}

	svc := NewService(db, repo, employeeRepo, counterRepo)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "asha.verma@example.com",
		Password:      "secret123",
		FirstName:     "Asha",
		LastName:      "Verma",
		Department:    "Engineering",
		Designation:   "Engineer",
		DateOfJoining: "2025-01-15",
	})
	assert.NoError(t, err)

	assert.Equal(t, domain.RoleEmployee, createdUser.Role)
	assert.True(t, createdUser.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(createdUser.PasswordHash), []byte("secret123")))

	assert.Equal(t, "EMP00042", createdEmployee.EmployeeCode)
	assert.Equal(t, createdUser.ID, createdEmployee.UserID)
	assert.Equal(t, "Full-time", createdEmployee.EmploymentType)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "asha.verma@example.com", resp.User.Email)

	token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, createdUser.ID.String(), claims["user_id"])
	assert.Equal(t, createdEmployee.ID.String(), claims["employee_id"])
	assert.Equal(t, domain.RoleEmployee, claims["role"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Register_InvalidJoiningDate(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, &fakeEmployeeRepo{}, &fakeCounter{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "x@example.com",
		Password:      "secret123",
		DateOfJoining: "15-01-2025",
	})
	assert.Error(t, err)
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	db, _, _ := sqlmock.New()
	defer db.Close()

	userID := uuid.New()
	hash := hashPassword(t, "secret123")
	user := &User{ID: userID, Email: "asha.verma@example.com", PasswordHash: hash, Role: domain.RoleHR, IsActive: true}

	repo := &fakeRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) { return user, nil },
	}
	employeeRepo := &fakeEmployeeRepo{
		findByUserIDFn: func(ctx context.Context, uid string) (*employee.Employee, error) {
			return &employee.Employee{ID: uuid.New(), UserID: userID, FirstName: "Asha", DateOfJoining: time.Now()}, nil
		},
	}

	svc := NewService(db, repo, employeeRepo, &fakeCounter{})

	resp, err := svc.Login(context.Background(), "asha.verma@example.com", "secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, domain.RoleHR, resp.User.Role)
	assert.NotNil(t, resp.Employee)
}

func TestService_Login_WrongPassword(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	hash := hashPassword(t, "secret123")
	repo := &fakeRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: uuid.New(), PasswordHash: hash, IsActive: true}, nil
		},
	}

	svc := NewService(db, repo, &fakeEmployeeRepo{}, &fakeCounter{})

	_, err := svc.Login(context.Background(), "asha.verma@example.com", "wrong")
	assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewService(db, repo, &fakeEmployeeRepo{}, &fakeCounter{})

	_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
}

func TestService_Login_DeactivatedAccount(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	hash := hashPassword(t, "secret123")
	repo := &fakeRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: uuid.New(), PasswordHash: hash, IsActive: false}, nil
		},
	}

	svc := NewService(db, repo, &fakeEmployeeRepo{}, &fakeCounter{})

	_, err := svc.Login(context.Background(), "asha.verma@example.com", "secret123")
	assert.ErrorIs(t, err, autherrors.ErrAccountDeactivated)
}

func TestService_RefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	db, _, _ := sqlmock.New()
	defer db.Close()

	userID := uuid.New()
	user := &User{ID: userID, Email: "asha.verma@example.com", Role: domain.RoleEmployee, IsActive: true}

	repo := &fakeRepo{
		getByIDFn: func(ctx context.Context, id string) (*User, error) {
			assert.Equal(t, userID.String(), id)
			return user, nil
		},
	}
	employeeRepo := &fakeEmployeeRepo{
		findByUserIDFn: func(ctx context.Context, uid string) (*employee.Employee, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewService(db, repo, employeeRepo, &fakeCounter{})

	claims := jwt.MapClaims{
		"user_id":     userID.String(),
		"employee_id": "",
		"role":        domain.RoleEmployee,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), refresh)
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Nil(t, resp.Employee)
}

func TestService_RefreshToken_Expired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, &fakeEmployeeRepo{}, &fakeCounter{})

	claims := jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), expired)
	assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
}

func TestService_ChangePassword(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	userID := uuid.New()
	hash := hashPassword(t, "old-secret")

	var updatedHash string
	repo := &fakeRepo{
		getByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: userID, PasswordHash: hash, IsActive: true}, nil
		},
		updatePasswordFn: func(ctx context.Context, id, passwordHash string) error {
			updatedHash = passwordHash
			return nil
		},
	}

	svc := NewService(db, repo, &fakeEmployeeRepo{}, &fakeCounter{})

	err := svc.ChangePassword(context.Background(), userID.String(), ChangePasswordRequest{
		CurrentPassword: "old-secret",
		NewPassword:     "new-secret",
	})
	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updatedHash), []byte("new-secret")))
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	hash := hashPassword(t, "old-secret")
	repo := &fakeRepo{
		getByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: uuid.New(), PasswordHash: hash, IsActive: true}, nil
		},
	}

	svc := NewService(db, repo, &fakeEmployeeRepo{}, &fakeCounter{})

	err := svc.ChangePassword(context.Background(), uuid.New().String(), ChangePasswordRequest{
		CurrentPassword: "nope",
		NewPassword:     "new-secret",
	})
	assert.ErrorIs(t, err, autherrors.ErrWrongCurrentPassword)
}
