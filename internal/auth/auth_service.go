package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	autherrors "hrms/internal/auth/errors"
	"hrms/internal/domain"
	"hrms/internal/employee"
	employeeerrors "hrms/internal/employee/errors"
	"hrms/internal/shared/counter"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error)
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	counter      counter.Repository
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	counterRepo counter.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		counter:      counterRepo,
		logger:       l,
	}
}

// Register creates the user and its employee profile in one transaction.
// The employee code comes from an atomic counter so codes stay monotonic
// even under concurrent registrations.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	s.logger.Debug("register requested", zap.String("email", req.Email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	dateOfJoining, err := time.Parse("2006-01-02", req.DateOfJoining)
	if err != nil {
		return AuthResponse{}, employeeerrors.ErrInvalidDateFormat
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return AuthResponse{}, employeeerrors.ErrInvalidDateFormat
		}
		dateOfBirth = &dob
	}

	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	employmentType := req.EmploymentType
	if employmentType == "" {
		employmentType = "Full-time"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("register begin tx failed", zap.Error(err))
		return AuthResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	eqtx := s.employeeRepo.WithTx(tx)

	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
		IsActive:     true,
	}

	if err := qtx.Create(ctx, user); err != nil {
		s.logger.Warn("register create user failed", zap.String("email", req.Email), zap.Error(err))
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	nextVal, err := s.counter.GetNextValue(ctx, "employee_code")
	if err != nil {
		s.logger.Error("register generate employee code failed", zap.Error(err))
		return AuthResponse{}, err
	}

	emp := &employee.Employee{
		ID:             uuid.New(),
		UserID:         user.ID,
		EmployeeCode:   fmt.Sprintf("EMP%05d", nextVal),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		DateOfBirth:    dateOfBirth,
		Gender:         req.Gender,
		Address:        req.Address,
		Department:     req.Department,
		Designation:    req.Designation,
		DateOfJoining:  dateOfJoining,
		EmploymentType: employmentType,
	}

	if err := eqtx.Create(ctx, emp); err != nil {
		s.logger.Error("register create employee failed", zap.Error(err))
		return AuthResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("register commit failed", zap.Error(err))
		return AuthResponse{}, err
	}

	s.logger.Info("register success",
		zap.String("user_id", user.ID.String()),
		zap.String("employee_code", emp.EmployeeCode),
	)

	return s.buildAuthResponse(user, emp, true)
}

func (s *service) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return AuthResponse{}, autherrors.ErrAccountDeactivated
	}

	emp, err := s.employeeRepo.FindByUserID(ctx, user.ID.String())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		emp = nil
	}

	s.logger.Info("login success", zap.String("user_id", user.ID.String()))
	return s.buildAuthResponse(user, emp, true)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthResponse{}, autherrors.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return AuthResponse{}, autherrors.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrUserNotFound
	}
	if !user.IsActive {
		return AuthResponse{}, autherrors.ErrAccountDeactivated
	}

	emp, err := s.employeeRepo.FindByUserID(ctx, user.ID.String())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		emp = nil
	}

	return s.buildAuthResponse(user, emp, true)
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrUserNotFound
	}

	emp, err := s.employeeRepo.FindByUserID(ctx, user.ID.String())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		emp = nil
	}

	return s.buildAuthResponse(user, emp, false)
}

func (s *service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return autherrors.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return autherrors.ErrWrongCurrentPassword
	}

	if len(req.NewPassword) < 6 {
		return autherrors.ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		s.logger.Error("change password persist failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

func (s *service) buildAuthResponse(user *User, emp *employee.Employee, withTokens bool) (AuthResponse, error) {
	resp := AuthResponse{
		User: UserResponse{
			ID:       user.ID.String(),
			Email:    user.Email,
			Role:     user.Role,
			IsActive: user.IsActive,
		},
	}

	employeeID := ""
	if emp != nil {
		er := mapEmployee(*emp, user)
		resp.Employee = &er
		employeeID = emp.ID.String()
	}

	if withTokens {
		accessToken, err := s.generateToken(user.ID.String(), employeeID, user.Role, accessTokenTTL)
		if err != nil {
			return AuthResponse{}, autherrors.ErrTokenGenerationFailed
		}
		refreshToken, err := s.generateToken(user.ID.String(), employeeID, user.Role, refreshTokenTTL)
		if err != nil {
			return AuthResponse{}, autherrors.ErrTokenGenerationFailed
		}
		resp.AccessToken = accessToken
		resp.RefreshToken = refreshToken
	}

	return resp, nil
}

func (s *service) generateToken(userID, employeeID, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        role,
		"exp":         time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapEmployee(e employee.Employee, user *User) employee.EmployeeResponse {
	if e.User == nil && user != nil {
		e.User = &employee.AccountUser{
			ID:       user.ID,
			Email:    user.Email,
			Role:     user.Role,
			IsActive: user.IsActive,
		}
	}
	return employee.ToResponse(e)
}
