package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"hrms/internal/domain"
	employeeerrors "hrms/internal/employee/errors"
	"hrms/internal/shared/apperror"
	"hrms/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const OptionsCacheKey = "employees:options"

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, filter ListFilter) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, caller domain.CallerContext, id string) (EmployeeResponse, error)
	Profile(ctx context.Context, userID string) (EmployeeResponse, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Deactivate(ctx context.Context, id string) error
	Options(ctx context.Context) ([]OptionResponse, error)
	Departments(ctx context.Context) ([]string, error)
	AdminStats(ctx context.Context) (AdminStatsResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = ToResponse(e)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, caller domain.CallerContext, id string) (EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// Employees may only read their own record
	if caller.Role == domain.RoleEmployee && e.UserID.String() != caller.UserID {
		return EmployeeResponse{}, apperror.ErrForbidden
	}

	return ToResponse(*e), nil
}

func (s *service) Profile(ctx context.Context, userID string) (EmployeeResponse, error) {
	e, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return ToResponse(*e), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update profile requested",
		zap.String("request_id", rid),
		zap.String("user_id", userID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update profile begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByUserID(ctx, userID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// self-service covers contact fields only
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.Address != nil {
		e.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		e.EmergencyContact = *req.EmergencyContact
	}
	if req.ProfilePicture != nil {
		e.ProfilePicture = *req.ProfilePicture
	}

	if err := qtx.Update(ctx, e); err != nil {
		s.logger.Error("update profile persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	return ToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_id", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if req.FirstName != nil {
		e.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		e.LastName = *req.LastName
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return EmployeeResponse{}, employeeerrors.ErrInvalidDateFormat
		}
		e.DateOfBirth = &dob
	}
	if req.Gender != nil {
		e.Gender = *req.Gender
	}
	if req.Address != nil {
		e.Address = *req.Address
	}
	if req.Department != nil {
		e.Department = *req.Department
	}
	if req.Designation != nil {
		e.Designation = *req.Designation
	}
	if req.EmploymentType != nil {
		e.EmploymentType = *req.EmploymentType
	}
	if req.ProfilePicture != nil {
		e.ProfilePicture = *req.ProfilePicture
	}
	if req.EmergencyContact != nil {
		e.EmergencyContact = *req.EmergencyContact
	}

	if err := qtx.Update(ctx, e); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// Role lives on the user record. This path is the only way a role
	// changes after registration.
	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return EmployeeResponse{}, employeeerrors.ErrInvalidRole
		}
		if err := qtx.SetUserRole(ctx, e.UserID.String(), *req.Role); err != nil {
			s.logger.Error("update employee role failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		if e.User != nil {
			e.User.Role = *req.Role
		}
	}

	if err := tx.Commit(); err != nil {
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("update employee success", zap.String("employee_id", id))
	return ToResponse(*e), nil
}

// Deactivate flips the linked user off. Employee rows are never hard-deleted:
// attendance, leave and payroll history must stay attributable.
func (s *service) Deactivate(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := qtx.SetUserActive(ctx, e.UserID.String(), false); err != nil {
		s.logger.Error("deactivate employee failed", zap.String("employee_id", id), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("employee deactivated", zap.String("employee_id", id))
	return nil
}

func (s *service) Options(ctx context.Context) ([]OptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, OptionsCacheKey).Result(); err == nil {
			var options []OptionResponse
			if err := json.Unmarshal([]byte(cached), &options); err == nil {
				return options, nil
			}
		}
	}

	// singleflight dedupes concurrent cache fills
	v, err, _ := s.sf.Do(OptionsCacheKey, func() (interface{}, error) {
		employees, err := s.repo.FindAll(ctx, ListFilter{})
		if err != nil {
			return nil, err
		}

		options := make([]OptionResponse, len(employees))
		for i, e := range employees {
			options[i] = OptionResponse{
				ID:       e.ID.String(),
				FullName: e.FullName(),
			}
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(options); err == nil {
				s.rdb.Set(ctx, OptionsCacheKey, payload, 10*time.Minute)
			}
		}

		return options, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]OptionResponse), nil
}

func (s *service) Departments(ctx context.Context) ([]string, error) {
	return s.repo.ListDepartments(ctx)
}

func (s *service) AdminStats(ctx context.Context) (AdminStatsResponse, error) {
	t, err := s.repo.CountTotals(ctx)
	if err != nil {
		return AdminStatsResponse{}, err
	}
	return AdminStatsResponse{
		TotalUsers:             t.Users,
		TotalEmployees:         t.Employees,
		TotalAttendanceRecords: t.AttendanceRecords,
	}, nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("invalidate options cache failed", zap.Error(err))
	}
}

// ToResponse maps an entity (with optional preloaded user) to its DTO.
func ToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               e.ID.String(),
		UserID:           e.UserID.String(),
		EmployeeCode:     e.EmployeeCode,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		FullName:         e.FullName(),
		Phone:            e.Phone,
		Gender:           e.Gender,
		Address:          e.Address,
		Department:       e.Department,
		Designation:      e.Designation,
		DateOfJoining:    e.DateOfJoining.Format("2006-01-02"),
		EmploymentType:   e.EmploymentType,
		ProfilePicture:   e.ProfilePicture,
		EmergencyContact: e.EmergencyContact,
	}
	if e.DateOfBirth != nil {
		v := e.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &v
	}
	if e.User != nil {
		resp.Email = e.User.Email
		resp.Role = e.User.Role
	}
	return resp
}
