package employee

import (
	"context"
	"database/sql"

	"hrms/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByUserID(ctx context.Context, userID string) (*Employee, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Employee, error)
	Update(ctx context.Context, e *Employee) error
	SetUserRole(ctx context.Context, userID, role string) error
	SetUserActive(ctx context.Context, userID string, active bool) error
	ListDepartments(ctx context.Context) ([]string, error)
	CountTotals(ctx context.Context) (SystemTotals, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.GormTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindByUserID(ctx context.Context, userID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&e, "user_id = ?", userID).Error
	return &e, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Employee, error) {
	db := r.db.WithContext(ctx).Preload("User")

	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR employee_code ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var employees []Employee
	err := db.Order("employee_code ASC").Find(&employees).Error
	return employees, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) SetUserRole(ctx context.Context, userID, role string) error {
	return r.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		Update("role", role).Error
}

func (r *repository) SetUserActive(ctx context.Context, userID string, active bool) error {
	return r.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		Update("is_active", active).Error
}

func (r *repository) ListDepartments(ctx context.Context) ([]string, error) {
	var departments []string
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Distinct().
		Where("department <> ''").
		Order("department ASC").
		Pluck("department", &departments).Error
	return departments, err
}

func (r *repository) CountTotals(ctx context.Context) (SystemTotals, error) {
	var t SystemTotals
	if err := r.db.WithContext(ctx).Table("users").Count(&t.Users).Error; err != nil {
		return SystemTotals{}, err
	}
	if err := r.db.WithContext(ctx).Model(&Employee{}).Count(&t.Employees).Error; err != nil {
		return SystemTotals{}, err
	}
	if err := r.db.WithContext(ctx).Table("attendances").Count(&t.AttendanceRecords).Error; err != nil {
		return SystemTotals{}, err
	}
	return t, nil
}
