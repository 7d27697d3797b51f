package attendance

import (
	"context"
	"database/sql"
	"time"

	"hrms/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	Update(ctx context.Context, a *Attendance) error
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	FindByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	FindByDate(ctx context.Context, filter ListByDateFilter) ([]Attendance, error)
	CountEmployees(ctx context.Context, department string) (int64, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("date = ?", date.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByDate(ctx context.Context, filter ListByDateFilter) ([]Attendance, error) {
	q := r.db.WithContext(ctx).
		Preload("Employee").
		Joins("JOIN employees ON employees.id = attendances.employee_id").
		Where("attendances.date = ?", filter.Date.Format("2006-01-02"))
	if filter.Department != "" {
		q = q.Where("employees.department = ?", filter.Department)
	}

	var rows []Attendance
	err := q.Order("attendances.created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountEmployees(ctx context.Context, department string) (int64, error) {
	q := r.db.WithContext(ctx).Table("employees").
		Joins("JOIN users ON users.id = employees.user_id").
		Where("users.is_active = ?", true)
	if department != "" {
		q = q.Where("employees.department = ?", department)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}
