package payroll

import (
	"context"
	"database/sql"

	"hrms/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Payroll) error
	Update(ctx context.Context, p *Payroll) error
	FindByID(ctx context.Context, id string) (*Payroll, error)
	FindByEmployeeAndPeriod(ctx context.Context, employeeID string, month, year int) (*Payroll, error)
	FindByEmployeeAndYear(ctx context.Context, employeeID string, year int) ([]Payroll, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Payroll, error)
	FindLatestBefore(ctx context.Context, employeeID string, month, year int) (*Payroll, error)
	ListActiveEmployeeIDs(ctx context.Context) ([]string, error)
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

func (r *repository) Create(ctx context.Context, p *Payroll) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) Update(ctx context.Context, p *Payroll) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Payroll, error) {
	var p Payroll
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindByEmployeeAndPeriod(ctx context.Context, employeeID string, month, year int) (*Payroll, error) {
	var p Payroll
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("month = ?", month).
		Where("year = ?", year).
		First(&p).Error
	return &p, err
}

func (r *repository) FindByEmployeeAndYear(ctx context.Context, employeeID string, year int) ([]Payroll, error) {
	var rows []Payroll
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("year = ?", year).
		Order("month DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Payroll, error) {
	q := r.db.WithContext(ctx).
		Preload("Employee").
		Joins("JOIN employees ON employees.id = payrolls.employee_id").
		Where("payrolls.year = ?", filter.Year)
	if filter.Month > 0 {
		q = q.Where("payrolls.month = ?", filter.Month)
	}
	if filter.Department != "" {
		q = q.Where("employees.department = ?", filter.Department)
	}
	if filter.Status != "" {
		q = q.Where("payrolls.payment_status = ?", filter.Status)
	}

	var rows []Payroll
	err := q.Order("payrolls.year DESC, payrolls.month DESC").Find(&rows).Error
	return rows, err
}

// FindLatestBefore returns the most recent payroll strictly before the
// given period, used as the clone source in bulk generation.
func (r *repository) FindLatestBefore(ctx context.Context, employeeID string, month, year int) (*Payroll, error) {
	var p Payroll
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("(year < ?) OR (year = ? AND month < ?)", year, year, month).
		Order("year DESC, month DESC").
		First(&p).Error
	return &p, err
}

func (r *repository) ListActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("employees").
		Joins("JOIN users ON users.id = employees.user_id").
		Where("users.is_active = ?", true).
		Pluck("employees.id::text", &ids).Error
	return ids, err
}
