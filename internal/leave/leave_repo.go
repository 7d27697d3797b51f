package leave

import (
	"context"
	"database/sql"
	"time"

	"hrms/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	Update(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID, status string) ([]LeaveRequest, error)
	FindPending(ctx context.Context) ([]LeaveRequest, error)
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	SumApprovedDaysByType(ctx context.Context, employeeID string, year int) (map[string]int, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID, status string) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []LeaveRequest
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindPending(ctx context.Context) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("Employee").
		Joins("JOIN employees ON employees.id = leave_requests.employee_id")
	if filter.Status != "" {
		q = q.Where("leave_requests.status = ?", filter.Status)
	}
	if filter.Department != "" {
		q = q.Where("employees.department = ?", filter.Department)
	}

	var rows []LeaveRequest
	err := q.Order("leave_requests.created_at DESC").Find(&rows).Error
	return rows, err
}

// HasOverlappingPeriod treats boundary-touching ranges as overlap.
// Only live requests block: cancelled and rejected ones do not.
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", endDate.Format("2006-01-02"), startDate.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

// SumApprovedDaysByType buckets approved leave into the year the
// request starts in, even when the range crosses years.
func (r *repository) SumApprovedDaysByType(ctx context.Context, employeeID string, year int) (map[string]int, error) {
	type row struct {
		LeaveType string
		Total     int
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Select("leave_type, SUM(total_days) AS total").
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("EXTRACT(YEAR FROM start_date) = ?", year).
		Group("leave_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	used := make(map[string]int, len(rows))
	for _, r := range rows {
		used[r.LeaveType] = r.Total
	}
	return used, nil
}
