package leave

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hrms/internal/attendance"
	"hrms/internal/domain"
	leaveerrors "hrms/internal/leave/errors"
	"hrms/internal/messaging/kafka"
	"hrms/internal/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	withTxFn                func(tx *sql.Tx) Repository
	createFn                func(ctx context.Context, l *LeaveRequest) error
	updateFn                func(ctx context.Context, l *LeaveRequest) error
	findByIDFn              func(ctx context.Context, id string) (*LeaveRequest, error)
	findByEmployeeFn        func(ctx context.Context, employeeID, status string) ([]LeaveRequest, error)
	findPendingFn           func(ctx context.Context) ([]LeaveRequest, error)
	findAllFn               func(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	hasOverlappingPeriodFn  func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	sumApprovedDaysByTypeFn func(ctx context.Context, employeeID string, year int) (map[string]int, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f.withTxFn(tx) }
func (f *fakeRepo) Create(ctx context.Context, l *LeaveRequest) error {
	return f.createFn(ctx, l)
}
func (f *fakeRepo) Update(ctx context.Context, l *LeaveRequest) error {
	return f.updateFn(ctx, l)
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindByEmployee(ctx context.Context, employeeID, status string) ([]LeaveRequest, error) {
	return f.findByEmployeeFn(ctx, employeeID, status)
}
func (f *fakeRepo) FindPending(ctx context.Context) ([]LeaveRequest, error) {
	return f.findPendingFn(ctx)
}
func (f *fakeRepo) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	return f.findAllFn(ctx, filter)
}
func (f *fakeRepo) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	return f.hasOverlappingPeriodFn(ctx, employeeID, startDate, endDate)
}
func (f *fakeRepo) SumApprovedDaysByType(ctx context.Context, employeeID string, year int) (map[string]int, error) {
	return f.sumApprovedDaysByTypeFn(ctx, employeeID, year)
}

type fakeAttendanceRepo struct {
	byDate  map[string]*attendance.Attendance
	created []attendance.Attendance
	updated []attendance.Attendance
}

func (f *fakeAttendanceRepo) WithTx(tx *sql.Tx) attendance.Repository { return f }
func (f *fakeAttendanceRepo) Create(ctx context.Context, a *attendance.Attendance) error {
	f.created = append(f.created, *a)
	return nil
}
func (f *fakeAttendanceRepo) Update(ctx context.Context, a *attendance.Attendance) error {
	f.updated = append(f.updated, *a)
	return nil
}
func (f *fakeAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	if row, ok := f.byDate[date.Format("2006-01-02")]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAttendanceRepo) FindByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) FindByDate(ctx context.Context, filter attendance.ListByDateFilter) ([]attendance.Attendance, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) CountEmployees(ctx context.Context, department string) (int64, error) {
	return 0, nil
}

type fakeNotificationRepo struct {
	created []notification.Notification
}

func (f *fakeNotificationRepo) WithTx(tx *sql.Tx) notification.Repository { return f }
func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.created = append(f.created, *n)
	return nil
}
func (f *fakeNotificationRepo) FindByID(ctx context.Context, id string) (*notification.Notification, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeNotificationRepo) FindByEmployee(ctx context.Context, employeeID string, unreadOnly bool, limit int) ([]notification.Notification, error) {
	return nil, nil
}
func (f *fakeNotificationRepo) CountUnread(ctx context.Context, employeeID string) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error            { return nil }
func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, employeeID string) error { return nil }
func (f *fakeNotificationRepo) Delete(ctx context.Context, id string) error              { return nil }

type fakeOutboxRepo struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error                 { return nil }
func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func newTestService(db *sql.DB, repo Repository, attRepo attendance.Repository, notifRepo notification.Repository) Service {
	return NewService(db, repo, attRepo, notifRepo, &fakeOutboxRepo{})
}

func TestService_Apply(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	employeeID := uuid.New().String()

	var created *LeaveRequest
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.hasOverlappingPeriodFn = func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
		return false, nil
	}
	repo.createFn = func(ctx context.Context, l *LeaveRequest) error { created = l; return nil }

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Apply(context.Background(), employeeID, ApplyRequest{
		LeaveType: TypeCasual,
		StartDate: "2025-04-01",
		EndDate:   "2025-04-03",
		Reason:    "family event",
	})
	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, 3, resp.TotalDays)
	assert.Equal(t, StatusPending, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_InvalidRange(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := newTestService(db, &fakeRepo{}, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyRequest{
		LeaveType: TypeCasual,
		StartDate: "2025-04-03",
		EndDate:   "2025-04-01",
		Reason:    "backwards",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
}

func TestService_Apply_OverlapSharedBoundaryDay(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	employeeID := uuid.New().String()

	// A pending request already ends on 2025-04-05. A new one starting
	// that same day must be refused.
	existing := LeaveRequest{
		StartDate: time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		Status:    StatusPending,
	}

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.hasOverlappingPeriodFn = func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
		overlap := !existing.StartDate.After(endDate) && !existing.EndDate.Before(startDate)
		return overlap, nil
	}

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Apply(context.Background(), employeeID, ApplyRequest{
		LeaveType: TypeSick,
		StartDate: "2025-04-05",
		EndDate:   "2025-04-07",
		Reason:    "touching boundary",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Cancel(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	employeeID := uuid.New()
	leaveID := uuid.New()

	row := LeaveRequest{ID: leaveID, EmployeeID: employeeID, Status: StatusPending}

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		copied := row
		return &copied, nil
	}
	repo.updateFn = func(ctx context.Context, l *LeaveRequest) error { return nil }

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Cancel(context.Background(), employeeID.String(), leaveID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusCancelled, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Cancel_NotOwner(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	leaveID := uuid.New()
	row := LeaveRequest{ID: leaveID, EmployeeID: uuid.New(), Status: StatusPending}

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) { return &row, nil }

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Cancel(context.Background(), uuid.New().String(), leaveID.String())
	assert.ErrorIs(t, err, leaveerrors.ErrNotLeaveOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Cancel_NotPending(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	employeeID := uuid.New()
	leaveID := uuid.New()
	row := LeaveRequest{ID: leaveID, EmployeeID: employeeID, Status: StatusApproved}

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) { return &row, nil }

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Cancel(context.Background(), employeeID.String(), leaveID.String())
	assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetByID_OwnershipGate(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	ownerID := uuid.New()
	leaveID := uuid.New()
	row := LeaveRequest{ID: leaveID, EmployeeID: ownerID, Status: StatusPending}

	repo := &fakeRepo{}
	repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) { return &row, nil }

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	owner := domain.CallerContext{EmployeeID: ownerID.String(), Role: domain.RoleEmployee}
	_, err := svc.GetByID(context.Background(), owner, leaveID.String())
	assert.NoError(t, err)

	stranger := domain.CallerContext{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee}
	_, err = svc.GetByID(context.Background(), stranger, leaveID.String())
	assert.ErrorIs(t, err, leaveerrors.ErrNotLeaveOwner)

	hr := domain.CallerContext{EmployeeID: uuid.New().String(), Role: domain.RoleHR}
	_, err = svc.GetByID(context.Background(), hr, leaveID.String())
	assert.NoError(t, err)
}

func TestService_Review_ApprovalMaterializesAttendance(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	employeeID := uuid.New()
	reviewerID := uuid.New()
	leaveID := uuid.New()

	row := LeaveRequest{
		ID:         leaveID,
		EmployeeID: employeeID,
		LeaveType:  TypeEarned,
		StartDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC),
		TotalDays:  3,
		Status:     StatusPending,
	}

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		copied := row
		return &copied, nil
	}
	repo.updateFn = func(ctx context.Context, l *LeaveRequest) error { return nil }

	// 2025-04-02 already has a checked-in row; approval must flip it to
	// Leave instead of creating a second row for the day.
	checkIn := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	attRepo := &fakeAttendanceRepo{
		byDate: map[string]*attendance.Attendance{
			"2025-04-02": {
				ID:         uuid.New(),
				EmployeeID: employeeID,
				Date:       time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
				CheckIn:    &checkIn,
				Status:     attendance.StatusPresent,
			},
		},
	}
	notifRepo := &fakeNotificationRepo{}
	outboxRepo := &fakeOutboxRepo{}

	svc := NewService(db, repo, attRepo, notifRepo, outboxRepo)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Review(context.Background(), reviewerID.String(), leaveID.String(), ReviewRequest{
		Decision: StatusApproved,
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, reviewerID.String(), *resp.ReviewedBy)

	assert.Len(t, attRepo.created, 2)
	assert.Len(t, attRepo.updated, 1)
	for _, a := range attRepo.created {
		assert.Equal(t, attendance.StatusLeave, a.Status)
		assert.Nil(t, a.CheckIn)
	}
	assert.Equal(t, attendance.StatusLeave, attRepo.updated[0].Status)
	assert.NotNil(t, attRepo.updated[0].CheckIn)

	assert.Len(t, notifRepo.created, 1)
	assert.Equal(t, notification.TypeLeave, notifRepo.created[0].Type)
	assert.Equal(t, employeeID, notifRepo.created[0].EmployeeID)

	assert.Len(t, outboxRepo.created, 1)
	assert.Equal(t, leaveID.String(), outboxRepo.created[0].AggregateID)
	assert.Equal(t, kafka.OutboxStatusPending, outboxRepo.created[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Review_RejectionSkipsAttendance(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	employeeID := uuid.New()
	leaveID := uuid.New()

	row := LeaveRequest{
		ID:         leaveID,
		EmployeeID: employeeID,
		LeaveType:  TypeCasual,
		StartDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		Status:     StatusPending,
	}

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		copied := row
		return &copied, nil
	}
	repo.updateFn = func(ctx context.Context, l *LeaveRequest) error { return nil }

	attRepo := &fakeAttendanceRepo{}
	notifRepo := &fakeNotificationRepo{}

	svc := newTestService(db, repo, attRepo, notifRepo)

	comment := "insufficient coverage that week"
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Review(context.Background(), uuid.New().String(), leaveID.String(), ReviewRequest{
		Decision: StatusRejected,
		Comment:  &comment,
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, resp.Status)
	assert.Empty(t, attRepo.created)
	assert.Empty(t, attRepo.updated)
	assert.Len(t, notifRepo.created, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Review_NotPending(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	leaveID := uuid.New()
	row := LeaveRequest{ID: leaveID, EmployeeID: uuid.New(), Status: StatusApproved}

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) { return &row, nil }

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Review(context.Background(), uuid.New().String(), leaveID.String(), ReviewRequest{
		Decision: StatusApproved,
	})
	assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Balance(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{}
	repo.sumApprovedDaysByTypeFn = func(ctx context.Context, employeeID string, year int) (map[string]int, error) {
		return map[string]int{TypeCasual: 5, TypeSick: 14}, nil
	}

	svc := newTestService(db, repo, &fakeAttendanceRepo{}, &fakeNotificationRepo{})

	resp, err := svc.Balance(context.Background(), uuid.New().String(), 2025)
	assert.NoError(t, err)
	assert.Equal(t, 2025, resp.Year)

	byType := make(map[string]BalanceEntry, len(resp.Balances))
	for _, b := range resp.Balances {
		byType[b.LeaveType] = b
	}

	assert.Equal(t, 12, byType[TypeCasual].Quota)
	assert.Equal(t, 5, byType[TypeCasual].Used)
	assert.Equal(t, 7, byType[TypeCasual].Remaining)

	// Overspent types clamp at zero instead of going negative.
	assert.Equal(t, 14, byType[TypeSick].Used)
	assert.Equal(t, 0, byType[TypeSick].Remaining)

	assert.Equal(t, 15, byType[TypeEarned].Quota)
	assert.Equal(t, 180, byType[TypeMaternity].Quota)
	assert.True(t, byType[TypeUnpaid].Unlimited)
}
