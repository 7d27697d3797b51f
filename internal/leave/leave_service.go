package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hrms/internal/attendance"
	"hrms/internal/domain"
	"hrms/internal/events"
	leaveerrors "hrms/internal/leave/errors"
	"hrms/internal/messaging/kafka"
	"hrms/internal/notification"
	"hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, employeeID string, req ApplyRequest) (LeaveResponse, error)
	MyLeaves(ctx context.Context, employeeID, status string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, caller domain.CallerContext, id string) (LeaveResponse, error)
	Cancel(ctx context.Context, employeeID, id string) (LeaveResponse, error)
	Pending(ctx context.Context) ([]LeaveResponse, error)
	ListAll(ctx context.Context, filter ListFilter) ([]LeaveResponse, error)
	Review(ctx context.Context, reviewerEmployeeID, id string, req ReviewRequest) (LeaveResponse, error)
	Balance(ctx context.Context, employeeID string, year int) (BalanceResponse, error)
}

type service struct {
	db               *sql.DB
	repo             Repository
	attendanceRepo   attendance.Repository
	notificationRepo notification.Repository
	outboxRepo       kafka.OutboxRepository
	logger           *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	attendanceRepo attendance.Repository,
	notificationRepo notification.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:               db,
		repo:             repo,
		attendanceRepo:   attendanceRepo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		logger:           l,
	}
}

func (s *service) Apply(ctx context.Context, employeeID string, req ApplyRequest) (LeaveResponse, error) {
	s.logger.Debug("apply leave requested",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if endDate.Before(startDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID, startDate, endDate)
	if err != nil {
		s.logger.Error("apply leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("apply leave overlap detected",
			zap.String("employee_id", employeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l := &LeaveRequest{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  int(endDate.Sub(startDate).Hours()/24) + 1,
		Reason:     req.Reason,
		Status:     StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("apply leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("total_days", l.TotalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) MyLeaves(ctx context.Context, employeeID, status string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}

	rows, err := s.repo.FindByEmployee(ctx, employeeID, status)
	if err != nil {
		s.logger.Error("my leaves query failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, caller domain.CallerContext, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if !caller.Privileged() && l.EmployeeID.String() != caller.EmployeeID {
		return LeaveResponse{}, leaveerrors.ErrNotLeaveOwner
	}
	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, employeeID, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("employee_id", employeeID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("cancel leave lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if l.EmployeeID.String() != employeeID {
		s.logger.Warn("cancel leave denied",
			zap.String("leave_id", id),
			zap.String("employee_id", employeeID),
		)
		return LeaveResponse{}, leaveerrors.ErrNotLeaveOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	l.Status = StatusCancelled
	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("cancel leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("cancel leave success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) Pending(ctx context.Context) ([]LeaveResponse, error) {
	rows, err := s.repo.FindPending(ctx)
	if err != nil {
		s.logger.Error("pending leaves query failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) ListAll(ctx context.Context, filter ListFilter) ([]LeaveResponse, error) {
	rows, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list leaves query failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) Review(ctx context.Context, reviewerEmployeeID, id string, req ReviewRequest) (LeaveResponse, error) {
	s.logger.Debug("review leave requested",
		zap.String("leave_id", id),
		zap.String("reviewer_employee_id", reviewerEmployeeID),
		zap.String("decision", req.Decision),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	reviewerUUID, err := uuid.Parse(reviewerEmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if req.Decision != StatusApproved && req.Decision != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrInvalidDecision
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("review leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("review leave lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("review leave not pending",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	now := time.Now().UTC()
	l.Status = req.Decision
	l.ReviewedBy = &reviewerUUID
	l.ReviewedAt = &now
	l.ReviewComment = req.Comment

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("review leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if req.Decision == StatusApproved {
		if err := s.materializeLeaveDays(ctx, tx, l); err != nil {
			s.logger.Error("review leave attendance materialization failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	refType := "leave_requests"
	title := fmt.Sprintf("Leave request %s", req.Decision)
	message := fmt.Sprintf("Your %s leave from %s to %s has been %s.",
		l.LeaveType,
		l.StartDate.Format("2006-01-02"),
		l.EndDate.Format("2006-01-02"),
		req.Decision,
	)
	ntx := s.notificationRepo.WithTx(tx)
	if err := notification.Notify(ctx, ntx, l.EmployeeID, title, message, notification.TypeLeave, &l.ID, &refType); err != nil {
		s.logger.Error("review leave notification failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.writeReviewedEvent(ctx, tx, reviewerEmployeeID, l); err != nil {
		s.logger.Error("review leave outbox write failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("review leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("review leave success",
		zap.String("leave_id", id),
		zap.String("decision", req.Decision),
	)
	return mapToResponse(*l), nil
}

// writeReviewedEvent stages the review outcome in the same transaction
// that flips the leave status.
func (s *service) writeReviewedEvent(ctx context.Context, tx *sql.Tx, reviewerEmployeeID string, l *LeaveRequest) error {
	payload, err := json.Marshal(events.LeaveReviewedEvent{
		EventType:  "leave_reviewed",
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		Decision:   l.Status,
		ReviewedBy: reviewerEmployeeID,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	otx := s.outboxRepo.WithTx(tx)
	return otx.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     "leave_reviewed",
		Topic:         events.LeaveReviewedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// materializeLeaveDays upserts one attendance row per calendar day of an
// approved leave, inside the review transaction. Existing rows keep
// their timestamps but flip to Leave.
func (s *service) materializeLeaveDays(ctx context.Context, tx *sql.Tx, l *LeaveRequest) error {
	atx := s.attendanceRepo.WithTx(tx)

	for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
		row, err := atx.FindByEmployeeAndDate(ctx, l.EmployeeID.String(), d)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := atx.Create(ctx, &attendance.Attendance{
				ID:         uuid.New(),
				EmployeeID: l.EmployeeID,
				Date:       d,
				Status:     attendance.StatusLeave,
			}); err != nil {
				return err
			}
			continue
		}

		row.Status = attendance.StatusLeave
		if err := atx.Update(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Balance(ctx context.Context, employeeID string, year int) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if year < 2000 || year > 2200 {
		return BalanceResponse{}, leaveerrors.ErrInvalidYear
	}

	used, err := s.repo.SumApprovedDaysByType(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("leave balance query failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	types := []string{TypeCasual, TypeSick, TypeEarned, TypeMaternity, TypePaternity, TypeUnpaid}
	resp := BalanceResponse{Year: year, Balances: make([]BalanceEntry, 0, len(types))}
	for _, leaveType := range types {
		quota := AnnualQuota(leaveType)
		entry := BalanceEntry{
			LeaveType: leaveType,
			Quota:     quota,
			Used:      used[leaveType],
			Unlimited: quota == UnlimitedQuota,
		}
		if !entry.Unlimited {
			entry.Remaining = quota - entry.Used
			if entry.Remaining < 0 {
				entry.Remaining = 0
			}
		}
		resp.Balances = append(resp.Balances, entry)
	}
	return resp, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName()
		resp.EmployeeCode = l.Employee.EmployeeCode
		resp.Department = l.Employee.Department
	}
	if l.ReviewedBy != nil {
		v := l.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if l.ReviewedAt != nil {
		v := l.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	resp.ReviewComment = l.ReviewComment
	return resp
}

func mapToListResponse(rows []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(rows))
	for i, l := range rows {
		resp[i] = mapToResponse(l)
	}
	return resp
}
