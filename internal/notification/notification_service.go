package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	notificationerrors "hrms/internal/notification/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, employeeID string, unreadOnly bool, limit int) (ListResponse, error)
	MarkRead(ctx context.Context, employeeID, id string) (NotificationResponse, error)
	MarkAllRead(ctx context.Context, employeeID string) error
	Delete(ctx context.Context, employeeID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// Notify writes a notification through the caller's transactional
// repository. Engine services call it so the notification commits or
// rolls back with the business write that produced it.
func Notify(ctx context.Context, qtx Repository, employeeID uuid.UUID, title, message, notifType string, refID *uuid.UUID, refType *string) error {
	return qtx.Create(ctx, &Notification{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		Title:         title,
		Message:       message,
		Type:          notifType,
		ReferenceID:   refID,
		ReferenceType: refType,
	})
}

func (s *service) List(ctx context.Context, employeeID string, unreadOnly bool, limit int) (ListResponse, error) {
	rows, err := s.repo.FindByEmployee(ctx, employeeID, unreadOnly, limit)
	if err != nil {
		s.logger.Error("list notifications failed", zap.Error(err))
		return ListResponse{}, err
	}

	unread, err := s.repo.CountUnread(ctx, employeeID)
	if err != nil {
		s.logger.Error("count unread notifications failed", zap.Error(err))
		return ListResponse{}, err
	}

	resp := ListResponse{
		Notifications: make([]NotificationResponse, len(rows)),
		UnreadCount:   unread,
	}
	for i, n := range rows {
		resp.Notifications[i] = mapToResponse(n)
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, employeeID, id string) (NotificationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return NotificationResponse{}, notificationerrors.ErrInvalidNotificationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("mark read begin tx failed", zap.Error(err))
		return NotificationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	n, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotificationResponse{}, notificationerrors.ErrNotificationNotFound
		}
		s.logger.Error("mark read lookup failed", zap.Error(err))
		return NotificationResponse{}, err
	}
	if n.EmployeeID.String() != employeeID {
		s.logger.Warn("mark read denied",
			zap.String("notification_id", id),
			zap.String("employee_id", employeeID),
		)
		return NotificationResponse{}, notificationerrors.ErrNotNotificationOwner
	}

	if err := qtx.MarkRead(ctx, id); err != nil {
		s.logger.Error("mark read persist failed", zap.Error(err))
		return NotificationResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("mark read commit failed", zap.Error(err))
		return NotificationResponse{}, err
	}

	n.IsRead = true
	return mapToResponse(*n), nil
}

func (s *service) MarkAllRead(ctx context.Context, employeeID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("mark all read begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.MarkAllRead(ctx, employeeID); err != nil {
		s.logger.Error("mark all read persist failed", zap.Error(err))
		return err
	}
	return tx.Commit()
}

func (s *service) Delete(ctx context.Context, employeeID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notificationerrors.ErrInvalidNotificationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete notification begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	n, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notificationerrors.ErrNotificationNotFound
		}
		return err
	}
	if n.EmployeeID.String() != employeeID {
		return notificationerrors.ErrNotNotificationOwner
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete notification persist failed", zap.Error(err))
		return err
	}
	return tx.Commit()
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReferenceID != nil {
		v := n.ReferenceID.String()
		resp.ReferenceID = &v
	}
	resp.ReferenceType = n.ReferenceType
	return resp
}
