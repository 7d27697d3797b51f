package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "hrms/internal/attendance/errors"
	"hrms/internal/domain"
	"hrms/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, employeeID string, at time.Time) (AttendanceResponse, error)
	CheckOut(ctx context.Context, employeeID string, at time.Time) (AttendanceResponse, error)
	Today(ctx context.Context, employeeID string, now time.Time) (*AttendanceResponse, error)
	History(ctx context.Context, employeeID string, filter HistoryFilter, now time.Time) ([]AttendanceResponse, error)
	WeeklySummary(ctx context.Context, employeeID string, ref time.Time) (WeeklySummaryResponse, error)
	RecordManual(ctx context.Context, caller domain.CallerContext, req ManualRecordRequest) (AttendanceResponse, error)
	ListByDate(ctx context.Context, filter ListByDateFilter) (DailyListResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) CheckIn(ctx context.Context, employeeID string, at time.Time) (AttendanceResponse, error) {
	s.logger.Debug("check in requested",
		zap.String("employee_id", employeeID),
		zap.Time("at", at),
	)

	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("check in begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	at = at.UTC()
	today := DateOnly(at)

	existing, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check in lookup failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	var row *Attendance
	if err == nil && existing != nil && existing.ID != uuid.Nil {
		if existing.CheckIn != nil {
			s.logger.Warn("check in duplicate",
				zap.String("employee_id", employeeID),
				zap.String("date", today.Format("2006-01-02")),
			)
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
		}
		// A timestamp-less row can exist when a leave day or manual
		// record landed first. Checking in claims it.
		existing.CheckIn = &at
		existing.Status = StatusPresent
		if err := qtx.Update(ctx, existing); err != nil {
			s.logger.Error("check in persist failed", zap.Error(err))
			return AttendanceResponse{}, mapWriteError(err)
		}
		row = existing
	} else {
		row = &Attendance{
			ID:         uuid.New(),
			EmployeeID: employeeUUID,
			Date:       today,
			CheckIn:    &at,
			Status:     StatusPresent,
		}
		if err := qtx.Create(ctx, row); err != nil {
			s.logger.Error("check in persist failed", zap.Error(err))
			return AttendanceResponse{}, mapWriteError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("check in commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	s.logger.Info("check in success",
		zap.String("attendance_id", row.ID.String()),
		zap.String("employee_id", employeeID),
	)
	return mapToResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, employeeID string, at time.Time) (AttendanceResponse, error) {
	s.logger.Debug("check out requested",
		zap.String("employee_id", employeeID),
		zap.Time("at", at),
	)

	if _, err := uuid.Parse(employeeID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("check out begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	at = at.UTC()
	today := DateOnly(at)

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNoCheckInToday
		}
		s.logger.Error("check out lookup failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if row.CheckIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNoCheckInToday
	}
	if row.CheckOut != nil {
		s.logger.Warn("check out duplicate",
			zap.String("employee_id", employeeID),
			zap.String("date", today.Format("2006-01-02")),
		)
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	row.CheckOut = &at
	row.WorkHours = CalculateWorkHours(*row.CheckIn, at)
	row.Status = DeriveStatus(row.WorkHours)

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("check out persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("check out commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	s.logger.Info("check out success",
		zap.String("attendance_id", row.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Float64("work_hours", row.WorkHours),
	)
	return mapToResponse(*row), nil
}

func (s *service) Today(ctx context.Context, employeeID string, now time.Time) (*AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}

	row, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, DateOnly(now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	resp := mapToResponse(*row)
	return &resp, nil
}

func (s *service) History(ctx context.Context, employeeID string, filter HistoryFilter, now time.Time) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}

	// Default window is the trailing 30 days inclusive of today.
	to := DateOnly(now)
	from := to.AddDate(0, 0, -29)
	if filter.From != nil {
		from = DateOnly(*filter.From)
	}
	if filter.To != nil {
		to = DateOnly(*filter.To)
	}
	if from.After(to) {
		return nil, attendanceerrors.ErrInvalidDateRange
	}

	rows, err := s.repo.FindByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) WeeklySummary(ctx context.Context, employeeID string, ref time.Time) (WeeklySummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return WeeklySummaryResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	monday, sunday := WeekBounds(ref)
	rows, err := s.repo.FindByEmployeeAndRange(ctx, employeeID, monday, sunday)
	if err != nil {
		s.logger.Error("weekly summary query failed", zap.Error(err))
		return WeeklySummaryResponse{}, err
	}

	resp := WeeklySummaryResponse{
		WeekStart:    monday.Format("2006-01-02"),
		WeekEnd:      sunday.Format("2006-01-02"),
		DailyRecords: mapToListResponse(rows),
	}
	for _, row := range rows {
		resp.TotalHours += row.WorkHours
		switch row.Status {
		case StatusPresent:
			resp.PresentDays++
		case StatusHalfDay:
			resp.HalfDays++
		case StatusLeave:
			resp.LeaveDays++
		case StatusAbsent:
			resp.AbsentDays++
		}
	}
	return resp, nil
}

func (s *service) RecordManual(ctx context.Context, caller domain.CallerContext, req ManualRecordRequest) (AttendanceResponse, error) {
	s.logger.Debug("manual record requested",
		zap.String("actor_employee_id", caller.EmployeeID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
	)

	if !caller.Privileged() {
		return AttendanceResponse{}, apperror.ErrForbidden
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidDateFormat
	}

	checkIn, err := parseTimestamp(req.CheckIn)
	if err != nil {
		return AttendanceResponse{}, err
	}
	checkOut, err := parseTimestamp(req.CheckOut)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
		return AttendanceResponse{}, attendanceerrors.ErrCheckOutBeforeCheckIn
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("manual record begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("manual record lookup failed", zap.Error(err))
			return AttendanceResponse{}, err
		}
		row = &Attendance{
			ID:         uuid.New(),
			EmployeeID: employeeUUID,
			Date:       date,
			Status:     StatusPresent,
		}
	}

	if checkIn != nil {
		row.CheckIn = checkIn
	}
	if checkOut != nil {
		row.CheckOut = checkOut
	}
	if req.Notes != nil {
		row.Notes = req.Notes
	}
	if req.Status != nil {
		row.Status = *req.Status
	}
	if row.CheckIn != nil && row.CheckOut != nil {
		row.WorkHours = CalculateWorkHours(*row.CheckIn, *row.CheckOut)
		if req.Status == nil {
			row.Status = DeriveStatus(row.WorkHours)
		}
	}

	persist := qtx.Update
	if row.CreatedAt.IsZero() {
		persist = qtx.Create
	}
	if err := persist(ctx, row); err != nil {
		s.logger.Error("manual record persist failed", zap.Error(err))
		return AttendanceResponse{}, mapWriteError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("manual record commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	s.logger.Info("manual record success",
		zap.String("attendance_id", row.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("status", row.Status),
	)
	return mapToResponse(*row), nil
}

func (s *service) ListByDate(ctx context.Context, filter ListByDateFilter) (DailyListResponse, error) {
	rows, err := s.repo.FindByDate(ctx, filter)
	if err != nil {
		s.logger.Error("list by date query failed", zap.Error(err))
		return DailyListResponse{}, err
	}
	total, err := s.repo.CountEmployees(ctx, filter.Department)
	if err != nil {
		s.logger.Error("list by date headcount failed", zap.Error(err))
		return DailyListResponse{}, err
	}

	resp := DailyListResponse{
		Date:    filter.Date.Format("2006-01-02"),
		Records: mapToListResponse(rows),
		Summary: DailySummary{TotalEmployees: int(total)},
	}
	for _, row := range rows {
		switch row.Status {
		case StatusPresent:
			resp.Summary.Present++
		case StatusHalfDay:
			resp.Summary.HalfDay++
		case StatusLeave:
			resp.Summary.OnLeave++
		case StatusAbsent:
			resp.Summary.Absent++
		}
	}
	// Employees with no row at all count as absent for the day.
	unaccounted := int(total) - len(rows)
	if unaccounted > 0 {
		resp.Summary.Absent += unaccounted
	}
	return resp, nil
}

func parseTimestamp(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidTimestamp
	}
	t = t.UTC()
	return &t, nil
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		Date:       a.Date.Format("2006-01-02"),
		Status:     a.Status,
		WorkHours:  a.WorkHours,
		Notes:      a.Notes,
	}
	if a.CheckIn != nil {
		v := a.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &v
	}
	if a.CheckOut != nil {
		v := a.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &v
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName()
		resp.EmployeeCode = a.Employee.EmployeeCode
		resp.Department = a.Employee.Department
	}
	return resp
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	resp := make([]AttendanceResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapToResponse(row)
	}
	return resp
}
