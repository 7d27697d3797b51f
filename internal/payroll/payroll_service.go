package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hrms/internal/domain"
	"hrms/internal/events"
	"hrms/internal/messaging/kafka"
	"hrms/internal/notification"
	payrollerrors "hrms/internal/payroll/errors"
	"hrms/internal/shared/apperror"
	"hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, caller domain.CallerContext, req UpsertRequest) (PayrollResponse, error)
	GetByID(ctx context.Context, caller domain.CallerContext, id string) (PayrollResponse, error)
	ListForEmployee(ctx context.Context, employeeID string, year int) ([]PayrollResponse, error)
	ListAll(ctx context.Context, filter ListFilter) (ListAllResponse, error)
	Process(ctx context.Context, caller domain.CallerContext, id string, req ProcessRequest) (PayrollResponse, error)
	GenerateBulk(ctx context.Context, caller domain.CallerContext, month, year int) (GenerateBulkResponse, error)
	Payslip(ctx context.Context, caller domain.CallerContext, id string) ([]byte, string, error)
	RenderPayslip(ctx context.Context, id string) ([]byte, string, error)
}

type service struct {
	db               *sql.DB
	repo             Repository
	notificationRepo notification.Repository
	outboxRepo       kafka.OutboxRepository
	logger           *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	notificationRepo notification.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:               db,
		repo:             repo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		logger:           l,
	}
}

// calculateSalary recomputes every derived money column from the input
// components. It is the single source of payroll arithmetic.
func calculateSalary(p *Payroll) {
	p.GrossSalary = p.BasicSalary.
		Add(p.HRA).
		Add(p.DA).
		Add(p.TA).
		Add(p.OtherAllowances)
	p.TotalDeductions = p.PFDeduction.
		Add(p.TaxDeduction).
		Add(p.OtherDeductions)
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
}

func validateAmounts(req UpsertRequest) error {
	for _, v := range []decimal.Decimal{
		req.BasicSalary, req.HRA, req.DA, req.TA, req.OtherAllowances,
		req.PFDeduction, req.TaxDeduction, req.OtherDeductions,
	} {
		if v.IsNegative() {
			return payrollerrors.ErrNegativeAmount
		}
	}
	return nil
}

func (s *service) Upsert(ctx context.Context, caller domain.CallerContext, req UpsertRequest) (PayrollResponse, error) {
	s.logger.Debug("upsert payroll requested",
		zap.String("employee_id", req.EmployeeID),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
	)

	if !caller.Privileged() {
		return PayrollResponse{}, apperror.ErrForbidden
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidEmployeeID
	}
	if err := validateAmounts(req); err != nil {
		return PayrollResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("upsert payroll begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByEmployeeAndPeriod(ctx, req.EmployeeID, req.Month, req.Year)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("upsert payroll lookup failed", zap.Error(err))
			return PayrollResponse{}, err
		}
		p = &Payroll{
			ID:            uuid.New(),
			EmployeeID:    employeeUUID,
			Month:         req.Month,
			Year:          req.Year,
			PaymentStatus: StatusPending,
		}
	}

	p.BasicSalary = req.BasicSalary
	p.HRA = req.HRA
	p.DA = req.DA
	p.TA = req.TA
	p.OtherAllowances = req.OtherAllowances
	p.PFDeduction = req.PFDeduction
	p.TaxDeduction = req.TaxDeduction
	p.OtherDeductions = req.OtherDeductions
	calculateSalary(p)

	persist := qtx.Update
	if p.CreatedAt.IsZero() {
		persist = qtx.Create
	}
	if err := persist(ctx, p); err != nil {
		s.logger.Error("upsert payroll persist failed", zap.Error(err))
		return PayrollResponse{}, mapWriteError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("upsert payroll commit failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	s.logger.Info("upsert payroll success",
		zap.String("payroll_id", p.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("net_salary", p.NetSalary.StringFixed(2)),
	)
	return mapToResponse(*p), nil
}

func (s *service) GetByID(ctx context.Context, caller domain.CallerContext, id string) (PayrollResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidPayrollID
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollResponse{}, payrollerrors.ErrPayrollNotFound
		}
		return PayrollResponse{}, err
	}
	if !caller.Privileged() && p.EmployeeID.String() != caller.EmployeeID {
		return PayrollResponse{}, payrollerrors.ErrNotPayrollOwner
	}
	return mapToResponse(*p), nil
}

func (s *service) ListForEmployee(ctx context.Context, employeeID string, year int) ([]PayrollResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, payrollerrors.ErrInvalidEmployeeID
	}

	rows, err := s.repo.FindByEmployeeAndYear(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("list payrolls for employee failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) ListAll(ctx context.Context, filter ListFilter) (ListAllResponse, error) {
	rows, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list payrolls failed", zap.Error(err))
		return ListAllResponse{}, err
	}

	totalGross := decimal.Zero
	totalNet := decimal.Zero
	for _, p := range rows {
		totalGross = totalGross.Add(p.GrossSalary)
		totalNet = totalNet.Add(p.NetSalary)
	}

	return ListAllResponse{
		Summary: ListSummary{
			TotalGross: totalGross.StringFixed(2),
			TotalNet:   totalNet.StringFixed(2),
			Count:      len(rows),
		},
		Payrolls: mapToListResponse(rows),
	}, nil
}

func (s *service) Process(ctx context.Context, caller domain.CallerContext, id string, req ProcessRequest) (PayrollResponse, error) {
	s.logger.Debug("process payroll requested",
		zap.String("payroll_id", id),
		zap.String("status", req.Status),
	)

	if !caller.Privileged() {
		return PayrollResponse{}, apperror.ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidPayrollID
	}
	if req.Status != StatusProcessed && req.Status != StatusPaid {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("process payroll begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollResponse{}, payrollerrors.ErrPayrollNotFound
		}
		s.logger.Error("process payroll lookup failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	p.PaymentStatus = req.Status
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		paymentDate, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return PayrollResponse{}, payrollerrors.ErrInvalidPaymentDate
		}
		p.PaymentDate = &paymentDate
	} else if req.Status == StatusPaid && p.PaymentDate == nil {
		now := time.Now().UTC()
		p.PaymentDate = &now
	}

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("process payroll persist failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	refType := "payrolls"
	title := fmt.Sprintf("Salary %s", req.Status)
	message := fmt.Sprintf("Your salary of %s for %s %d has been %s.",
		p.NetSalary.StringFixed(2), time.Month(p.Month).String(), p.Year, req.Status,
	)
	ntx := s.notificationRepo.WithTx(tx)
	if err := notification.Notify(ctx, ntx, p.EmployeeID, title, message, notification.TypePayroll, &p.ID, &refType); err != nil {
		s.logger.Error("process payroll notification failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	if err := s.writeProcessedEvent(ctx, tx, caller, p); err != nil {
		s.logger.Error("process payroll outbox write failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("process payroll commit failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	s.logger.Info("process payroll success",
		zap.String("payroll_id", id),
		zap.String("status", req.Status),
	)
	return mapToResponse(*p), nil
}

// writeProcessedEvent stages the payslip-rendering event in the same
// transaction that flips the payment status.
func (s *service) writeProcessedEvent(ctx context.Context, tx *sql.Tx, caller domain.CallerContext, p *Payroll) error {
	payload, err := json.Marshal(events.PayrollProcessedEvent{
		EventType:   "payroll_processed",
		PayrollID:   p.ID.String(),
		EmployeeID:  p.EmployeeID.String(),
		Month:       p.Month,
		Year:        p.Year,
		NetSalary:   p.NetSalary.StringFixed(2),
		Status:      p.PaymentStatus,
		ProcessedBy: caller.EmployeeID,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	otx := s.outboxRepo.WithTx(tx)
	return otx.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll",
		AggregateID:   p.ID.String(),
		EventType:     "payroll_processed",
		Topic:         events.PayrollProcessedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) GenerateBulk(ctx context.Context, caller domain.CallerContext, month, year int) (GenerateBulkResponse, error) {
	s.logger.Debug("generate bulk payroll requested",
		zap.Int("month", month),
		zap.Int("year", year),
	)

	if !caller.Privileged() {
		return GenerateBulkResponse{}, apperror.ErrForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("generate bulk begin tx failed", zap.Error(err))
		return GenerateBulkResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	employeeIDs, err := qtx.ListActiveEmployeeIDs(ctx)
	if err != nil {
		s.logger.Error("generate bulk employee scan failed", zap.Error(err))
		return GenerateBulkResponse{}, err
	}

	var resp GenerateBulkResponse
	for _, employeeID := range employeeIDs {
		if _, err := qtx.FindByEmployeeAndPeriod(ctx, employeeID, month, year); err == nil {
			resp.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return GenerateBulkResponse{}, err
		}

		prior, err := qtx.FindLatestBefore(ctx, employeeID, month, year)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No salary history to clone from.
				resp.Skipped++
				continue
			}
			return GenerateBulkResponse{}, err
		}

		p := &Payroll{
			ID:              uuid.New(),
			EmployeeID:      prior.EmployeeID,
			Month:           month,
			Year:            year,
			BasicSalary:     prior.BasicSalary,
			HRA:             prior.HRA,
			DA:              prior.DA,
			TA:              prior.TA,
			OtherAllowances: prior.OtherAllowances,
			PFDeduction:     prior.PFDeduction,
			TaxDeduction:    prior.TaxDeduction,
			OtherDeductions: prior.OtherDeductions,
			PaymentStatus:   StatusPending,
		}
		calculateSalary(p)

		if err := qtx.Create(ctx, p); err != nil {
			s.logger.Error("generate bulk persist failed",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
			return GenerateBulkResponse{}, mapWriteError(err)
		}
		resp.Created++
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("generate bulk commit failed", zap.Error(err))
		return GenerateBulkResponse{}, err
	}
	s.logger.Info("generate bulk success",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

func (s *service) Payslip(ctx context.Context, caller domain.CallerContext, id string) ([]byte, string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, "", payrollerrors.ErrInvalidPayrollID
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", payrollerrors.ErrPayrollNotFound
		}
		return nil, "", err
	}
	if !caller.Privileged() && p.EmployeeID.String() != caller.EmployeeID {
		return nil, "", payrollerrors.ErrNotPayrollOwner
	}

	return s.renderPayslip(p)
}

// RenderPayslip is the system-level entry point used by the payslip
// consumer, which has no HTTP caller to check ownership against.
func (s *service) RenderPayslip(ctx context.Context, id string) ([]byte, string, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", payrollerrors.ErrPayrollNotFound
		}
		return nil, "", err
	}
	return s.renderPayslip(p)
}

func (s *service) renderPayslip(p *Payroll) ([]byte, string, error) {
	period := fmt.Sprintf("%s %d", time.Month(p.Month).String(), p.Year)
	lines := []string{
		"Payslip - " + period,
		"",
	}
	if p.Employee != nil {
		lines = append(lines,
			"Employee: "+p.Employee.FullName(),
			"Code: "+p.Employee.EmployeeCode,
			"Department: "+p.Employee.Department,
			"Designation: "+p.Employee.Designation,
			"",
		)
	}
	lines = append(lines,
		"Basic Salary: "+p.BasicSalary.StringFixed(2),
		"HRA: "+p.HRA.StringFixed(2),
		"DA: "+p.DA.StringFixed(2),
		"TA: "+p.TA.StringFixed(2),
		"Other Allowances: "+p.OtherAllowances.StringFixed(2),
		"Gross Salary: "+p.GrossSalary.StringFixed(2),
		"",
		"PF Deduction: "+p.PFDeduction.StringFixed(2),
		"Tax Deduction: "+p.TaxDeduction.StringFixed(2),
		"Other Deductions: "+p.OtherDeductions.StringFixed(2),
		"Total Deductions: "+p.TotalDeductions.StringFixed(2),
		"",
		"Net Salary: "+p.NetSalary.StringFixed(2),
		"Status: "+p.PaymentStatus,
	)

	pdf, err := buildSimplePayslipPDF(lines)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("payslip-%d-%02d-%s.pdf", p.Year, p.Month, p.ID.String())
	return pdf, filename, nil
}

func mapToResponse(p Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:              p.ID.String(),
		EmployeeID:      p.EmployeeID.String(),
		Month:           p.Month,
		Year:            p.Year,
		BasicSalary:     p.BasicSalary.StringFixed(2),
		HRA:             p.HRA.StringFixed(2),
		DA:              p.DA.StringFixed(2),
		TA:              p.TA.StringFixed(2),
		OtherAllowances: p.OtherAllowances.StringFixed(2),
		GrossSalary:     p.GrossSalary.StringFixed(2),
		PFDeduction:     p.PFDeduction.StringFixed(2),
		TaxDeduction:    p.TaxDeduction.StringFixed(2),
		OtherDeductions: p.OtherDeductions.StringFixed(2),
		TotalDeductions: p.TotalDeductions.StringFixed(2),
		NetSalary:       p.NetSalary.StringFixed(2),
		PaymentStatus:   p.PaymentStatus,
	}
	if p.Employee != nil {
		resp.EmployeeName = p.Employee.FullName()
		resp.EmployeeCode = p.Employee.EmployeeCode
		resp.Department = p.Employee.Department
	}
	if p.PaymentDate != nil {
		v := p.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &v
	}
	return resp
}

func mapToListResponse(rows []Payroll) []PayrollResponse {
	resp := make([]PayrollResponse, len(rows))
	for i, p := range rows {
		resp[i] = mapToResponse(p)
	}
	return resp
}
