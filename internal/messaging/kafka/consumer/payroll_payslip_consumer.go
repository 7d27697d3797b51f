package consumer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"hrms/internal/events"
	"hrms/internal/payroll"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumePayrollProcessed renders a payslip PDF for every processed
// payroll and archives it under archiveDir. Messages are committed only
// after the file is on disk, so a crashed consumer re-renders instead of
// losing payslips.
func ConsumePayrollProcessed(
	ctx context.Context,
	reader *kafkago.Reader,
	payrollService payroll.Service,
	archiveDir string,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_payslip")
	log.Info("payroll payslip consumer started", zap.String("archive_dir", archiveDir))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll payslip consumer stopped")
				return
			}
			log.Error("fetch payroll processed message failed", zap.Error(err))
			continue
		}

		var event events.PayrollProcessedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payroll processed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		pdf, filename, err := payrollService.RenderPayslip(ctx, event.PayrollID)
		if err != nil {
			log.Error("render payslip failed",
				zap.String("payroll_id", event.PayrollID),
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			continue
		}

		if err := os.WriteFile(filepath.Join(archiveDir, filename), pdf, 0o644); err != nil {
			log.Error("archive payslip failed",
				zap.String("payroll_id", event.PayrollID),
				zap.String("filename", filename),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll processed message failed", zap.Error(err))
			continue
		}

		log.Info("payslip archived",
			zap.String("payroll_id", event.PayrollID),
			zap.String("employee_id", event.EmployeeID),
			zap.String("filename", filename),
		)
	}
}
