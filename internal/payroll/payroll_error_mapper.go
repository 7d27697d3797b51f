package payroll

import (
	"errors"
	"strings"

	payrollerrors "hrms/internal/payroll/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapWriteError flattens a unique-constraint race on
// (employee, month, year) into the Conflict the loser should see.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_payroll_employee_period" {
			return payrollerrors.ErrPayrollPeriodExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_payroll_employee_period") {
		return payrollerrors.ErrPayrollPeriodExists
	}

	return err
}
