package attendance

import (
	"errors"
	"strings"

	attendanceerrors "hrms/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapWriteError flattens unique-constraint violations from concurrent
// writers on the same (employee, date) into the Conflict the first
// writer would have seen.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_attendance_employee_date" {
			return attendanceerrors.ErrAlreadyCheckedIn
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_attendance_employee_date") {
		return attendanceerrors.ErrAlreadyCheckedIn
	}

	return err
}
