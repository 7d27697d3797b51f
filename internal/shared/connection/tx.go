package connection

import (
	"database/sql"

	"gorm.io/gorm"
)

// GormTx binds a gorm session to an open *sql.Tx so every statement
// issued through the returned handle runs on that transaction instead
// of the pooled connection. Without this, repository writes made
// between BeginTx and Commit would autocommit on their own connection
// and survive a rollback.
func GormTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	session := db.Session(&gorm.Session{Context: db.Statement.Context, NewDB: true})
	session.Statement.ConnPool = tx
	return session
}
