package sqlstore

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// MySQL server error numbers worth retrying.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// isTransient reports whether err is a contention error that a later attempt may not hit.
func isTransient(err error) bool {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	return errors.Is(err, mysqldriver.ErrInvalidConn)
}
