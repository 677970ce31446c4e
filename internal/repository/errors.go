// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist. Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user is created with an email that is
// already registered. Handlers translate it into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidReference is returned when a write points at a lead or user that
// does not exist (foreign key violation). Handlers translate it into 400.
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrUserHasRecords is returned when a user still authors notes, owns
// calendar events or uploaded documents and so cannot be deleted. Handlers
// translate it into 409.
var ErrUserHasRecords = errors.New("user still has records")

// MySQL server error numbers the repositories react to.
const (
	mysqlRowIsReferenced = 1451
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

func mysqlErrNo(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports a unique key violation.
func isDuplicate(err error) bool { return mysqlErrNo(err) == mysqlDuplicateEntry }

// mapWriteErr converts foreign key violations into ErrInvalidReference and
// passes every other error through.
func mapWriteErr(err error) error {
	if err != nil && mysqlErrNo(err) == mysqlNoReferencedRow {
		return ErrInvalidReference
	}
	return err
}
