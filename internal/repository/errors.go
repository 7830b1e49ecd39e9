// Package repository implements the storage ports of the booking engine
// on MySQL.  Methods take part in the transaction carried by their
// context (see TxManager) and fall back to the pool otherwise.  These
// sentinel values let the service layer tell failure scenarios apart
// without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by key yields no rows.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// such as a second ticket for the same payment or a duplicate seat code.
var ErrConflict = errors.New("conflict")

// ErrStaleStatus is returned by conditional status updates when the row
// is no longer in the expected state.
var ErrStaleStatus = errors.New("stale status")

// ErrEmailExists is returned when registering an address that is taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
