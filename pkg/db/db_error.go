package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx"
)

// ErrInvalidDB :
// Indicates that the connection to the database is not
// established.
var ErrInvalidDB = fmt.Errorf("invalid nil DB")

// ErrInvalidTable :
// Used when the name of the table to store records in
// is not a plain SQL identifier.
var ErrInvalidTable = fmt.Errorf("invalid table name")

// ErrNoSQLCode :
// Defines that the error message provided in input
// does not define any SQL error code.
var ErrNoSQLCode = fmt.Errorf("no SQL code found in error message")

// Defines the possible error code as returned by
// the SQL driver.
const (
	nonNullConstraint   int = 23502
	foreignKeyViolation int = 23503
	duplicatedElement   int = 23505
)

// Error :
// Defines a generic error type which is associated to a
// SQL error. It basically defines the code that was set
// as return value for the SQL query along with the init
// error.
//
// The `SQLCode` defines the SQL error code returned by
// the query.
//
// The `Err` defines the initial error that produced
// this `Error`.
type Error struct {
	SQLCode int
	Err     error
}

func (e Error) Error() string {
	return fmt.Sprintf("SQL query failed with code %d (err: %v)", e.SQLCode, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

// NonNullConstraintError :
// Indicates that a `NULL` value was inserted in a column
// which does not accept it.
//
// The `Column` defines the name of the column.
type NonNullConstraintError struct {
	Err    Error
	Column string
}

func (e NonNullConstraintError) Error() string {
	return fmt.Sprintf("null value in column \"%s\" (err: %v)", e.Column, e.Err.Err)
}

func (e NonNullConstraintError) Unwrap() error {
	return e.Err
}

// DuplicatedElementError :
// Indicates that a row violates a unique constraint.
//
// The `Constraint` defines the violated constraint.
type DuplicatedElementError struct {
	Err        Error
	Constraint string
}

func (e DuplicatedElementError) Error() string {
	return fmt.Sprintf("duplicated element violating \"%s\" (err: %v)", e.Constraint, e.Err.Err)
}

func (e DuplicatedElementError) Unwrap() error {
	return e.Err
}

// ForeignKeyViolationError :
// Indicates that a row references a missing element.
//
// The `Constraint` defines the violated constraint.
type ForeignKeyViolationError struct {
	Err        Error
	Constraint string
}

func (e ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("foreign key violation on \"%s\" (err: %v)", e.Constraint, e.Err.Err)
}

func (e ForeignKeyViolationError) Unwrap() error {
	return e.Err
}

// parseSQLCode :
// Used to parse the SQL code defined in an error message
// assuming it looks something like the following:
// `error msg (SQLSTATE CODE)`.
// In case it cannot parse the corresponding code an error
// is returned.
func parseSQLCode(msg string) (int, error) {
	sqlCue := "SQLSTATE "

	codeIndex := strings.Index(msg, sqlCue)
	if codeIndex < 0 {
		return 0, ErrNoSQLCode
	}

	end := msg[codeIndex+len(sqlCue):]

	id := strings.Index(end, ")")
	if id < 0 {
		return 0, ErrNoSQLCode
	}

	code, err := strconv.ParseInt(end[:id], 10, 32)
	if err != nil {
		return 0, ErrNoSQLCode
	}

	return int(code), nil
}

// sqlDetails :
// Extracts the SQL code of the input error along with the
// name of the column and constraint involved if the driver
// provides them.
func sqlDetails(err error) (int, string, string, error) {
	var pgErr pgx.PgError
	if errors.As(err, &pgErr) {
		code, cErr := strconv.ParseInt(pgErr.Code, 10, 32)
		if cErr != nil {
			return 0, "", "", ErrNoSQLCode
		}
		return int(code), pgErr.ColumnName, pgErr.ConstraintName, nil
	}

	code, pErr := parseSQLCode(err.Error())
	return code, "", "", pErr
}

// formatDBError :
// Used to extract some information about the DB error
// provided in input. It will typically define whether
// the code refer to a foreign key violation, a `null`
// value where it should not be, etc.
//
// Returns the formatted DB error (in case all else
// fails, the initial error is returned).
func formatDBError(err error) error {
	if err == nil {
		return nil
	}

	code, column, constraint, pErr := sqlDetails(err)
	if pErr != nil {
		return err
	}

	base := Error{
		SQLCode: code,
		Err:     err,
	}

	switch code {
	case nonNullConstraint:
		return NonNullConstraintError{base, column}
	case foreignKeyViolation:
		return ForeignKeyViolationError{base, constraint}
	case duplicatedElement:
		return DuplicatedElementError{base, constraint}
	}

	return base
}
