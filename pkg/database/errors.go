package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrReadingNotFound is returned when no reading has the requested id
	ErrReadingNotFound = errors.New("reading not found")
	// ErrTankNotFound is returned when no tank has the requested id
	ErrTankNotFound = errors.New("tank not found")
	// ErrInvalidInput marks errors caused by the caller's payload
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnresolvedReference is returned when a name could not be turned into an id
	ErrUnresolvedReference = errors.New("unresolved reference")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ClassifyError reports the failure reason for an error returned by a query operation
func ClassifyError(err error) models.FailureReason {
	return classifyError(err)
}

// classifyError maps a store error onto a failure reason
func classifyError(err error) models.FailureReason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return models.ReasonValidation
	case errors.Is(err, ErrReadingNotFound), errors.Is(err, ErrTankNotFound), errors.Is(err, sql.ErrNoRows):
		return models.ReasonNotFound
	case errors.Is(err, ErrUnresolvedReference):
		return models.ReasonReferential
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, sql.ErrConnDone),
		errors.Is(err, driver.ErrBadConn), errors.Is(err, context.DeadlineExceeded):
		return models.ReasonUnavailable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23503":
			return models.ReasonReferential
		case pqErr.Code.Class() == "23":
			return models.ReasonConstraint
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57":
			return models.ReasonUnavailable
		}
		return models.ReasonInternal
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return models.ReasonReferential
		}
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return models.ReasonConstraint
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return models.ReasonUnavailable
		}
		return models.ReasonInternal
	}

	msg := strings.ToUpper(err.Error())
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return models.ReasonReferential
	case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "CHECK CONSTRAINT"), strings.Contains(msg, "NOT NULL CONSTRAINT"):
		return models.ReasonConstraint
	}

	return models.ReasonInternal
}

// failure logs a failed write operation and turns it into a result
func failure(operation string, err error) models.Result {
	reason := classifyError(err)
	log.Printf("❌ %s failed (%s): %v", operation, reason, err)
	return models.Failed(reason, err.Error())
}
