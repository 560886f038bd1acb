package repository

import (
	"errors"

	"github.com/lib/pq"
)

const (
	integrityConstraintClass = "23"
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	raiseExceptionCode       = "P0001"
)

func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// IsConstraintViolation reports whether the store rejected a row on an
// integrity rule: any SQLSTATE class 23 error or an exception raised by a
// trigger (P0001).
func IsConstraintViolation(err error) bool {
	pqErr, ok := pqError(err)
	if !ok {
		return false
	}
	return string(pqErr.Code.Class()) == integrityConstraintClass || pqErr.Code == raiseExceptionCode
}

// IsUniqueViolation reports a unique index rejection.
func IsUniqueViolation(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation reports a foreign key rejection.
func IsForeignKeyViolation(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == foreignKeyViolationCode
}

// IsTriggerRejection reports an exception raised from a trigger or function.
func IsTriggerRejection(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == raiseExceptionCode
}

// StoreMessage returns the server's primary message when err carries one.
func StoreMessage(err error) string {
	if pqErr, ok := pqError(err); ok {
		return pqErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
