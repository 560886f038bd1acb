package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/1300Sarthak/CS157a/internal/models"
)

// EnrollmentSession is the store capability the batch workflow runs on: a
// single connection with switchable auto-commit, the three lookups and the
// insert, all inside the open transaction.
type EnrollmentSession interface {
	AutoCommit() bool
	SetAutoCommit(ctx context.Context, enabled bool) error
	Commit() error
	Rollback() error
	Close() error

	ResolveStudentID(ctx context.Context, email string) (int64, error)
	ResolveCourseID(ctx context.Context, code string) (int64, error)
	EnrollmentExists(ctx context.Context, studentID, courseID int64, term string) (bool, error)
	InsertEnrollment(ctx context.Context, studentID, courseID int64, term string, grade *string) error

	IsConstraintViolation(err error) bool
	StoreMessage(err error) string
}

// SessionOpener hands out a dedicated session per batch call.
type SessionOpener func(ctx context.Context) (EnrollmentSession, error)

const (
	detailEnrolled        = "enrolled"
	detailCourseNotFound  = "course not found"
	detailAlreadyEnrolled = "already enrolled"
)

type entityResolver struct {
	session EnrollmentSession
}

// student returns found=false on a miss; err is reserved for store failures.
func (r entityResolver) student(ctx context.Context, email string) (int64, bool, error) {
	id, err := r.session.ResolveStudentID(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r entityResolver) course(ctx context.Context, code string) (int64, bool, error) {
	id, err := r.session.ResolveCourseID(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

type duplicateChecker struct {
	session EnrollmentSession
}

func (d duplicateChecker) exists(ctx context.Context, studentID, courseID int64, term string) (bool, error) {
	return d.session.EnrollmentExists(ctx, studentID, courseID, term)
}

type enrollmentWriter struct {
	session EnrollmentSession
}

// insert writes an ungraded enrollment. A store rejection is returned as a
// non-empty message with a nil error.
func (w enrollmentWriter) insert(ctx context.Context, studentID, courseID int64, term string) (string, error) {
	err := w.session.InsertEnrollment(ctx, studentID, courseID, term, nil)
	if err == nil {
		return "", nil
	}
	if w.session.IsConstraintViolation(err) {
		msg := w.session.StoreMessage(err)
		if msg == "" {
			msg = "rejected by store constraint"
		}
		return msg, nil
	}
	return "", err
}

type attemptKind int

const (
	attemptSucceeded attemptKind = iota
	attemptClassified
	attemptFatal
)

// attemptResult is what one course code produced. Fatal results carry err and
// no outcome.
type attemptResult struct {
	kind    attemptKind
	outcome models.CourseOutcome
	err     error
}

func succeeded(code string) attemptResult {
	return attemptResult{kind: attemptSucceeded, outcome: models.CourseOutcome{
		CourseCode: code, Classification: models.ClassificationSuccess, Detail: detailEnrolled,
	}}
}

func classified(code string, c models.Classification, detail string) attemptResult {
	return attemptResult{kind: attemptClassified, outcome: models.CourseOutcome{
		CourseCode: code, Classification: c, Detail: detail,
	}}
}

func fatal(code, step string, err error) attemptResult {
	return attemptResult{kind: attemptFatal, err: fmt.Errorf("%s %s: %w", step, code, err)}
}

// enrollmentAttempt runs resolve, duplicate check and write for one code.
type enrollmentAttempt struct {
	resolver   entityResolver
	duplicates duplicateChecker
	writer     enrollmentWriter
}

func newEnrollmentAttempt(session EnrollmentSession) enrollmentAttempt {
	return enrollmentAttempt{
		resolver:   entityResolver{session: session},
		duplicates: duplicateChecker{session: session},
		writer:     enrollmentWriter{session: session},
	}
}

func (a enrollmentAttempt) run(ctx context.Context, studentID int64, code, term string) attemptResult {
	courseID, found, err := a.resolver.course(ctx, code)
	if err != nil {
		return fatal(code, "resolve course", err)
	}
	if !found {
		return classified(code, models.ClassificationNotFound, detailCourseNotFound)
	}

	exists, err := a.duplicates.exists(ctx, studentID, courseID, term)
	if err != nil {
		return fatal(code, "check enrollment", err)
	}
	if exists {
		return classified(code, models.ClassificationDuplicate, detailAlreadyEnrolled)
	}

	rejection, err := a.writer.insert(ctx, studentID, courseID, term)
	if err != nil {
		return fatal(code, "insert enrollment", err)
	}
	if rejection != "" {
		return classified(code, models.ClassificationDuplicate, rejection)
	}
	return succeeded(code)
}
