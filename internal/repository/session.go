package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrAutoCommitEnabled is returned by Commit and Rollback when the session is
// not inside a manual transaction.
var ErrAutoCommitEnabled = errors.New("session is in auto-commit mode")

const insertSavepoint = "enrollment_insert"

type queryExecer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// QueryObserver receives the duration of every statement a Session runs.
type QueryObserver func(label string, duration time.Duration)

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithQueryObserver times each statement.
func WithQueryObserver(observer QueryObserver) SessionOption {
	return func(s *Session) {
		s.observe = observer
	}
}

// WithTxOptions sets the isolation level used when auto-commit is disabled.
func WithTxOptions(opts *sql.TxOptions) SessionOption {
	return func(s *Session) {
		s.txOptions = opts
	}
}

// Session pins one pooled connection and gives it connection-level
// auto-commit semantics. With auto-commit on, every statement runs on the
// bare connection. Turning it off opens a transaction; Commit and Rollback
// close it, and the next statement opens a new one while auto-commit stays
// off. Turning auto-commit back on discards any transaction still open.
//
// A Session is not safe for concurrent use.
type Session struct {
	conn       *sqlx.Conn
	tx         *sqlx.Tx
	autoCommit bool
	txOptions  *sql.TxOptions
	observe    QueryObserver
}

// OpenSession reserves a dedicated connection from db. Close returns it.
func OpenSession(ctx context.Context, db *sqlx.DB, opts ...SessionOption) (*Session, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	s := &Session{conn: conn, autoCommit: true}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AutoCommit reports the current mode.
func (s *Session) AutoCommit() bool {
	return s.autoCommit
}

// SetAutoCommit switches modes. Disabling begins a transaction immediately.
func (s *Session) SetAutoCommit(ctx context.Context, enabled bool) error {
	if enabled == s.autoCommit {
		return nil
	}
	if !enabled {
		if err := s.begin(ctx); err != nil {
			return err
		}
		s.autoCommit = false
		return nil
	}
	s.autoCommit = true
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("discard open transaction: %w", err)
	}
	return nil
}

// Commit makes the open transaction durable.
func (s *Session) Commit() error {
	if s.autoCommit {
		return ErrAutoCommitEnabled
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the open transaction. A transaction already closed by
// the driver is not an error.
func (s *Session) Rollback() error {
	if s.autoCommit {
		return ErrAutoCommitEnabled
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Close discards any open transaction and returns the connection to the pool.
func (s *Session) Close() error {
	var rollbackErr error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			rollbackErr = fmt.Errorf("discard open transaction: %w", err)
		}
		s.tx = nil
	}
	return errors.Join(rollbackErr, s.conn.Close())
}

// ResolveStudentID looks a student up by exact email. sql.ErrNoRows when absent.
func (s *Session) ResolveStudentID(ctx context.Context, email string) (int64, error) {
	const query = `SELECT student_id FROM student WHERE email = $1`
	var id int64
	err := s.get(ctx, "resolve_student", &id, query, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("resolve student: %w", err)
	}
	return id, err
}

// ResolveCourseID looks a course up by its stored code. The caller
// normalizes the code. sql.ErrNoRows when absent.
func (s *Session) ResolveCourseID(ctx context.Context, code string) (int64, error) {
	const query = `SELECT course_id FROM course WHERE course_code = $1`
	var id int64
	err := s.get(ctx, "resolve_course", &id, query, code)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("resolve course: %w", err)
	}
	return id, err
}

// EnrollmentExists checks the (student, course, term) key.
func (s *Session) EnrollmentExists(ctx context.Context, studentID, courseID int64, term string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollment WHERE student_id = $1 AND course_id = $2 AND semester = $3)`
	var exists bool
	if err := s.get(ctx, "enrollment_exists", &exists, query, studentID, courseID, term); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// InsertEnrollment writes one enrollment row. The driver error is returned
// unwrapped so callers can classify it with IsConstraintViolation.
//
// Inside a transaction the insert runs under a savepoint. PostgreSQL aborts the
// whole transaction on a failed statement, so a rejected insert is rolled back
// to the savepoint and the transaction stays usable for the next statement.
func (s *Session) InsertEnrollment(ctx context.Context, studentID, courseID int64, term string, grade *string) error {
	const query = `INSERT INTO enrollment (student_id, course_id, semester, grade) VALUES ($1, $2, $3, $4)`
	q, err := s.execer(ctx)
	if err != nil {
		return err
	}
	if s.autoCommit {
		start := time.Now()
		_, err = q.ExecContext(ctx, query, studentID, courseID, term, grade)
		s.record("insert_enrollment", start)
		return err
	}

	if _, err := q.ExecContext(ctx, "SAVEPOINT "+insertSavepoint); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}
	start := time.Now()
	_, insertErr := q.ExecContext(ctx, query, studentID, courseID, term, grade)
	s.record("insert_enrollment", start)
	if insertErr != nil {
		if _, err := q.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+insertSavepoint); err != nil {
			// the rejection is not wrapped: the transaction is unusable now
			return fmt.Errorf("rollback to savepoint after %q: %w", insertErr.Error(), err)
		}
		return insertErr
	}
	if _, err := q.ExecContext(ctx, "RELEASE SAVEPOINT "+insertSavepoint); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// IsConstraintViolation classifies errors returned by InsertEnrollment.
func (s *Session) IsConstraintViolation(err error) bool {
	return IsConstraintViolation(err)
}

// StoreMessage extracts the server message of a rejected statement.
func (s *Session) StoreMessage(err error) string {
	return StoreMessage(err)
}

func (s *Session) begin(ctx context.Context) error {
	tx, err := s.conn.BeginTxx(ctx, s.txOptions)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Session) execer(ctx context.Context) (queryExecer, error) {
	if s.autoCommit {
		return s.conn, nil
	}
	if s.tx == nil {
		if err := s.begin(ctx); err != nil {
			return nil, err
		}
	}
	return s.tx, nil
}

func (s *Session) get(ctx context.Context, label string, dest interface{}, query string, args ...interface{}) error {
	q, err := s.execer(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	err = sqlx.GetContext(ctx, q, dest, query, args...)
	s.record(label, start)
	return err
}

func (s *Session) record(label string, start time.Time) {
	if s.observe != nil {
		s.observe(label, time.Since(start))
	}
}
