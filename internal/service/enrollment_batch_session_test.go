package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1300Sarthak/CS157a/internal/models"
	"github.com/1300Sarthak/CS157a/internal/repository"
)

func newSessionBackedBatch(t *testing.T) (*BatchEnrollmentService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	open := func(ctx context.Context) (EnrollmentSession, error) {
		session, err := repository.OpenSession(ctx, sqlxDB)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
	return NewBatchEnrollmentService(open, nil, nil, 0, nil), mock
}

func expectCourseAttempt(mock sqlmock.Sqlmock, code string, courseID int64) {
	mock.ExpectQuery("SELECT course_id FROM course").
		WithArgs(code).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow(courseID))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1), courseID, "Fall 2025").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("^SAVEPOINT enrollment_insert$").WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestEnrollBatchOnSessionClassifiesCoursesAfterStoreRejection(t *testing.T) {
	svc, mock := newSessionBackedBatch(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT student_id FROM student").
		WithArgs("a@x.edu").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(1))

	expectCourseAttempt(mock, "CS157A", 10)
	mock.ExpectExec("INSERT INTO enrollment").
		WithArgs(int64(1), int64(10), "Fall 2025", nil).
		WillReturnError(&pq.Error{Code: "P0001", Message: "Classroom capacity exceeded"})
	mock.ExpectExec("^ROLLBACK TO SAVEPOINT enrollment_insert$").WillReturnResult(sqlmock.NewResult(0, 0))

	expectCourseAttempt(mock, "CS146", 11)
	mock.ExpectExec("INSERT INTO enrollment").
		WithArgs(int64(1), int64(11), "Fall 2025", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("^RELEASE SAVEPOINT enrollment_insert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	report, err := svc.EnrollBatch(context.Background(), "a@x.edu", "Fall 2025", []string{"CS157A", "CS146"})
	require.NoError(t, err)

	assert.Equal(t, models.VerdictHasFailures, report.Verdict)
	assert.Equal(t, models.ActionRolledBack, report.Action)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, models.CourseOutcome{CourseCode: "CS157A", Classification: models.ClassificationDuplicate, Detail: "Classroom capacity exceeded"}, report.Outcomes[0])
	assert.Equal(t, models.CourseOutcome{CourseCode: "CS146", Classification: models.ClassificationSuccess, Detail: "enrolled"}, report.Outcomes[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollBatchOnSessionCommitsAfterReleasingSavepoints(t *testing.T) {
	svc, mock := newSessionBackedBatch(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT student_id FROM student").
		WithArgs("a@x.edu").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(1))
	expectCourseAttempt(mock, "CS157A", 10)
	mock.ExpectExec("INSERT INTO enrollment").
		WithArgs(int64(1), int64(10), "Fall 2025", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("^RELEASE SAVEPOINT enrollment_insert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	report, err := svc.EnrollBatch(context.Background(), "a@x.edu", "Fall 2025", []string{"cs157a"})
	require.NoError(t, err)

	assert.Equal(t, models.VerdictAllSucceeded, report.Verdict)
	assert.Equal(t, models.ActionCommitted, report.Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
