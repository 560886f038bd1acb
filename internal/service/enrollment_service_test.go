package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1300Sarthak/CS157a/internal/dto"
	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/export"
)

type mockEnrollmentRepo struct {
	created     *models.Enrollment
	createErr   error
	gradeErr    error
	deleteErr   error
	graded      []string
	dropped     int
	transcript  []models.TranscriptRow
	roster      []models.RosterEntry
	rosterCalls int
	listFilter  models.EnrollmentFilter
}

func (m *mockEnrollmentRepo) List(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	m.listFilter = filter
	return []models.EnrollmentDetail{}, nil
}

func (m *mockEnrollmentRepo) ListByStudent(context.Context, int64) ([]models.StudentEnrollment, error) {
	return []models.StudentEnrollment{{Term: "Fall 2025", CourseCode: "CS157A"}}, nil
}

func (m *mockEnrollmentRepo) Roster(context.Context, int64, string) ([]models.RosterEntry, error) {
	m.rosterCalls++
	return m.roster, nil
}

func (m *mockEnrollmentRepo) Transcript(context.Context, string) ([]models.TranscriptRow, error) {
	return m.transcript, nil
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateGrade(_ context.Context, _, _ int64, _, grade string) error {
	if m.gradeErr != nil {
		return m.gradeErr
	}
	m.graded = append(m.graded, grade)
	return nil
}

func (m *mockEnrollmentRepo) Delete(context.Context, int64, int64, string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.dropped++
	return nil
}

type stubStudentFinder struct {
	students map[string]models.Student
}

func (s stubStudentFinder) FindByEmail(_ context.Context, email string) (*models.Student, error) {
	st, ok := s.students[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &st, nil
}

type stubCourseFinder struct {
	courses map[string]models.CourseDetail
}

func (s stubCourseFinder) FindByCode(_ context.Context, code string) (*models.CourseDetail, error) {
	c, ok := s.courses[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func newEnrollmentServiceFixture(repo *mockEnrollmentRepo, cache *CacheService) *EnrollmentService {
	students := stubStudentFinder{students: map[string]models.Student{
		"ana@school.edu": {ID: 1, FirstName: "Ana", LastName: "Diaz", Email: "ana@school.edu"},
	}}
	courses := stubCourseFinder{courses: map[string]models.CourseDetail{
		"CS157A": {Course: models.Course{ID: 10, Code: "CS157A", Name: "Database Systems", Credits: 3}},
	}}
	return NewEnrollmentService(repo, students, courses, cache, nil, nil)
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceFixture(repo, nil)

	enrollment, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentEmail: "ana@school.edu", CourseCode: " cs157a ", Term: "Fall 2025", Grade: "b+"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), enrollment.CourseID)
	require.NotNil(t, enrollment.Grade)
	assert.Equal(t, "B+", *enrollment.Grade)
	assert.Same(t, enrollment, repo.created)
}

func TestEnrollmentServiceEnrollValidation(t *testing.T) {
	svc := newEnrollmentServiceFixture(&mockEnrollmentRepo{}, nil)

	_, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentEmail: "ana@school.edu", CourseCode: "CS157A", Term: "Fall25"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Enroll(context.Background(), dto.EnrollRequest{StudentEmail: "ana@school.edu", CourseCode: "CS157A", Term: "Fall 2025", Grade: "E"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceEnrollNotFound(t *testing.T) {
	svc := newEnrollmentServiceFixture(&mockEnrollmentRepo{}, nil)

	_, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentEmail: "ghost@school.edu", CourseCode: "CS157A", Term: "Fall 2025"})
	assert.Equal(t, "student not found", appErrors.FromError(err).Message)

	_, err = svc.Enroll(context.Background(), dto.EnrollRequest{StudentEmail: "ana@school.edu", CourseCode: "CS999", Term: "Fall 2025"})
	assert.Equal(t, "course not found", appErrors.FromError(err).Message)
}

func TestEnrollmentServiceEnrollStoreRejections(t *testing.T) {
	repo := &mockEnrollmentRepo{createErr: &pq.Error{Code: "23505", Message: "duplicate key"}}
	svc := newEnrollmentServiceFixture(repo, nil)
	req := dto.EnrollRequest{StudentEmail: "ana@school.edu", CourseCode: "CS157A", Term: "Fall 2025"}

	_, err := svc.Enroll(context.Background(), req)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
	assert.Equal(t, "student already enrolled in course for term", appErr.Message)

	repo.createErr = &pq.Error{Code: "P0001", Message: "Classroom capacity exceeded"}
	_, err = svc.Enroll(context.Background(), req)
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
	assert.Equal(t, "Classroom capacity exceeded", appErr.Message)
}

func TestEnrollmentServiceUpdateGrade(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceFixture(repo, nil)
	key := dto.EnrollmentKey{StudentEmail: "ana@school.edu", CourseCode: "cs157a", Term: "Fall 2025"}

	require.NoError(t, svc.UpdateGrade(context.Background(), dto.UpdateGradeRequest{EnrollmentKey: key, Grade: " a- "}))
	assert.Equal(t, []string{"A-"}, repo.graded)

	repo.gradeErr = sql.ErrNoRows
	err := svc.UpdateGrade(context.Background(), dto.UpdateGradeRequest{EnrollmentKey: key, Grade: "A"})
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestEnrollmentServiceDrop(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceFixture(repo, nil)
	key := dto.EnrollmentKey{StudentEmail: "ana@school.edu", CourseCode: "CS157A", Term: "Fall 2025"}

	require.NoError(t, svc.Drop(context.Background(), key))
	assert.Equal(t, 1, repo.dropped)

	repo.deleteErr = sql.ErrNoRows
	err := svc.Drop(context.Background(), key)
	assert.Equal(t, "enrollment not found", appErrors.FromError(err).Message)
}

func TestEnrollmentServiceListNormalizesFilter(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceFixture(repo, nil)

	_, err := svc.List(context.Background(), models.EnrollmentFilter{Term: " Spring 2026 ", CourseCode: "cs157a"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentFilter{Term: "Spring 2026", CourseCode: "CS157A"}, repo.listFilter)

	_, err = svc.List(context.Background(), models.EnrollmentFilter{Term: "2026"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceRosterIsCached(t *testing.T) {
	repo := &mockEnrollmentRepo{roster: []models.RosterEntry{{StudentID: 1, Email: "ana@school.edu"}}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := newEnrollmentServiceFixture(repo, cache)

	first, hit, err := svc.Roster(context.Background(), "cs157a", "Fall 2025")
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.Roster(context.Background(), "CS157A", "Fall 2025")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.rosterCalls)

	require.NoError(t, svc.Drop(context.Background(), dto.EnrollmentKey{StudentEmail: "ana@school.edu", CourseCode: "CS157A", Term: "Fall 2025"}))
	_, hit, err = svc.Roster(context.Background(), "CS157A", "Fall 2025")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEnrollmentServiceExportTranscript(t *testing.T) {
	grade := "A"
	repo := &mockEnrollmentRepo{transcript: []models.TranscriptRow{
		{Term: "Fall 2025", CourseCode: "CS157A", CourseName: "Database Systems", Credits: 3, Grade: &grade, InstructorFirstName: "Mike", InstructorLastName: "Wu"},
		{Term: "Spring 2026", CourseCode: "CS146", CourseName: "Data Structures", Credits: 3},
	}}
	svc := newEnrollmentServiceFixture(repo, nil)

	body, filename, err := svc.ExportTranscript(context.Background(), "ana@school.edu", export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "transcript_diaz_ana.csv", filename)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Term,Code,Course,Credits,Grade,Instructor", lines[0])
	assert.Equal(t, "Fall 2025,CS157A,Database Systems,3,A,Mike Wu", lines[1])
	assert.Contains(t, lines[2], "In progress")

	pdf, filename, err := svc.ExportTranscript(context.Background(), "ana@school.edu", export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "transcript_diaz_ana.pdf", filename)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
