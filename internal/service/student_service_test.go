package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1300Sarthak/CS157a/internal/dto"
	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
)

type mockStudentRepo struct {
	students  map[string]models.Student
	nextID    int64
	createErr error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: map[string]models.Student{
		"ana@school.edu": {ID: 1, FirstName: "Ana", LastName: "Diaz", Email: "ana@school.edu"},
	}, nextID: 2}
}

func (m *mockStudentRepo) List(context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStudentRepo) FindByEmail(_ context.Context, email string) (*models.Student, error) {
	s, ok := m.students[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *mockStudentRepo) Create(_ context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.students[student.Email]; ok {
		return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"student_email_key\""}
	}
	student.ID = m.nextID
	m.nextID++
	m.students[student.Email] = *student
	return nil
}

func (m *mockStudentRepo) UpdateEmail(_ context.Context, current, next string) error {
	s, ok := m.students[current]
	if !ok {
		return sql.ErrNoRows
	}
	if _, taken := m.students[next]; taken {
		return &pq.Error{Code: "23505", Message: "duplicate key"}
	}
	delete(m.students, current)
	s.Email = next
	m.students[next] = s
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, email string) error {
	if _, ok := m.students[email]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, email)
	return nil
}

func TestStudentServiceCreate(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil, nil)

	student, err := svc.Create(context.Background(), dto.CreateStudentRequest{FirstName: " Ben ", LastName: "Ng", Email: "ben@school.edu", DOB: "2004-03-09"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), student.ID)
	assert.Equal(t, "Ben", student.FirstName)
	require.NotNil(t, student.DOB)
	assert.Equal(t, 2004, student.DOB.Year())
}

func TestStudentServiceCreateRejectsBadInput(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{FirstName: "Ben", LastName: "Ng", Email: "not-an-email"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), dto.CreateStudentRequest{FirstName: "Ben", LastName: "Ng", Email: "ben@school.edu", DOB: "2004-13-40"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateDuplicateEmail(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{FirstName: "Ana", LastName: "Diaz", Email: "ana@school.edu"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
	assert.Equal(t, "email already exists", appErr.Message)
}

func TestStudentServiceUpdateEmail(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["ben@school.edu"] = models.Student{ID: 2, Email: "ben@school.edu"}
	svc := NewStudentService(repo, nil, nil, nil)

	student, err := svc.UpdateEmail(context.Background(), "ana@school.edu", dto.UpdateStudentEmailRequest{Email: "ana.diaz@school.edu"})
	require.NoError(t, err)
	assert.Equal(t, "ana.diaz@school.edu", student.Email)

	_, err = svc.UpdateEmail(context.Background(), "ghost@school.edu", dto.UpdateStudentEmailRequest{Email: "x@school.edu"})
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)

	_, err = svc.UpdateEmail(context.Background(), "ana.diaz@school.edu", dto.UpdateStudentEmailRequest{Email: "ben@school.edu"})
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestStudentServiceDelete(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "ana@school.edu"))
	err := svc.Delete(context.Background(), "ana@school.edu")
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)

	_, err = svc.Get(context.Background(), "ana@school.edu")
	assert.Equal(t, "student not found", appErrors.FromError(err).Message)
}
