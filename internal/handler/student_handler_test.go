package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1300Sarthak/CS157a/internal/dto"
	"github.com/1300Sarthak/CS157a/internal/middleware"
	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/export"
)

type fakeStudentSrv struct {
	created dto.CreateStudentRequest
	err     error
}

func (f *fakeStudentSrv) List(context.Context) ([]models.Student, error) {
	return []models.Student{{ID: 1, Email: "ana@school.edu"}}, f.err
}

func (f *fakeStudentSrv) Get(_ context.Context, email string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: 1, Email: email}, nil
}

func (f *fakeStudentSrv) Create(_ context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: 2, Email: req.Email}, nil
}

func (f *fakeStudentSrv) UpdateEmail(_ context.Context, _ string, req dto.UpdateStudentEmailRequest) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: 1, Email: req.Email}, nil
}

func (f *fakeStudentSrv) Delete(context.Context, string) error {
	return f.err
}

type fakeStudentRecords struct {
	hit    bool
	format export.Format
}

func (f *fakeStudentRecords) StudentEnrollments(context.Context, string) ([]models.StudentEnrollment, error) {
	return []models.StudentEnrollment{{Term: "Fall 2025", CourseCode: "CS157A"}}, nil
}

func (f *fakeStudentRecords) Transcript(_ context.Context, email string) (*models.Student, []models.TranscriptRow, bool, error) {
	return &models.Student{Email: email}, []models.TranscriptRow{{Term: "Fall 2025", CourseCode: "CS157A", Credits: 3}}, f.hit, nil
}

func (f *fakeStudentRecords) ExportTranscript(_ context.Context, _ string, format export.Format) ([]byte, string, error) {
	f.format = format
	return []byte("Term,Code\n"), "transcript_diaz_ana." + string(format), nil
}

func withParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

func TestStudentHandlerCreate(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, &fakeStudentRecords{})

	rec := performJSON(h.Create, http.MethodPost, "/students", dto.CreateStudentRequest{FirstName: "Ben", LastName: "Ng", Email: "ben@school.edu"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ben@school.edu", srv.created.Email)

	srv.err = appErrors.Clone(appErrors.ErrConflict, "email already exists")
	rec = performJSON(h.Create, http.MethodPost, "/students", dto.CreateStudentRequest{FirstName: "Ben", LastName: "Ng", Email: "ben@school.edu"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStudentHandler(&fakeStudentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")}, &fakeStudentRecords{})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/ghost@school.edu", nil)
	withParam(c, "email", "ghost@school.edu")

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentHandlerTranscriptJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStudentHandler(&fakeStudentSrv{}, &fakeStudentRecords{hit: true})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/ana@school.edu/transcript", nil)
	withParam(c, "email", "ana@school.edu")

	h.Transcript(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Len(t, env.Data["courses"], 1)
	assert.Equal(t, true, middleware.ExtractMeta(c)["cache_hit"])
}

func TestStudentHandlerTranscriptExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	records := &fakeStudentRecords{}
	h := NewStudentHandler(&fakeStudentSrv{}, records)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/ana@school.edu/transcript?format=csv", nil)
	withParam(c, "email", "ana@school.edu")

	h.Transcript(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatCSV, records.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "transcript_diaz_ana.csv")
}

func TestStudentHandlerTranscriptRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStudentHandler(&fakeStudentSrv{}, &fakeStudentRecords{})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/ana@school.edu/transcript?format=xls", nil)
	withParam(c, "email", "ana@school.edu")

	h.Transcript(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStudentHandler(&fakeStudentSrv{}, &fakeStudentRecords{})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/students/ana@school.edu", nil)
	withParam(c, "email", "ana@school.edu")

	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
