package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/1300Sarthak/CS157a/internal/dto"
	"github.com/1300Sarthak/CS157a/internal/middleware"
	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/export"
	"github.com/1300Sarthak/CS157a/pkg/response"
)

type studentService interface {
	List(ctx context.Context) ([]models.Student, error)
	Get(ctx context.Context, email string) (*models.Student, error)
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
	UpdateEmail(ctx context.Context, currentEmail string, req dto.UpdateStudentEmailRequest) (*models.Student, error)
	Delete(ctx context.Context, email string) error
}

type studentRecords interface {
	StudentEnrollments(ctx context.Context, email string) ([]models.StudentEnrollment, error)
	Transcript(ctx context.Context, email string) (*models.Student, []models.TranscriptRow, bool, error)
	ExportTranscript(ctx context.Context, email string, format export.Format) ([]byte, string, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	records  studentRecords
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, records studentRecords) *StudentHandler {
	return &StudentHandler{students: students, records: records}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Get godoc
// @Summary Get student by email
// @Tags Students
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{email} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// UpdateEmail godoc
// @Summary Change student email
// @Tags Students
// @Accept json
// @Produce json
// @Param email path string true "Current email"
// @Param payload body dto.UpdateStudentEmailRequest true "New email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{email}/email [put]
func (h *StudentHandler) UpdateEmail(c *gin.Context) {
	var req dto.UpdateStudentEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.UpdateEmail(c.Request.Context(), c.Param("email"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param email path string true "Student email"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{email} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Enrollments godoc
// @Summary List a student's enrollments
// @Tags Students
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {object} response.Envelope
// @Router /students/{email}/enrollments [get]
func (h *StudentHandler) Enrollments(c *gin.Context) {
	rows, err := h.records.StudentEnrollments(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Transcript godoc
// @Summary Student transcript
// @Description Returns transcript rows, or a CSV/PDF download when format is set
// @Tags Students
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param email path string true "Student email"
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /students/{email}/transcript [get]
func (h *StudentHandler) Transcript(c *gin.Context) {
	email := c.Param("email")
	if raw := c.Query("format"); raw != "" {
		format, err := export.ParseFormat(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "format must be csv or pdf"))
			return
		}
		body, filename, err := h.records.ExportTranscript(c.Request.Context(), email, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, filename, format.ContentType(), body)
		return
	}

	student, rows, hit, err := h.records.Transcript(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, gin.H{"student": student, "courses": rows}, nil, middleware.ExtractMeta(c))
}
