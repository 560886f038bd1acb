package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/1300Sarthak/CS157a/internal/dto"
	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error)
	UpdateGrade(ctx context.Context, req dto.UpdateGradeRequest) error
	Drop(ctx context.Context, key dto.EnrollmentKey) error
}

type batchEnroller interface {
	EnrollBatch(ctx context.Context, studentEmail, term string, courseCodes []string) (*models.BatchReport, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	batches     batchEnroller
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, batches batchEnroller) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, batches: batches}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param term query string false "Filter by term"
// @Param course query string false "Filter by course code"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{Term: c.Query("term"), CourseCode: c.Query("course")}
	enrollments, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Create godoc
// @Summary Enroll a student in one course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// UpdateGrade godoc
// @Summary Set an enrollment grade
// @Tags Enrollments
// @Accept json
// @Param payload body dto.UpdateGradeRequest true "Grade payload"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /enrollments/grade [put]
func (h *EnrollmentHandler) UpdateGrade(c *gin.Context) {
	var req dto.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.UpdateGrade(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Drop godoc
// @Summary Drop an enrollment
// @Tags Enrollments
// @Accept json
// @Param payload body dto.EnrollmentKey true "Enrollment key"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /enrollments [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	var key dto.EnrollmentKey
	if err := c.ShouldBindJSON(&key); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.Drop(c.Request.Context(), key); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Batch godoc
// @Summary Enroll a student in several courses atomically
// @Description Either every course is enrolled and committed, or nothing is. The batch report is always returned.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.BatchEnrollRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /enrollments/batch [post]
func (h *EnrollmentHandler) Batch(c *gin.Context) {
	var req dto.BatchEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	report, err := h.batches.EnrollBatch(c.Request.Context(), req.StudentEmail, req.Term, req.Codes())
	if err != nil {
		response.Error(c, err, map[string]interface{}{"report": report})
		return
	}
	response.JSON(c, batchStatus(report), report, nil)
}

func batchStatus(report *models.BatchReport) int {
	switch {
	case report.Committed():
		return http.StatusCreated
	case report.Verdict == models.VerdictStudentNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}
