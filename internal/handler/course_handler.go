package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/1300Sarthak/CS157a/internal/dto"
	"github.com/1300Sarthak/CS157a/internal/middleware"
	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/response"
	"github.com/1300Sarthak/CS157a/pkg/validation"
)

type courseService interface {
	List(ctx context.Context) ([]models.CourseDetail, bool, error)
	Get(ctx context.Context, code string) (*models.CourseDetail, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.CourseDetail, error)
	Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error)
	UpdateCredits(ctx context.Context, code string, req dto.UpdateCourseCreditsRequest) error
	Delete(ctx context.Context, code string) error
	Instructors(ctx context.Context) ([]models.Instructor, error)
	Classrooms(ctx context.Context) ([]models.Classroom, error)
}

type rosterReader interface {
	Roster(ctx context.Context, code, term string) ([]models.RosterEntry, bool, error)
}

// CourseHandler exposes the course catalog, instructors and classrooms.
type CourseHandler struct {
	courses courseService
	roster  rosterReader
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService, roster rosterReader) *CourseHandler {
	return &CourseHandler{courses: courses, roster: roster}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, hit, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, courses, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Roster godoc
// @Summary Course roster for a term
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Param term query string true "Term, e.g. Fall 2025"
// @Success 200 {object} response.Envelope
// @Router /courses/{code}/roster [get]
func (h *CourseHandler) Roster(c *gin.Context) {
	term := c.Query("term")
	if !validation.IsTerm(term) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term must look like \"Fall 2025\""))
		return
	}
	entries, hit, err := h.roster.Roster(c.Request.Context(), c.Param("code"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, entries, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCredits godoc
// @Summary Change course credits
// @Tags Courses
// @Accept json
// @Param code path string true "Course code"
// @Param payload body dto.UpdateCourseCreditsRequest true "Credits"
// @Success 204
// @Router /courses/{code}/credits [put]
func (h *CourseHandler) UpdateCredits(c *gin.Context) {
	var req dto.UpdateCourseCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.courses.UpdateCredits(c.Request.Context(), c.Param("code"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Param code path string true "Course code"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /courses/{code} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Instructors godoc
// @Summary List instructors
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *CourseHandler) Instructors(c *gin.Context) {
	instructors, err := h.courses.Instructors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, nil)
}

// InstructorCourses godoc
// @Summary Courses taught by an instructor
// @Tags Instructors
// @Produce json
// @Param id path int true "Instructor id"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/courses [get]
func (h *CourseHandler) InstructorCourses(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "instructor id must be a positive integer"))
		return
	}
	courses, err := h.courses.ListByInstructor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Classrooms godoc
// @Summary List classrooms
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *CourseHandler) Classrooms(c *gin.Context) {
	classrooms, err := h.courses.Classrooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}
