package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/1300Sarthak/CS157a/internal/dto"
	"github.com/1300Sarthak/CS157a/internal/models"
	"github.com/1300Sarthak/CS157a/internal/repository"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/validation"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.CourseDetail, error)
	FindByCode(ctx context.Context, code string) (*models.CourseDetail, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	UpdateCredits(ctx context.Context, code string, credits int) error
	Delete(ctx context.Context, code string) error
	ListInstructors(ctx context.Context) ([]models.Instructor, error)
	ListClassrooms(ctx context.Context) ([]models.Classroom, error)
	InstructorExists(ctx context.Context, id int64) (bool, error)
	ClassroomExists(ctx context.Context, id int64) (bool, error)
}

// CourseService manages the course catalog along with instructor and classroom listings.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the catalog. The bool reports a cache hit.
func (s *CourseService) List(ctx context.Context) ([]models.CourseDetail, bool, error) {
	var cached []models.CourseDetail
	if hit, _ := s.cache.Get(ctx, cacheKeyCatalog, &cached); hit {
		return cached, true, nil
	}
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	_ = s.cache.Set(ctx, cacheKeyCatalog, courses, 0)
	return courses, false, nil
}

// Get returns a course by code, matched case-insensitively.
func (s *CourseService) Get(ctx context.Context, code string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByCode(ctx, validation.NormalizeCourseCode(code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// ListByInstructor returns courses taught by an instructor.
func (s *CourseService) ListByInstructor(ctx context.Context, instructorID int64) ([]models.CourseDetail, error) {
	exists, err := s.repo.InstructorExists(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	courses, err := s.repo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor courses")
	}
	return courses, nil
}

// Create adds a course. The referenced instructor and classroom must exist.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = validation.NormalizeCourseCode(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	ok, err := s.repo.InstructorExists(ctx, req.InstructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate instructor")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnprocessable, "instructor does not exist")
	}
	ok, err = s.repo.ClassroomExists(ctx, req.ClassroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate classroom")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnprocessable, "classroom does not exist")
	}

	course := &models.Course{
		Name:         req.Name,
		Code:         req.Code,
		Credits:      req.Credits,
		InstructorID: req.InstructorID,
		ClassroomID:  req.ClassroomID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("course_code", course.Code))
	_ = s.cache.InvalidateKeys(ctx, cacheKeyCatalog)
	return course, nil
}

// UpdateCredits changes a course's credit value.
func (s *CourseService) UpdateCredits(ctx context.Context, code string, req dto.UpdateCourseCreditsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "credits must be between 1 and 6")
	}
	if err := s.repo.UpdateCredits(ctx, validation.NormalizeCourseCode(code), req.Credits); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update credits")
	}
	_ = s.cache.InvalidateKeys(ctx, cacheKeyCatalog)
	_ = s.cache.Invalidate(ctx, "transcript:*")
	return nil
}

// Delete removes a course. A course still referenced elsewhere is a conflict.
func (s *CourseService) Delete(ctx context.Context, code string) error {
	code = validation.NormalizeCourseCode(code)
	if err := s.repo.Delete(ctx, code); err != nil {
		switch {
		case err == sql.ErrNoRows:
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		case repository.IsForeignKeyViolation(err):
			return appErrors.Clone(appErrors.ErrConflict, "course is still referenced")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_code", code))
	_ = s.cache.InvalidateKeys(ctx, cacheKeyCatalog)
	_ = s.cache.Invalidate(ctx, "roster:*")
	_ = s.cache.Invalidate(ctx, "transcript:*")
	return nil
}

// Instructors lists every instructor.
func (s *CourseService) Instructors(ctx context.Context) ([]models.Instructor, error) {
	instructors, err := s.repo.ListInstructors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, nil
}

// Classrooms lists every classroom.
func (s *CourseService) Classrooms(ctx context.Context) ([]models.Classroom, error) {
	classrooms, err := s.repo.ListClassrooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	return classrooms, nil
}
