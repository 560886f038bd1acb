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

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.StudentEnrollment, error)
	Roster(ctx context.Context, courseID int64, term string) ([]models.RosterEntry, error)
	Transcript(ctx context.Context, email string) ([]models.TranscriptRow, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateGrade(ctx context.Context, studentID, courseID int64, term, grade string) error
	Delete(ctx context.Context, studentID, courseID int64, term string) error
}

type studentFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

type courseFinder interface {
	FindByCode(ctx context.Context, code string) (*models.CourseDetail, error)
}

// EnrollmentService covers single-row enrollment reads and writes. Multi-course
// enrollment lives in BatchEnrollmentService.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentFinder
	courses   courseFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentFinder, courses courseFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, cache: cache, validator: validate, logger: logger}
}

// List returns every enrollment, optionally narrowed by term and course.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	filter.Term = strings.TrimSpace(filter.Term)
	filter.CourseCode = validation.NormalizeCourseCode(filter.CourseCode)
	if filter.Term != "" && !validation.IsTerm(filter.Term) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term must look like \"Fall 2025\"")
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return rows, nil
}

// StudentEnrollments lists the courses a student is or was enrolled in.
func (s *EnrollmentService) StudentEnrollments(ctx context.Context, email string) ([]models.StudentEnrollment, error) {
	student, err := s.student(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student enrollments")
	}
	return rows, nil
}

// Roster lists students enrolled in a course for a term. The bool reports a cache hit.
func (s *EnrollmentService) Roster(ctx context.Context, code, term string) ([]models.RosterEntry, bool, error) {
	code = validation.NormalizeCourseCode(code)
	term = strings.TrimSpace(term)
	if !validation.IsTerm(term) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "term must look like \"Fall 2025\"")
	}

	key := cacheKeyRoster(code, term)
	var cached []models.RosterEntry
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	course, err := s.course(ctx, code)
	if err != nil {
		return nil, false, err
	}
	roster, err := s.repo.Roster(ctx, course.ID, term)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	_ = s.cache.Set(ctx, key, roster, 0)
	return roster, false, nil
}

// Transcript returns the student's transcript rows. The bool reports a cache hit.
func (s *EnrollmentService) Transcript(ctx context.Context, email string) (*models.Student, []models.TranscriptRow, bool, error) {
	student, err := s.student(ctx, email)
	if err != nil {
		return nil, nil, false, err
	}

	key := cacheKeyTranscript(student.Email)
	var cached []models.TranscriptRow
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return student, cached, true, nil
	}

	rows, err := s.repo.Transcript(ctx, student.Email)
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}
	_ = s.cache.Set(ctx, key, rows, 0)
	return student, rows, false, nil
}

// Enroll records a single enrollment. Store rejections (duplicate key,
// capacity trigger) surface as conflicts carrying the store's message.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error) {
	req.CourseCode = validation.NormalizeCourseCode(req.CourseCode)
	req.Term = strings.TrimSpace(req.Term)
	req.Grade = validation.NormalizeGrade(req.Grade)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student, err := s.student(ctx, req.StudentEmail)
	if err != nil {
		return nil, err
	}
	course, err := s.course(ctx, req.CourseCode)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{StudentID: student.ID, CourseID: course.ID, Term: req.Term}
	if req.Grade != "" {
		grade := req.Grade
		enrollment.Grade = &grade
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		switch {
		case repository.IsUniqueViolation(err):
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in course for term")
		case repository.IsConstraintViolation(err):
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, repository.StoreMessage(err))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.logger.Info("student enrolled",
		zap.String("student_email", student.Email),
		zap.String("course_code", course.Code),
		zap.String("term", req.Term),
	)
	s.cache.InvalidateEnrollment(ctx, student.Email)
	return enrollment, nil
}

// UpdateGrade sets the letter grade of an existing enrollment.
func (s *EnrollmentService) UpdateGrade(ctx context.Context, req dto.UpdateGradeRequest) error {
	req.Grade = validation.NormalizeGrade(req.Grade)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	student, course, term, err := s.resolveKey(ctx, req.EnrollmentKey)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateGrade(ctx, student.ID, course.ID, term, req.Grade); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	s.cache.InvalidateEnrollment(ctx, student.Email)
	return nil
}

// Drop removes an enrollment.
func (s *EnrollmentService) Drop(ctx context.Context, key dto.EnrollmentKey) error {
	if err := s.validator.Struct(key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment key")
	}
	student, course, term, err := s.resolveKey(ctx, key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, student.ID, course.ID, term); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop enrollment")
	}
	s.logger.Info("enrollment dropped",
		zap.String("student_email", student.Email),
		zap.String("course_code", course.Code),
		zap.String("term", term),
	)
	s.cache.InvalidateEnrollment(ctx, student.Email)
	return nil
}

func (s *EnrollmentService) resolveKey(ctx context.Context, key dto.EnrollmentKey) (*models.Student, *models.CourseDetail, string, error) {
	student, err := s.student(ctx, key.StudentEmail)
	if err != nil {
		return nil, nil, "", err
	}
	course, err := s.course(ctx, validation.NormalizeCourseCode(key.CourseCode))
	if err != nil {
		return nil, nil, "", err
	}
	return student, course, strings.TrimSpace(key.Term), nil
}

func (s *EnrollmentService) student(ctx context.Context, email string) (*models.Student, error) {
	student, err := s.students.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *EnrollmentService) course(ctx context.Context, code string) (*models.CourseDetail, error) {
	course, err := s.courses.FindByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}
