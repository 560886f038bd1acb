package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/1300Sarthak/CS157a/internal/models"
)

const courseDetailColumns = `c.course_id, c.course_name, c.course_code, c.credits, c.instructor_id, c.classroom_id,
        i.first_name AS instructor_first, i.last_name AS instructor_last, r.building, r.room_number`

const courseDetailJoins = `FROM course c
        JOIN instructor i ON i.instructor_id = c.instructor_id
        JOIN classroom r ON r.classroom_id = c.classroom_id`

// CourseRepository handles persistence for courses, instructors and classrooms.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns the course catalog with instructor and classroom names.
func (r *CourseRepository) List(ctx context.Context) ([]models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY c.course_code", courseDetailColumns, courseDetailJoins)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByCode returns a course by its stored upper-case code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.course_code = $1", courseDetailColumns, courseDetailJoins)
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by code: %w", err)
	}
	return &course, nil
}

// ListByInstructor returns courses taught by an instructor.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.instructor_id = $1 ORDER BY c.course_code", courseDetailColumns, courseDetailJoins)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, instructorID); err != nil {
		return nil, fmt.Errorf("list courses by instructor: %w", err)
	}
	return courses, nil
}

// Create inserts a course and fills in the generated id.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO course (course_name, course_code, credits, instructor_id, classroom_id) VALUES ($1, $2, $3, $4, $5) RETURNING course_id`
	if err := r.db.QueryRowxContext(ctx, query, course.Name, course.Code, course.Credits, course.InstructorID, course.ClassroomID).Scan(&course.ID); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// UpdateCredits changes a course's credit value. sql.ErrNoRows when no row matched.
func (r *CourseRepository) UpdateCredits(ctx context.Context, code string, credits int) error {
	const query = `UPDATE course SET credits = $2 WHERE course_code = $1`
	res, err := r.db.ExecContext(ctx, query, code, credits)
	if err != nil {
		return fmt.Errorf("update course credits: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a course. Foreign key violations are returned wrapped.
func (r *CourseRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM course WHERE course_code = $1`
	res, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireAffected(res)
}

// ListInstructors returns every instructor.
func (r *CourseRepository) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	const query = `SELECT instructor_id, first_name, last_name, email, department FROM instructor ORDER BY last_name, first_name`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// ListClassrooms returns every classroom.
func (r *CourseRepository) ListClassrooms(ctx context.Context) ([]models.Classroom, error) {
	const query = `SELECT classroom_id, building, room_number, capacity FROM classroom ORDER BY building, room_number`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return classrooms, nil
}

// InstructorExists checks an instructor id.
func (r *CourseRepository) InstructorExists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM instructor WHERE instructor_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check instructor: %w", err)
	}
	return exists, nil
}

// ClassroomExists checks a classroom id.
func (r *CourseRepository) ClassroomExists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM classroom WHERE classroom_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check classroom: %w", err)
	}
	return exists, nil
}
