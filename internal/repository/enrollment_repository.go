package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/1300Sarthak/CS157a/internal/models"
)

// EnrollmentRepository handles single-row enrollment reads and writes. Batch
// enrollment goes through Session instead.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments joined with student and course, optionally
// narrowed by term and course code.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	base := `SELECT s.first_name, s.last_name, s.email, c.course_code, c.course_name, e.semester, e.grade
FROM enrollment e
JOIN student s ON s.student_id = e.student_id
JOIN course c ON c.course_id = e.course_id`
	var conditions []string
	var args []interface{}

	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("e.semester = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.CourseCode != "" {
		conditions = append(conditions, fmt.Sprintf("c.course_code = $%d", len(args)+1))
		args = append(args, filter.CourseCode)
	}

	query := base
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.semester, c.course_code, s.last_name, s.first_name"

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns a student's enrollments ordered by term then code.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentEnrollment, error) {
	const query = `SELECT e.semester, c.course_code, c.course_name, e.grade
FROM enrollment e
JOIN course c ON c.course_id = e.course_id
WHERE e.student_id = $1
ORDER BY e.semester, c.course_code`
	var rows []models.StudentEnrollment
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return rows, nil
}

// Roster returns students enrolled in a course for a term.
func (r *EnrollmentRepository) Roster(ctx context.Context, courseID int64, term string) ([]models.RosterEntry, error) {
	const query = `SELECT s.student_id, s.first_name, s.last_name, s.email, e.grade
FROM enrollment e
JOIN student s ON s.student_id = e.student_id
WHERE e.course_id = $1 AND e.semester = $2
ORDER BY s.last_name, s.first_name`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, courseID, term); err != nil {
		return nil, fmt.Errorf("course roster: %w", err)
	}
	return roster, nil
}

// Transcript reads the student_transcript_view for one student.
func (r *EnrollmentRepository) Transcript(ctx context.Context, email string) ([]models.TranscriptRow, error) {
	const query = `SELECT semester, course_code, course_name, credits, grade, instructor_first_name, instructor_last_name
FROM student_transcript_view
WHERE email = $1
ORDER BY semester, course_code`
	var rows []models.TranscriptRow
	if err := r.db.SelectContext(ctx, &rows, query, email); err != nil {
		return nil, fmt.Errorf("student transcript: %w", err)
	}
	return rows, nil
}

// Create inserts a single enrollment in auto-commit mode.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollment (student_id, course_id, semester, grade) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, enrollment.StudentID, enrollment.CourseID, enrollment.Term, enrollment.Grade); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateGrade sets the grade for an enrollment key. sql.ErrNoRows when no row matched.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, studentID, courseID int64, term, grade string) error {
	const query = `UPDATE enrollment SET grade = $4 WHERE student_id = $1 AND course_id = $2 AND semester = $3`
	res, err := r.db.ExecContext(ctx, query, studentID, courseID, term, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return requireAffected(res)
}

// Delete drops an enrollment. sql.ErrNoRows when no row matched.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, courseID int64, term string) error {
	const query = `DELETE FROM enrollment WHERE student_id = $1 AND course_id = $2 AND semester = $3`
	res, err := r.db.ExecContext(ctx, query, studentID, courseID, term)
	if err != nil {
		return fmt.Errorf("drop enrollment: %w", err)
	}
	return requireAffected(res)
}
