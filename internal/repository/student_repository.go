package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/1300Sarthak/CS157a/internal/models"
)

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student ordered by last then first name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT student_id, first_name, last_name, email, dob FROM student ORDER BY last_name, first_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByEmail returns a student by exact email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	const query = `SELECT student_id, first_name, last_name, email, dob FROM student WHERE email = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// Create inserts a student and fills in the generated id. The driver error is
// returned wrapped so unique violations remain detectable.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO student (first_name, last_name, email, dob) VALUES ($1, $2, $3, $4) RETURNING student_id`
	if err := r.db.QueryRowxContext(ctx, query, student.FirstName, student.LastName, student.Email, student.DOB).Scan(&student.ID); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateEmail changes a student's email. sql.ErrNoRows when no row matched.
func (r *StudentRepository) UpdateEmail(ctx context.Context, currentEmail, newEmail string) error {
	const query = `UPDATE student SET email = $2 WHERE email = $1`
	res, err := r.db.ExecContext(ctx, query, currentEmail, newEmail)
	if err != nil {
		return fmt.Errorf("update student email: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a student. Enrollments cascade.
func (r *StudentRepository) Delete(ctx context.Context, email string) error {
	const query = `DELETE FROM student WHERE email = $1`
	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
