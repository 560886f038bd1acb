package dto

// CreateStudentRequest registers a student. DOB uses YYYY-MM-DD.
type CreateStudentRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	DOB       string `json:"dob" validate:"omitempty,iso_date"`
}

// UpdateStudentEmailRequest changes a student's email.
type UpdateStudentEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}
