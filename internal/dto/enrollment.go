package dto

import "strings"

// BatchEnrollRequest is the payload of the batch enrollment endpoint. Courses
// may be sent either as a comma separated string or as a JSON array; when
// both are present the array wins. Validation happens inside the workflow so
// that rejections are reported as a batch report, not a bare 400.
type BatchEnrollRequest struct {
	StudentEmail string   `json:"student_email"`
	Term         string   `json:"term"`
	CourseCodes  string   `json:"course_codes"`
	Courses      []string `json:"courses"`
}

// Codes returns the raw course codes in input order, unnormalized.
func (r BatchEnrollRequest) Codes() []string {
	if len(r.Courses) > 0 {
		return r.Courses
	}
	return SplitCourseCodes(r.CourseCodes)
}

// SplitCourseCodes splits comma separated free text. Blank input yields nil.
func SplitCourseCodes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// EnrollRequest creates a single enrollment.
type EnrollRequest struct {
	StudentEmail string `json:"student_email" validate:"required"`
	CourseCode   string `json:"course_code" validate:"required"`
	Term         string `json:"term" validate:"required,term"`
	Grade        string `json:"grade" validate:"omitempty,letter_grade"`
}

// EnrollmentKey addresses one enrollment by natural keys.
type EnrollmentKey struct {
	StudentEmail string `json:"student_email" validate:"required"`
	CourseCode   string `json:"course_code" validate:"required"`
	Term         string `json:"term" validate:"required"`
}

// UpdateGradeRequest sets the grade of an enrollment.
type UpdateGradeRequest struct {
	EnrollmentKey
	Grade string `json:"grade" validate:"required,letter_grade"`
}
