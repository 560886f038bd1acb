package models

// Enrollment links a student to a course for a term. (student, course, term)
// is unique in the store. Grade is absent until graded.
type Enrollment struct {
	StudentID int64   `db:"student_id" json:"student_id"`
	CourseID  int64   `db:"course_id" json:"course_id"`
	Term      string  `db:"semester" json:"term"`
	Grade     *string `db:"grade" json:"grade,omitempty"`
}

// EnrollmentDetail is an enrollment joined with student and course names.
type EnrollmentDetail struct {
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	Email      string  `db:"email" json:"email"`
	CourseCode string  `db:"course_code" json:"course_code"`
	CourseName string  `db:"course_name" json:"course_name"`
	Term       string  `db:"semester" json:"term"`
	Grade      *string `db:"grade" json:"grade,omitempty"`
}

// StudentEnrollment is one line of a student's enrollment list.
type StudentEnrollment struct {
	Term       string  `db:"semester" json:"term"`
	CourseCode string  `db:"course_code" json:"course_code"`
	CourseName string  `db:"course_name" json:"course_name"`
	Grade      *string `db:"grade" json:"grade,omitempty"`
}

// RosterEntry is a student enrolled in a course for a term.
type RosterEntry struct {
	StudentID int64   `db:"student_id" json:"student_id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     string  `db:"email" json:"email"`
	Grade     *string `db:"grade" json:"grade,omitempty"`
}

// TranscriptRow is a graded or in-progress course on a student's transcript.
type TranscriptRow struct {
	Term                string  `db:"semester" json:"term"`
	CourseCode          string  `db:"course_code" json:"course_code"`
	CourseName          string  `db:"course_name" json:"course_name"`
	Credits             int     `db:"credits" json:"credits"`
	Grade               *string `db:"grade" json:"grade,omitempty"`
	InstructorFirstName string  `db:"instructor_first_name" json:"instructor_first_name"`
	InstructorLastName  string  `db:"instructor_last_name" json:"instructor_last_name"`
}

// EnrollmentFilter narrows enrollment listings. Empty fields are ignored.
type EnrollmentFilter struct {
	Term       string
	CourseCode string
}
