package models

// Course is a row of the course table. Code is stored upper-cased and unique.
type Course struct {
	ID           int64  `db:"course_id" json:"id"`
	Name         string `db:"course_name" json:"name"`
	Code         string `db:"course_code" json:"code"`
	Credits      int    `db:"credits" json:"credits"`
	InstructorID int64  `db:"instructor_id" json:"instructor_id"`
	ClassroomID  int64  `db:"classroom_id" json:"classroom_id"`
}

// CourseDetail adds instructor and classroom display fields.
type CourseDetail struct {
	Course
	InstructorFirstName string `db:"instructor_first" json:"instructor_first_name"`
	InstructorLastName  string `db:"instructor_last" json:"instructor_last_name"`
	Building            string `db:"building" json:"building"`
	RoomNumber          string `db:"room_number" json:"room_number"`
}

// Instructor teaches courses.
type Instructor struct {
	ID         int64   `db:"instructor_id" json:"id"`
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	Email      string  `db:"email" json:"email"`
	Department *string `db:"department" json:"department,omitempty"`
}

// Classroom hosts courses.
type Classroom struct {
	ID         int64  `db:"classroom_id" json:"id"`
	Building   string `db:"building" json:"building"`
	RoomNumber string `db:"room_number" json:"room_number"`
	Capacity   int    `db:"capacity" json:"capacity"`
}
