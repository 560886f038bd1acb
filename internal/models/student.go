package models

import "time"

// Student is a row of the student table. Email is the natural key and is
// compared case-sensitively.
type Student struct {
	ID        int64      `db:"student_id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     string     `db:"email" json:"email"`
	DOB       *time.Time `db:"dob" json:"dob,omitempty"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
