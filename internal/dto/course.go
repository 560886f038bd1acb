package dto

// CreateCourseRequest registers a course.
type CreateCourseRequest struct {
	Name         string `json:"name" validate:"required"`
	Code         string `json:"code" validate:"required,course_code"`
	Credits      int    `json:"credits" validate:"required,min=1,max=6"`
	InstructorID int64  `json:"instructor_id" validate:"required"`
	ClassroomID  int64  `json:"classroom_id" validate:"required"`
}

// UpdateCourseCreditsRequest changes a course's credits.
type UpdateCourseCreditsRequest struct {
	Credits int `json:"credits" validate:"required,min=1,max=6"`
}
