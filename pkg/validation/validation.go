// Package validation holds the input rules shared by request payloads and the
// enrollment workflow, and registers them as validator/v10 tags.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	termPattern       = regexp.MustCompile(`^(Fall|Spring|Summer|Winter) \d{4}$`)
	courseCodePattern = regexp.MustCompile(`^[A-Z]+[0-9]+[A-Z]*$`)
	dateLayoutPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// LetterGrades lists the accepted grade values in display order.
var LetterGrades = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D", "F"}

// New returns a validator with the term, letter_grade, course_code and
// iso_date tags registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("term", func(fl validator.FieldLevel) bool {
		return IsTerm(fl.Field().String())
	})
	_ = v.RegisterValidation("letter_grade", func(fl validator.FieldLevel) bool {
		return IsLetterGrade(fl.Field().String())
	})
	_ = v.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return courseCodePattern.MatchString(NormalizeCourseCode(fl.Field().String()))
	})
	_ = v.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		return dateLayoutPattern.MatchString(fl.Field().String())
	})
	return v
}

// IsTerm reports whether s has the "<Season> <yyyy>" shape. No trimming is applied.
func IsTerm(s string) bool {
	return termPattern.MatchString(s)
}

// IsLetterGrade reports whether s is one of LetterGrades.
func IsLetterGrade(s string) bool {
	for _, g := range LetterGrades {
		if s == g {
			return true
		}
	}
	return false
}

// NormalizeCourseCode trims and upper-cases a course code.
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeGrade trims and upper-cases a grade; an empty result means "no grade".
func NormalizeGrade(grade string) string {
	return strings.ToUpper(strings.TrimSpace(grade))
}
