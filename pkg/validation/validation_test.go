package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerm(t *testing.T) {
	cases := map[string]bool{
		"Fall 2025":   true,
		"Spring 1999": true,
		"Summer 2030": true,
		"Winter 2024": true,
		"fall 2025":   false,
		"Fall 25":     false,
		"Autumn 2025": false,
		" Fall 2025":  false,
		"Fall 2025 ":  false,
		"Fall  2025":  false,
		"":            false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsTerm(input), input)
	}
}

func TestIsLetterGrade(t *testing.T) {
	assert.True(t, IsLetterGrade("A-"))
	assert.True(t, IsLetterGrade("F"))
	assert.False(t, IsLetterGrade("A+"))
	assert.False(t, IsLetterGrade("E"))
	assert.False(t, IsLetterGrade("a"))
}

func TestNormalizeCourseCode(t *testing.T) {
	assert.Equal(t, "CS157A", NormalizeCourseCode("  cs157a "))
	assert.Equal(t, "", NormalizeCourseCode("   "))
}

type sample struct {
	Term  string `validate:"required,term"`
	Grade string `validate:"omitempty,letter_grade"`
	Code  string `validate:"required,course_code"`
	DOB   string `validate:"omitempty,iso_date"`
}

func TestValidatorTags(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(sample{Term: "Fall 2025", Grade: "B+", Code: "cs146", DOB: "2001-02-03"}))
	assert.Error(t, v.Struct(sample{Term: "Fall2025", Code: "CS146"}))
	assert.Error(t, v.Struct(sample{Term: "Fall 2025", Grade: "Z", Code: "CS146"}))
	assert.Error(t, v.Struct(sample{Term: "Fall 2025", Code: "146"}))
	assert.Error(t, v.Struct(sample{Term: "Fall 2025", Code: "CS146", DOB: "03/02/2001"}))
}
