package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchEnrollRequestCodes(t *testing.T) {
	req := BatchEnrollRequest{CourseCodes: " cs157a, CS146 ,"}
	assert.Equal(t, []string{" cs157a", " CS146 ", ""}, req.Codes())

	req.Courses = []string{"MATH42"}
	assert.Equal(t, []string{"MATH42"}, req.Codes())

	assert.Nil(t, BatchEnrollRequest{CourseCodes: "   "}.Codes())
}
