package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/export"
)

var transcriptHeaders = []string{"Term", "Code", "Course", "Credits", "Grade", "Instructor"}

// ExportTranscript renders a student's transcript and returns the file body
// together with a suggested filename.
func (s *EnrollmentService) ExportTranscript(ctx context.Context, email string, format export.Format) ([]byte, string, error) {
	student, rows, _, err := s.Transcript(ctx, email)
	if err != nil {
		return nil, "", err
	}
	body, err := export.For(format).Render(transcriptDataset(student, rows))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	return body, transcriptFilename(student, format), nil
}

func transcriptDataset(student *models.Student, rows []models.TranscriptRow) export.Dataset {
	data := export.Dataset{
		Title:   "Transcript: " + student.FullName(),
		Headers: transcriptHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	credits := 0
	for _, row := range rows {
		grade := "In progress"
		if row.Grade != nil {
			grade = *row.Grade
		}
		credits += row.Credits
		data.Rows = append(data.Rows, map[string]string{
			"Term":       row.Term,
			"Code":       row.CourseCode,
			"Course":     row.CourseName,
			"Credits":    strconv.Itoa(row.Credits),
			"Grade":      grade,
			"Instructor": strings.TrimSpace(row.InstructorFirstName + " " + row.InstructorLastName),
		})
	}
	data.Subtitle = fmt.Sprintf("%s | %d courses, %d credits", student.Email, len(rows), credits)
	return data
}

func transcriptFilename(student *models.Student, format export.Format) string {
	name := strings.ToLower(student.LastName + "_" + student.FirstName)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, name)
	return fmt.Sprintf("transcript_%s.%s", name, format)
}
