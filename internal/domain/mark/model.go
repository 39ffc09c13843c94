package mark

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	MinMarks = 0
	MaxMarks = 100
)

// Entry is a single mark write as produced by a teacher's device.
type Entry struct {
	AssessmentID   string  `json:"assessment_id"`
	StudentID      string  `json:"student_id"`
	MarksObtained  float64 `json:"marks_obtained"`
	TeacherComment string  `json:"teacher_comment,omitempty"`
}

// Validate checks required fields and the marks range.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.AssessmentID) == "" {
		return fmt.Errorf("%w: assessment_id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.StudentID) == "" {
		return fmt.Errorf("%w: student_id is required", ErrInvalidEntry)
	}
	if math.IsNaN(e.MarksObtained) || e.MarksObtained < MinMarks || e.MarksObtained > MaxMarks {
		return fmt.Errorf("%w: marks_obtained must be between %d and %d, got %g",
			ErrInvalidEntry, MinMarks, MaxMarks, e.MarksObtained)
	}
	return nil
}

// Mark is a stored mark with its computed grade.
type Mark struct {
	ID             string    `json:"id"`
	AssessmentID   string    `json:"assessment_id"`
	StudentID      string    `json:"student_id"`
	MarksObtained  float64   `json:"marks_obtained"`
	TeacherComment string    `json:"teacher_comment,omitempty"`
	Grade          string    `json:"grade"`
	Remark         string    `json:"remark"`
	EnteredAt      time.Time `json:"entered_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WithGrade fills Grade and Remark from MarksObtained.
func (m Mark) WithGrade() Mark {
	m.Grade = Grade(m.MarksObtained)
	m.Remark = Remark(m.Grade)
	return m
}

// Grade maps a mark total to a letter band.
func Grade(total float64) string {
	switch {
	case total >= 80:
		return "A"
	case total >= 65:
		return "B"
	case total >= 50:
		return "C"
	case total >= 35:
		return "D"
	default:
		return "E"
	}
}

// Remark returns the report-card remark for a letter grade.
func Remark(grade string) string {
	switch grade {
	case "A":
		return "Excellent"
	case "B":
		return "Very Good"
	case "C":
		return "Good"
	case "D":
		return "Fair"
	case "E":
		return "Needs Improvement"
	default:
		return "-"
	}
}

// Summary aggregates one student's marks for a report card.
type Summary struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Grade   string  `json:"grade"`
	Remark  string  `json:"remark"`
	Comment string  `json:"comment"`
}

// Summarize returns nil for no marks. Total and Average are rounded to one
// decimal; the grade band is taken from the rounded average.
func Summarize(marks []Mark) *Summary {
	if len(marks) == 0 {
		return nil
	}

	var total float64
	for _, m := range marks {
		total += m.MarksObtained
	}
	average := round1(total / float64(len(marks)))
	grade := Grade(average)

	return &Summary{
		Count:   len(marks),
		Total:   round1(total),
		Average: average,
		Grade:   grade,
		Remark:  Remark(grade),
		Comment: comment(grade),
	}
}

func comment(grade string) string {
	switch grade {
	case "A":
		return "Excellent performance! Keep up the outstanding work."
	case "B":
		return "Very good performance. Continue working hard."
	case "C":
		return "Good effort. There is room for improvement."
	case "D":
		return "Fair performance. More effort is needed."
	default:
		return "Needs significant improvement. Extra support recommended."
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
