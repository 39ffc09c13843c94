package mark

import (
	"gradebook/internal/domain/mark"
)

type batchInput struct {
	Body batchRequest
}

type batchRequest struct {
	Marks []entry `json:"marks" minItems:"1" doc:"Оценки для сохранения"`
}

type entry struct {
	AssessmentID   string  `json:"assessment_id" minLength:"1" doc:"ID контрольной работы"`
	StudentID      string  `json:"student_id" minLength:"1" doc:"ID ученика"`
	MarksObtained  float64 `json:"marks_obtained" minimum:"0" maximum:"100" doc:"Набранные баллы"`
	TeacherComment string  `json:"teacher_comment,omitempty" required:"false" doc:"Комментарий учителя"`
}

type batchOutput struct {
	Body mark.BatchResponse
}

type assessmentInput struct {
	ID string `path:"id" example:"asm-2025-t1-math" doc:"ID контрольной работы"`
}

type studentInput struct {
	ID string `path:"id" example:"stu-042" doc:"ID ученика"`
}

type listOutput struct {
	Body mark.ListResponse
}

func (r batchRequest) entries() []mark.Entry {
	out := make([]mark.Entry, 0, len(r.Marks))
	for _, e := range r.Marks {
		out = append(out, mark.Entry{
			AssessmentID:   e.AssessmentID,
			StudentID:      e.StudentID,
			MarksObtained:  e.MarksObtained,
			TeacherComment: e.TeacherComment,
		})
	}
	return out
}
