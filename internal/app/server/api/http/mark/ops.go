package mark

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) batchOp() huma.Operation {
	return huma.Operation{
		OperationID:   "marks-batch",
		Method:        http.MethodPost,
		Path:          "/api/v1/marks/batch",
		Summary:       "Сохранить пачку оценок",
		Description:   "Идемпотентно сохраняет оценки по паре (assessment_id, student_id). Одна некорректная оценка отклоняет всю пачку.",
		Tags:          []string{"marks"},
		DefaultStatus: http.StatusOK,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) listByAssessmentOp() huma.Operation {
	return huma.Operation{
		OperationID: "marks-list-by-assessment",
		Method:      http.MethodGet,
		Path:        "/api/v1/assessments/{id}/marks",
		Summary:     "Оценки по контрольной работе",
		Tags:        []string{"marks"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listByStudentOp() huma.Operation {
	return huma.Operation{
		OperationID: "marks-list-by-student",
		Method:      http.MethodGet,
		Path:        "/api/v1/students/{id}/marks",
		Summary:     "Оценки ученика",
		Tags:        []string{"marks"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
