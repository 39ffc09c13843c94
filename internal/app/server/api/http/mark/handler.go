package mark

import (
	"context"
	"errors"

	"gradebook/internal/domain/mark"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    mark.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service mark.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.batchOp(), h.batch)
	huma.Register(api, h.listByAssessmentOp(), h.listByAssessment)
	huma.Register(api, h.listByStudentOp(), h.listByStudent)
}

func (h *Handler) batch(ctx context.Context, input *batchInput) (*batchOutput, error) {
	resp, err := h.service.SubmitBatch(ctx, input.Body.entries())
	if err != nil {
		if errors.Is(err, mark.ErrInvalidEntry) || errors.Is(err, mark.ErrEmptyBatch) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		h.log.Error("marks batch failed", "error", err)
		return nil, huma.Error500InternalServerError("failed to store marks")
	}

	return &batchOutput{Body: resp}, nil
}

func (h *Handler) listByAssessment(ctx context.Context, input *assessmentInput) (*listOutput, error) {
	resp, err := h.service.ListByAssessment(ctx, input.ID)
	if err != nil {
		h.log.Error("list marks by assessment failed", "assessment_id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("failed to list marks")
	}

	return &listOutput{Body: resp}, nil
}

func (h *Handler) listByStudent(ctx context.Context, input *studentInput) (*listOutput, error) {
	resp, err := h.service.ListByStudent(ctx, input.ID)
	if err != nil {
		h.log.Error("list marks by student failed", "student_id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("failed to list marks")
	}

	return &listOutput{Body: resp}, nil
}
