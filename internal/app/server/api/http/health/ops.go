package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID:   "health-check",
		Method:        http.MethodGet,
		Path:          "/api/v1/health",
		Summary:       "Server and database liveness",
		Description:   "Clients probe this endpoint to decide whether buffered marks can be sent.",
		Tags:          []string{"health"},
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusServiceUnavailable},
		Middlewares:   h.middleware,
	}
}
