package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// OperationID идентификатор операции проверки здоровья
const OperationID = "health-check"

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: OperationID,
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Service health",
		Description: "Pings the document store and reports the server clock. Responds 503 while the database is unreachable.",
		Tags:        []string{"health"},
		Errors:      []int{http.StatusServiceUnavailable},
		Middlewares: h.middleware,
	}
}
