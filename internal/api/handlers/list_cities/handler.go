package list_cities

import (
	"net/http"

	"github.com/m04kA/SMC-BranchDirectory/internal/api/handlers"
)

type Handler struct {
	service BranchService
	logger  Logger
}

func NewHandler(service BranchService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/branches/cities
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListCities(r.Context())
	if err != nil {
		h.logger.Error("GET /branches/cities - Failed to list cities: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
