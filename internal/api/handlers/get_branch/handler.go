package get_branch

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchDirectory/internal/api/handlers"
	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches"
)

const (
	msgInvalidBranchID = "некорректный ID отделения"
	msgNotFound        = "отделение не найдено"
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

// Handle GET /api/v1/branches/{branchId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	branchID, err := strconv.ParseInt(mux.Vars(r)["branchId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /branches/{id} - Invalid branch ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	branch, err := h.service.GetByID(r.Context(), branchID)
	if err != nil {
		switch {
		case errors.Is(err, branches.ErrBranchNotFound):
			h.logger.Warn("GET /branches/{id} - Branch not found: branch_id=%d", branchID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /branches/{id} - Failed to get branch: branch_id=%d, error=%v", branchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, branch)
}
