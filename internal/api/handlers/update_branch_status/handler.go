package update_branch_status

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchDirectory/internal/api/handlers"
	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches"
)

const (
	msgInvalidBranchID    = "некорректный ID отделения"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingFlag        = "не указано поле isTemporaryClosed"
	msgNotFound           = "отделение не найдено"
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

// Handle PATCH /api/v1/branches/{branchId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	branchID, err := strconv.ParseInt(mux.Vars(r)["branchId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /branches/{id} - Invalid branch ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	var req UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /branches/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.UpdateStatus(r.Context(), branchID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, branches.ErrBranchNotFound):
			h.logger.Warn("PATCH /branches/{id} - Branch not found: branch_id=%d", branchID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, branches.ErrInvalidInput):
			h.logger.Warn("PATCH /branches/{id} - Invalid input: branch_id=%d, error=%v", branchID, err)
			handlers.RespondBadRequest(w, msgMissingFlag)

		default:
			h.logger.Error("PATCH /branches/{id} - Failed to update branch: branch_id=%d, error=%v", branchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /branches/{id} - Branch status updated: branch_id=%d, closed=%t",
		branchID, *req.IsTemporaryClosed)
	handlers.RespondNoContent(w)
}
