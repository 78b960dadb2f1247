package export_branches

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BranchDirectory/internal/api/handlers"
	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches"
)

const (
	msgInvalidParams = "некорректные параметры запроса"
	contentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
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

// Handle GET /api/v1/branches/export
// Query params те же, что у списка отделений
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceReq, err := ToServiceRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /branches/export - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	list, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, branches.ErrInvalidInput):
			h.logger.Warn("GET /branches/export - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /branches/export - Failed to list branches: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	f, err := buildWorkbook(list)
	if err != nil {
		h.logger.Error("GET /branches/export - Failed to build workbook: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}
	defer f.Close()

	fileName := "branches_" + time.Now().UTC().Format("20060102_150405") + ".xlsx"

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	w.WriteHeader(http.StatusOK)

	if err := f.Write(w); err != nil {
		h.logger.Error("GET /branches/export - Failed to write workbook: error=%v", err)
		return
	}

	h.logger.Info("GET /branches/export - Exported %d branches", list.Total)
}
