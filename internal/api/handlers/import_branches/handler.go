package import_branches

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/m04kA/SMC-BranchDirectory/internal/api/handlers"
	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	importUC "github.com/m04kA/SMC-BranchDirectory/internal/usecase/import_branches"
)

const (
	formFileField = "file"

	msgInvalidRequestBody = "некорректное тело запроса"
	msgFileTooLarge       = "файл слишком большой"
	msgInvalidPayload     = "файл не является корректным JSON фидом"
	msgEmptyImport        = "ни одна запись фида не прошла проверку"
)

var errEmptyUpload = errors.New("empty upload")

type Handler struct {
	useCase        ImportUseCase
	maxUploadBytes int64
	logger         Logger
}

func NewHandler(useCase ImportUseCase, maxUploadBytes int64, logger Logger) *Handler {
	return &Handler{
		useCase:        useCase,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Handle POST /api/v1/branches/import-json
// Принимает multipart с полем file или JSON в теле запроса
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	payload, err := h.readPayload(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn("POST /branches/import-json - Upload too large: limit=%d", h.maxUploadBytes)
			handlers.RespondError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		h.logger.Warn("POST /branches/import-json - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &importUC.Request{
		Payload: payload,
		Source:  domain.ImportSourceUpload,
	})
	if err != nil {
		switch {
		case errors.Is(err, importUC.ErrInvalidPayload):
			h.logger.Warn("POST /branches/import-json - Invalid payload: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPayload)

		case errors.Is(err, importUC.ErrEmptyImportResult):
			h.logger.Warn("POST /branches/import-json - Nothing to import: %v", err)
			if resp == nil {
				handlers.RespondUnprocessable(w, msgEmptyImport)
				return
			}
			handlers.RespondJSON(w, http.StatusUnprocessableEntity, &RejectedImportResponse{
				Error:          msgEmptyImport,
				ImportResponse: FromUseCaseResponse(resp),
			})

		default:
			h.logger.Error("POST /branches/import-json - Failed to import branches: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /branches/import-json - Import finished: run_id=%s, accepted=%d, rejected=%d",
		resp.RunID, resp.Accepted, resp.Rejected)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}

func (h *Handler) readPayload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var src io.Reader = r.Body
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile(formFileField)
		if err != nil {
			return nil, fmt.Errorf("read form file %q: %w", formFileField, err)
		}
		defer file.Close()
		src = file
	}

	payload, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if len(payload) == 0 {
		return nil, errEmptyUpload
	}

	return payload, nil
}
