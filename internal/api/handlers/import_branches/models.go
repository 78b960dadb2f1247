package import_branches

import (
	"time"

	importUC "github.com/m04kA/SMC-BranchDirectory/internal/usecase/import_branches"
)

// FailureResponse отклоненная запись
type FailureResponse struct {
	Index        int    `json:"index"`
	DepartmentID int64  `json:"departmentId"`
	Kind         string `json:"kind"`
	Message      string `json:"message"`
}

// DiagnosticResponse замечание к принятой записи
type DiagnosticResponse struct {
	Index        int    `json:"index"`
	DepartmentID int64  `json:"departmentId"`
	Kind         string `json:"kind"`
	Message      string `json:"message"`
}

// ImportResponse HTTP response model
type ImportResponse struct {
	Imported    int                  `json:"imported"`
	RunID       string               `json:"runId"`
	Source      string               `json:"source"`
	Total       int                  `json:"total"`
	Accepted    int                  `json:"accepted"`
	Rejected    int                  `json:"rejected"`
	Failures    []FailureResponse    `json:"failures"`
	Diagnostics []DiagnosticResponse `json:"diagnostics"`
	StartedAt   time.Time            `json:"startedAt"`
	FinishedAt  time.Time            `json:"finishedAt"`
}

// RejectedImportResponse ответ 422: отчет импорта, в котором не принята ни одна запись
type RejectedImportResponse struct {
	Error string `json:"error"`
	*ImportResponse
}

// FromUseCaseResponse конвертирует итог импорта в HTTP ответ
func FromUseCaseResponse(resp *importUC.Response) *ImportResponse {
	out := &ImportResponse{
		Imported:    resp.Stored,
		RunID:       resp.RunID,
		Source:      resp.Source,
		Total:       resp.Total,
		Accepted:    resp.Accepted,
		Rejected:    resp.Rejected,
		Failures:    make([]FailureResponse, 0, len(resp.Failures)),
		Diagnostics: make([]DiagnosticResponse, 0, len(resp.Diagnostics)),
		StartedAt:   resp.StartedAt,
		FinishedAt:  resp.FinishedAt,
	}

	for _, f := range resp.Failures {
		out.Failures = append(out.Failures, FailureResponse{
			Index:        f.Index,
			DepartmentID: f.DepartmentID,
			Kind:         string(f.Kind),
			Message:      f.Message,
		})
	}

	for _, d := range resp.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, DiagnosticResponse{
			Index:        d.Index,
			DepartmentID: d.DepartmentID,
			Kind:         string(d.Kind),
			Message:      d.Message,
		})
	}

	return out
}
