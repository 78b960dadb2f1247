package import_branches

import (
	"context"

	importUC "github.com/m04kA/SMC-BranchDirectory/internal/usecase/import_branches"
)

type ImportUseCase interface {
	Execute(ctx context.Context, req *importUC.Request) (*importUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
