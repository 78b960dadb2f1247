package list_branches

import (
	"context"

	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches/models"
)

type BranchService interface {
	List(ctx context.Context, req *models.ListBranchesRequest) (*models.BranchListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
