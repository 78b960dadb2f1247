package list_cities

import (
	"context"

	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches/models"
)

type BranchService interface {
	ListCities(ctx context.Context) (*models.CitiesResponse, error)
}

type Logger interface {
	Error(format string, v ...interface{})
}
