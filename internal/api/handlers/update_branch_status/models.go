package update_branch_status

import (
	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	IsTemporaryClosed *bool `json:"isTemporaryClosed"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest() *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{IsTemporaryClosed: r.IsTemporaryClosed}
}
