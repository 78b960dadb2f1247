package list_branches

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches/models"
)

// ToServiceRequest собирает запрос к сервису из query параметров
// includeClosed по умолчанию true: временно закрытые отделения показываются с пометкой
func ToServiceRequest(query url.Values) (*models.ListBranchesRequest, error) {
	req := &models.ListBranchesRequest{IncludeClosed: true}

	if t := query.Get("type"); t != "" {
		req.Type = &t
	}
	if city := query.Get("city"); city != "" {
		req.City = &city
	}
	if raw := query.Get("includeClosed"); raw != "" {
		includeClosed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid includeClosed %q: %w", raw, err)
		}
		req.IncludeClosed = includeClosed
	}

	return req, nil
}
