package list_bookings

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/service/bookings/models"
)

// ToServiceRequest формирует фильтр из query параметров:
// from, to (YYYY-MM-DD) и status (через запятую), все опциональные
func ToServiceRequest(q url.Values) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	if s := q.Get("from"); s != "" {
		from, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		req.From = &from
	}

	if s := q.Get("to"); s != "" {
		to, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		req.To = &to
	}

	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, fmt.Errorf("to %s is before from %s", q.Get("to"), q.Get("from"))
	}

	if s := q.Get("status"); s != "" {
		for _, status := range strings.Split(s, ",") {
			if status = strings.TrimSpace(status); status != "" {
				req.Statuses = append(req.Statuses, status)
			}
		}
	}

	return req, nil
}
