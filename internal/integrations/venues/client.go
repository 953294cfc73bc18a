package venues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент справочника площадок
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента справочника
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetVenue получает площадку по виду и ID
func (c *Client) GetVenue(ctx context.Context, kind domain.VenueKind, id int64) (*Venue, error) {
	url := fmt.Sprintf("%s/internal/venues/%s/%d", c.baseURL, kind, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrVenueNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var venue Venue
	if err := json.NewDecoder(resp.Body).Decode(&venue); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrInvalidResponse, err)
	}

	return &venue, nil
}

// GetVenueWithGracefulDegradation как GetVenue, но недоступность справочника
// возвращается как ErrServiceDegraded. ErrVenueNotFound пробрасывается как есть.
func (c *Client) GetVenueWithGracefulDegradation(ctx context.Context, kind domain.VenueKind, id int64) (*Venue, error) {
	venue, err := c.GetVenue(ctx, kind, id)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			c.log.Info("GetVenue: %s id=%d not found", kind, id)
			return nil, err
		}

		c.log.Error("Venue directory unavailable, applying graceful degradation for %s id=%d: %v", kind, id, err)
		return nil, fmt.Errorf("%w: %s id=%d, error=%w", ErrServiceDegraded, kind, id, err)
	}

	return venue, nil
}
