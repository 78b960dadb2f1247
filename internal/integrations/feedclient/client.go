package feedclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент источника фида отделений
type Client struct {
	url        string
	token      string
	maxBytes   int64
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента фида
// token необязателен; если задан, передается в заголовке Authorization
func NewClient(url, token string, timeout time.Duration, maxBytes int64, log Logger) *Client {
	return &Client{
		url:      url,
		token:    token,
		maxBytes: maxBytes,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchDepartments скачивает фид {"list": [...]} целиком
func (c *Client) FetchDepartments(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrInvalidResponse, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrFeedTooLarge, c.maxBytes)
	}

	c.log.Info("Fetched departments feed: %d bytes in %s", len(body), time.Since(started))
	return body, nil
}
