package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sandevgo/drambot/internal/core"
)

// Client consumes the review resources of a DramBot server. The token is
// attached as a bearer header when present; anonymous reads are allowed.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
	}
}

// ListReviews fetches the most recently updated reviews, newest first.
func (c *Client) ListReviews(ctx context.Context, limit int) ([]core.RemoteHighlight, error) {
	path := fmt.Sprintf("/api/reviews?limit=%d", limit)
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var dtos []reviewDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	highlights := make([]core.RemoteHighlight, 0, len(dtos))
	for _, d := range dtos {
		highlights = append(highlights, d.toHighlight())
	}
	return highlights, nil
}

// CreateReview publishes an annex record as a review and returns the
// server's view of it, id included.
func (c *Client) CreateReview(ctx context.Context, rec core.Record) (core.RemoteHighlight, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/reviews", fromRecord(rec))
	if err != nil {
		return core.RemoteHighlight{}, err
	}

	var dto reviewDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return core.RemoteHighlight{}, fmt.Errorf("decode review: %w", err)
	}
	return dto.toHighlight(), nil
}

// DeleteReview removes a previously published review by its server id.
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/reviews/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.RequestError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}
	return data, nil
}

// errorMessage pulls the boundary's {"error": "..."} shape out of a
// failure body, falling back to the raw text.
func errorMessage(data []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(data)
}
