package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/pkg/retry"
)

// Client executes chat requests against one provider variant.
type Client struct {
	http       *http.Client
	spec       ProviderSpec
	credential string
	model      string
	retrier    *retry.Retrier
}

var _ core.ChatClient = (*Client)(nil)

func NewClient(spec ProviderSpec, credential, model string) *Client {
	if model == "" {
		model = spec.DefaultModel
	}

	cfg := retry.NewDefaultConfig()
	cfg.MaxRetries = 2

	return &Client{
		// The request deadline comes from the caller's context; this
		// timeout only caps a wedged transport.
		http:       &http.Client{Timeout: 120 * time.Second},
		spec:       spec,
		credential: credential,
		model:      model,
		retrier:    retry.NewRetrier(cfg),
	}
}

func (c *Client) Chat(ctx context.Context, req core.ChatRequest) (string, error) {
	body := c.spec.BuildBody(c.model, req)
	headers := c.spec.Headers(c.credential)
	path := c.spec.Path(c.model)

	var text string
	err := c.retrier.Do(ctx, func() error {
		resp, err := c.post(ctx, path, body, headers)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			// Transport-level failures are worth another try.
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			rerr := &core.RequestError{StatusCode: resp.StatusCode, Message: extractErrorMessage(data)}
			if retryableStatus(resp.StatusCode) {
				return rerr
			}
			return retry.Permanent(rerr)
		}

		text, err = c.spec.ParseResponse(data)
		if err != nil {
			return retry.Permanent(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// post sends one JSON request. Content-Type goes on first so a variant's
// headers could override it.
func (c *Client) post(ctx context.Context, path string, body any, headers map[string]string) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.spec.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return resp, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
