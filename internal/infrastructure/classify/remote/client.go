package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcarruthers/shotsort/internal/core/domain"
	"github.com/mcarruthers/shotsort/internal/infrastructure/resilience"
)

// Client implements ports.TextClassifier against the external classification
// endpoint: request {"text": ...}, response {"category": ...}. The endpoint is
// untrusted for vocabulary; validation against the live taxonomy happens in
// the processing use case, not here.
type Client struct {
	endpoint   string
	httpClient *http.Client
	executor   *resilience.Executor
	limiter    *rate.Limiter
}

// New builds a client. maxCallsPerSecond bounds spend on the paid endpoint;
// zero disables pacing.
func New(endpoint string, timeout time.Duration, maxCallsPerSecond float64, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	var limiter *rate.Limiter
	if maxCallsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxCallsPerSecond), 1)
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
		limiter:    limiter,
	}
}

// Classify sends cleaned text and returns the endpoint's category name.
// Every failure mode — network, timeout, status, malformed body, empty
// category, open breaker — comes back as domain.ErrClassifyUnavailable so the
// caller can fall through to the keyword classifier.
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", domain.WrapError(domain.ErrClassifyUnavailable, "rate wait", err)
		}
	}

	var category string
	call := func(callCtx context.Context) error {
		got, err := c.classifyOnce(callCtx, text)
		if err != nil {
			return err
		}
		category = got
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "classify.remote", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrClassifyUnavailable, "remote classify", err)
	}
	return category, nil
}

func (c *Client) classifyOnce(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode classify response: %w", err)
	}
	category := strings.TrimSpace(parsed.Category)
	if category == "" {
		return "", fmt.Errorf("classify response has no category")
	}
	return category, nil
}
