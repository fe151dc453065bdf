package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/examdeck/examdeck/internal/errors"
	"github.com/examdeck/examdeck/internal/logger"
	"github.com/examdeck/examdeck/internal/snapshot"
)

const (
	// MaxAttempts is how many times a command request is tried before the
	// failure is surfaced.
	MaxAttempts = 3
	// requestTimeout bounds a single HTTP round-trip.
	requestTimeout = 10 * time.Second
)

// Client issues command requests against the backend's REST surface.
// Commands are retried with exponential backoff (2^attempt seconds) before
// the final failure is returned.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a REST client for the given backend base URL.
func NewClient(baseURL string, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewEnvLogger("[backend]")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
		sleep:   sleepCtx,
	}
}

// KillAll asks the backend to terminate AI applications and close browser
// tabs, preserving tabs on the exam hostname.
func (c *Client) KillAll(ctx context.Context, examURL string) (*KillAllResult, error) {
	var result KillAllResult
	body := map[string]string{"exam_url": examURL}
	if err := c.do(ctx, http.MethodPost, "/api/kill-all", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// KillAIOnly asks the backend to terminate AI applications only.
func (c *Client) KillAIOnly(ctx context.Context) (*KillResult, error) {
	var result KillResult
	if err := c.do(ctx, http.MethodPost, "/api/kill-ai-only", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CloseTabsOnly asks the backend to close browser tabs, preserving tabs on
// the exam hostname.
func (c *Client) CloseTabsOnly(ctx context.Context, examURL string) (*TabsResult, error) {
	var result TabsResult
	body := map[string]string{"exam_url": examURL}
	if err := c.do(ctx, http.MethodPost, "/api/close-tabs-only", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status fetches a full snapshot. Used as the polling fallback when the
// realtime channel cannot initialize.
func (c *Client) Status(ctx context.Context) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &snap); err != nil {
		return nil, err
	}
	snap.Normalize()
	return &snap, nil
}

// PreviewTermination fetches what a kill-all would terminate without
// executing it.
func (c *Client) PreviewTermination(ctx context.Context, examURL string) (*Preview, error) {
	path := "/api/preview-termination"
	if examURL != "" {
		path += "?exam_url=" + examURL
	}
	var preview Preview
	if err := c.do(ctx, http.MethodGet, path, nil, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// do runs one request with bounded retry and exponential backoff, decoding
// the envelope's data into out on success.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			c.log.Debug("retrying %s %s in %s (attempt %d/%d)", method, path, backoff, attempt, MaxAttempts)
			if err := c.sleep(ctx, backoff); err != nil {
				return errors.WrapWithCode(err, errors.ErrCommand,
					fmt.Sprintf("Request to %s cancelled", path), "")
			}
		}

		lastErr = c.once(ctx, method, path, body, out)
		if lastErr == nil {
			return nil
		}
		c.log.Debug("%s %s failed: %v", method, path, lastErr)
	}

	return errors.WrapWithCode(lastErr, errors.ErrCommand,
		fmt.Sprintf("Backend request %s failed after %d attempts", path, MaxAttempts),
		"Check that the proctoring backend is running and reachable")
}

// once runs a single request attempt.
func (c *Client) once(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("malformed response from %s: %w", path, err)
	}

	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("%s", msg)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("malformed data from %s: %w", path, err)
		}
	}
	return nil
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
