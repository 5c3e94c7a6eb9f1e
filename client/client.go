// Package client implements the HTTP client for the poussetaches task-queue
// daemon: enqueueing tasks and driving the daemon's management endpoints.
//
// The client does not retry on its own. Transport and service failures are
// surfaced to the caller; redelivery of failed tasks is the daemon's job.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"

	"github.com/tsileo/poussetaches-go/config"
)

const (
	authKeyHeader   = "Poussetaches-Auth-Key"
	taskIDHeader    = "Poussetaches-Task-ID"
	requestIDHeader = "Poussetaches-Request-ID"

	defaultTimeout  = 30 * time.Second
	defaultExpected = http.StatusOK
)

// Client talks to a single poussetaches daemon. It is immutable after New and
// safe for concurrent use.
type Client struct {
	apiURL     string
	baseURL    string
	authKey    string
	httpClient *http.Client
}

func New(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	return &Client{
		apiURL:  strings.TrimSuffix(cfg.APIURL, "/"),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		authKey: cfg.AuthKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// EnqueueRequest describes one task to submit.
type EnqueueRequest struct {
	// Path is joined onto the configured base URL to form the URL the
	// daemon will deliver the task to. Must start with "/".
	Path string
	// Payload is an opaque blob handed back as-is on delivery.
	Payload []byte
	// Expected is the delivery status code the daemon treats as success.
	// Zero means 200.
	Expected int
	// Delay postpones the first delivery. The daemon schedules in whole
	// minutes; a positive sub-minute delay is rounded up to one minute.
	Delay time.Duration
	// Schedule is a cron spec for recurring tasks, in the daemon's cron
	// dialect. Mutually exclusive with Delay.
	Schedule string
}

func (r *EnqueueRequest) validate() error {
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("%w: path must start with /, got: %q", ErrInvalidRequest, r.Path)
	}

	if r.Delay < 0 {
		return fmt.Errorf("%w: delay must be non-negative, got: %v", ErrInvalidRequest, r.Delay)
	}

	if r.Schedule != "" {
		if r.Delay > 0 {
			return fmt.Errorf("%w: schedule and delay are mutually exclusive", ErrInvalidRequest)
		}

		if _, err := cron.Parse(r.Schedule); err != nil {
			return fmt.Errorf("%w: bad schedule %q: %v", ErrInvalidRequest, r.Schedule, err)
		}
	}

	return nil
}

func (r *EnqueueRequest) delayMinutes() int {
	if r.Delay <= 0 {
		return 0
	}

	minutes := int(r.Delay / time.Minute)
	if r.Delay%time.Minute != 0 {
		minutes++
	}

	return minutes
}

// Enqueue submits a task and returns the daemon-assigned task ID. It never
// returns an empty ID without an error.
func (c *Client) Enqueue(ctx context.Context, req EnqueueRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	expected := req.Expected
	if expected == 0 {
		expected = defaultExpected
	}

	input := &newTaskInput{
		URL:      c.baseURL + req.Path,
		Payload:  req.Payload,
		Expected: expected,
		Schedule: req.Schedule,
		Delay:    req.delayMinutes(),
	}

	body, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task input: %w", err)
	}

	reqID := uuid.NewString()

	slog.Debug("enqueueing task",
		slog.String("target_url", input.URL),
		slog.String("request_id", reqID),
		slog.Int("delay_minutes", input.Delay),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(authKeyHeader, c.authKey)
	httpReq.Header.Set(requestIDHeader, reqID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Warn("failed to reach poussetaches daemon",
			slog.String("error", err.Error()),
		)

		return "", &TransportError{URL: c.apiURL, Err: err}
	}

	defer closeBody(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: c.apiURL, Err: err}
	}

	if resp.StatusCode != http.StatusCreated {
		slog.Warn("unexpected status code from poussetaches daemon",
			slog.Int("status_code", resp.StatusCode),
		)

		return "", &ServiceError{StatusCode: resp.StatusCode, Body: respBody}
	}

	taskID := resp.Header.Get(taskIDHeader)
	if taskID == "" {
		return "", ErrMissingTaskID
	}

	slog.Debug("task enqueued",
		slog.String("task_id", taskID),
		slog.String("request_id", reqID),
	)

	return taskID, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Warn("failed to close response body", slog.String("error", err.Error()))
	}
}
