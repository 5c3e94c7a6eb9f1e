package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Stats reports whether the daemon is paused and how many deliveries are in
// flight.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/", &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// Pause stops the daemon from starting new deliveries.
func (c *Client) Pause(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/pause", nil)
}

// Resume lets a paused daemon deliver again.
func (c *Client) Resume(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/resume", nil)
}

// Waiting lists tasks not yet delivered successfully.
func (c *Client) Waiting(ctx context.Context) ([]Task, error) {
	return c.listTasks(ctx, "/waiting")
}

// Success lists recently completed tasks. The daemon only keeps a bounded
// number of them.
func (c *Client) Success(ctx context.Context) ([]Task, error) {
	return c.listTasks(ctx, "/success")
}

// Dead lists tasks whose retries the daemon exhausted.
func (c *Client) Dead(ctx context.Context) ([]Task, error) {
	return c.listTasks(ctx, "/dead")
}

// Cron lists the recurring tasks currently scheduled.
func (c *Client) Cron(ctx context.Context) ([]Task, error) {
	return c.listTasks(ctx, "/cron")
}

// FlushCron makes the daemon reload its queue, dropping all recurring tasks.
// Callers are expected to enqueue their schedules again afterwards.
func (c *Client) FlushCron(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cron", nil)
}

func (c *Client) listTasks(ctx context.Context, path string) ([]Task, error) {
	var list taskList
	if err := c.do(ctx, http.MethodGet, path, &list); err != nil {
		return nil, err
	}

	return list.Tasks, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	url := c.apiURL + path

	slog.Debug("calling poussetaches management endpoint",
		slog.String("method", method),
		slog.String("url", url),
	)

	httpReq, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(authKeyHeader, c.authKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Warn("failed to reach poussetaches daemon",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)

		return &TransportError{URL: url, Err: err}
	}

	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("unexpected status code from poussetaches daemon",
			slog.String("url", url),
			slog.Int("status_code", resp.StatusCode),
		)

		return &ServiceError{StatusCode: resp.StatusCode, Body: body}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return nil
}
