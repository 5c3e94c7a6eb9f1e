package client

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -source=wait.go -destination=mock_status_reader.go -package=client

// StatusReader is the slice of the client the drain helper needs.
type StatusReader interface {
	Stats(ctx context.Context) (*Stats, error)
	Waiting(ctx context.Context) ([]Task, error)
}

var _ StatusReader = (*Client)(nil)

const defaultPollInterval = 200 * time.Millisecond

// WaitDrained polls the daemon until no delivery is in flight and the waiting
// queue is empty, or ctx expires. Useful in test harnesses and before
// shutting down a receiver.
func WaitDrained(ctx context.Context, sr StatusReader, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats, err := sr.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read daemon stats: %w", err)
		}

		if stats.InFlight == 0 {
			waiting, err := sr.Waiting(ctx)
			if err != nil {
				return fmt.Errorf("failed to list waiting tasks: %w", err)
			}

			if len(waiting) == 0 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
