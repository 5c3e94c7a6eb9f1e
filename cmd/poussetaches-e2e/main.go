// End-to-end harness against a live poussetaches daemon: hosts the receiver
// with gin, enqueues a task targeting itself and waits for the round trip.
//
// Requires POUSSETACHES_BASE_URL to point at this process (with an explicit
// port) and a daemon reachable at POUSSETACHES_URL.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tsileo/poussetaches-go/client"
	"github.com/tsileo/poussetaches-go/config"
	"github.com/tsileo/poussetaches-go/receiver"
)

const deliveryPath = "/tasks/e2e-echo"

func main() {
	log.SetFlags(0)

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	marker := uuid.NewString()
	received := make(chan receiver.Delivery, 1)

	rcv := receiver.New(cfg.AuthKey)
	rcv.Register(deliveryPath, func(_ context.Context, d receiver.Delivery) error {
		received <- d
		return nil
	})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST(deliveryPath, gin.WrapH(rcv))

	addr, err := listenAddr(cfg.BaseURL)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: addr, Handler: engine}
	srvErr := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("receiver shutdown: %v", err)
		}
	}()

	stats, err := c.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read daemon stats: %w", err)
	}

	log.Printf("daemon up: paused=%v in_flight=%d", stats.Paused, stats.InFlight)

	// A freshly started daemon is paused.
	if stats.Paused {
		if err := c.Resume(ctx); err != nil {
			return fmt.Errorf("resume daemon: %w", err)
		}

		log.Print("daemon resumed")
	}

	taskID, err := c.Enqueue(ctx, client.EnqueueRequest{
		Path:    deliveryPath,
		Payload: []byte(marker),
	})
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	log.Printf("enqueued task %s", taskID)

	select {
	case d := <-received:
		if string(d.Payload) != marker {
			return fmt.Errorf("delivery payload = %q, want %q", d.Payload, marker)
		}

		log.Printf("delivery received: req_id=%s tries=%d", d.ReqID, d.Tries)
	case err := <-srvErr:
		return fmt.Errorf("receiver server: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("waiting for delivery: %w", ctx.Err())
	}

	if err := client.WaitDrained(ctx, c, time.Second); err != nil {
		return fmt.Errorf("drain daemon: %w", err)
	}

	succeeded, err := c.Success(ctx)
	if err != nil {
		return fmt.Errorf("list succeeded tasks: %w", err)
	}

	for _, task := range succeeded {
		if task.ID == taskID {
			log.Printf("task %s completed after %d try/tries", task.ID, task.Tries)
			return nil
		}
	}

	return fmt.Errorf("task %s not in the success listing", taskID)
}

// listenAddr derives the receiver's listen address from the callback base URL
// so the daemon's deliveries land on this process.
func listenAddr(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	if u.Port() == "" {
		return "", fmt.Errorf("base URL %q must carry an explicit port for the harness", baseURL)
	}

	return ":" + u.Port(), nil
}
