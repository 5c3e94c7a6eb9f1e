// Package receiver dispatches task deliveries from a poussetaches daemon to
// registered handlers.
//
// A Receiver is an explicit routing table owned by the caller; it is mounted
// into whatever web layer hosts the process as a plain http.Handler.
package receiver

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
)

const authKeyHeader = "Poussetaches-Auth-Key"

// Delivery is one delivery attempt for an enqueued task.
type Delivery struct {
	// Payload is the blob given at enqueue time.
	Payload []byte
	// Tries counts the daemon's delivery attempts, this one included.
	Tries int
	// ReqID identifies this delivery attempt in the daemon's logs.
	ReqID string
	// Path is the registered path the delivery was routed to.
	Path string
}

// HandlerFunc handles one delivery. A non-nil error makes the receiver answer
// with a 5xx status, which the daemon treats as a signal to redeliver later.
type HandlerFunc func(ctx context.Context, d Delivery) error

// deliveryPayload is the daemon's delivery body.
type deliveryPayload struct {
	Payload []byte `json:"payload"`
	Tries   int    `json:"tries"`
	ReqID   string `json:"req_id"`
}

// Receiver routes deliveries to handlers by request path. Populate it at
// startup; registrations are not meant to change concurrently with dispatch.
type Receiver struct {
	authKey string

	mu     sync.RWMutex
	routes map[string]HandlerFunc
}

// New returns a Receiver verifying the given shared key on every delivery.
// An empty key disables verification, matching a daemon started without one.
func New(authKey string) *Receiver {
	return &Receiver{
		authKey: authKey,
		routes:  make(map[string]HandlerFunc),
	}
}

// Register associates path with h. Registering the same path again replaces
// the previous handler.
func (rc *Receiver) Register(path string, h HandlerFunc) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.routes[path] = h
}

func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if rc.authKey != "" && !hmac.Equal([]byte(r.Header.Get(authKeyHeader)), []byte(rc.authKey)) {
		slog.Warn("delivery with bad auth key", slog.String("path", r.URL.Path))
		w.WriteHeader(http.StatusUnauthorized)

		return
	}

	rc.mu.RLock()
	h, ok := rc.routes[r.URL.Path]
	rc.mu.RUnlock()

	if !ok {
		slog.Warn("delivery for unregistered path", slog.String("path", r.URL.Path))
		w.WriteHeader(http.StatusNotFound)

		return
	}

	var dp deliveryPayload
	if err := json.NewDecoder(r.Body).Decode(&dp); err != nil {
		slog.Warn("failed to decode delivery body",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	d := Delivery{
		Payload: dp.Payload,
		Tries:   dp.Tries,
		ReqID:   dp.ReqID,
		Path:    r.URL.Path,
	}

	if err := h(r.Context(), d); err != nil {
		slog.Warn("delivery handler failed",
			slog.String("path", d.Path),
			slog.String("req_id", d.ReqID),
			slog.Int("tries", d.Tries),
			slog.String("error", err.Error()),
		)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	slog.Debug("delivery handled",
		slog.String("path", d.Path),
		slog.String("req_id", d.ReqID),
	)
	w.WriteHeader(http.StatusOK)
}
