package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const gaCollectURL = "https://www.google-analytics.com/mp/collect"

// GARecorder ships events to Google Analytics over the Measurement Protocol.
// Events are queued on a bounded channel and posted by Run; when the queue is
// full the event is dropped, never the caller's request.
type GARecorder struct {
	measurementID string
	apiSecret     string
	clientID      string
	client        *http.Client
	logger        *slog.Logger
	queue         chan gaEvent
}

type gaEvent struct {
	name  string
	attrs []Attr
}

// NewGARecorder returns nil when the measurement ID or API secret is missing,
// which callers treat as "analytics not initialized".
func NewGARecorder(measurementID, apiSecret string, logger *slog.Logger) *GARecorder {
	if measurementID == "" || apiSecret == "" {
		return nil
	}
	return &GARecorder{
		measurementID: measurementID,
		apiSecret:     apiSecret,
		clientID:      uuid.NewString(),
		client:        &http.Client{Timeout: 5 * time.Second},
		logger:        logger,
		queue:         make(chan gaEvent, 256),
	}
}

func (r *GARecorder) Record(_ context.Context, event string, attrs ...Attr) {
	select {
	case r.queue <- gaEvent{name: event, attrs: attrs}:
	default:
		// Queue full; analytics loss is acceptable, backpressure is not.
	}
}

// Run drains the queue until the context is cancelled.
func (r *GARecorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-r.queue:
			r.post(ctx, event)
		}
	}
}

type gaPayload struct {
	ClientID string          `json:"client_id"`
	Events   []gaPayloadItem `json:"events"`
}

type gaPayloadItem struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

func (r *GARecorder) post(ctx context.Context, event gaEvent) {
	params := make(map[string]string, len(event.attrs))
	for _, attr := range event.attrs {
		params[attr.Key] = attr.Value
	}
	body, err := json.Marshal(gaPayload{
		ClientID: r.clientID,
		Events:   []gaPayloadItem{{Name: event.name, Params: params}},
	})
	if err != nil {
		r.warn(ctx, "encode analytics event", err)
		return
	}

	url := gaCollectURL + "?measurement_id=" + r.measurementID + "&api_secret=" + r.apiSecret
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		r.warn(ctx, "build analytics request", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.warn(ctx, "post analytics event", err)
		return
	}
	resp.Body.Close()
}

func (r *GARecorder) warn(ctx context.Context, msg string, err error) {
	if r.logger != nil {
		r.logger.WarnContext(ctx, msg, "error", err)
	}
}
