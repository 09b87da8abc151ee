// Package telemetry forwards captured server errors to an external sink.
// Reporting is fire-and-forget: Capture never blocks the request path and
// never fails it.
package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"coursehub/internal/pubsub"

	"github.com/rs/zerolog"
)

// Reporter receives errors that ended a request with a 500.
type Reporter interface {
	Capture(ctx context.Context, err error, tags map[string]string)
}

// Event is the JSON document published for each captured error.
type Event struct {
	Message     string            `json:"message"`
	Environment string            `json:"environment"`
	Type        string            `json:"type"`
	ProjectID   string            `json:"projectId,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

type PubSubReporter struct {
	publisher   pubsub.Publisher
	topic       string
	environment string
	projectID   string
	timeout     time.Duration
	logger      zerolog.Logger
	wg          sync.WaitGroup
}

func NewPubSubReporter(publisher pubsub.Publisher, topic, environment, projectID string, logger zerolog.Logger) *PubSubReporter {
	return &PubSubReporter{
		publisher:   publisher,
		topic:       topic,
		environment: environment,
		projectID:   projectID,
		timeout:     5 * time.Second,
		logger:      logger.With().Str("component", "telemetry").Logger(),
	}
}

func (r *PubSubReporter) Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	event := Event{
		Message:     err.Error(),
		Environment: r.environment,
		Type:        "backend",
		ProjectID:   r.projectID,
		Tags:        tags,
		Timestamp:   time.Now().UTC(),
	}
	payload, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		r.logger.Error().Err(marshalErr).Msg("Failed to marshal telemetry event")
		return
	}

	// The request context is usually cancelled before publishing completes.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		if _, err := r.publisher.Publish(pubCtx, r.topic, payload); err != nil {
			r.logger.Warn().Err(err).Str("topic", r.topic).Msg("Failed to publish telemetry event")
		}
	}()
}

// Flush waits for in-flight events until ctx is done.
func (r *PubSubReporter) Flush(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn().Msg("Telemetry flush timed out")
	}
}

// NopReporter discards every event. Used when no telemetry topic is configured.
type NopReporter struct{}

func (NopReporter) Capture(context.Context, error, map[string]string) {}
