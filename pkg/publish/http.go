package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pressfeed-hq/pressfeed/internal/logger"
)

// httpSink POSTs the event as JSON to a configured endpoint.
type httpSink struct {
	id     string
	url    string
	method string
	client *resty.Client
	log    logger.Logger
}

// newHTTPSink builds a generic HTTP sink.
func newHTTPSink(_ context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second).
		SetHeaders(cfg.HTTP.Headers)

	return &httpSink{
		id:     cfg.ID,
		url:    cfg.HTTP.URL,
		method: cfg.HTTP.Method,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (s *httpSink) ID() string   { return s.id }
func (s *httpSink) Type() string { return TypeHTTP }

// Publish delivers the event, failing on any non-2xx response.
func (s *httpSink) Publish(ctx context.Context, evt Event) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(evt).
		Execute(s.method, s.url)
	if err != nil {
		return fmt.Errorf("http sink %s request: %w", s.id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("http sink %s returned status %d", s.id, resp.StatusCode())
	}

	s.log.DebugObj("http sink delivered event", "sink_http_delivery", map[string]any{
		"sink_id": s.id,
		"status":  resp.StatusCode(),
	})
	return nil
}
