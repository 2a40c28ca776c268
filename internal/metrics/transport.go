package metrics

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Recorder persists calls.
type Recorder interface {
	Record(ctx context.Context, c Call) error
}

// Transport is an http.RoundTripper that records every request it sends.
// Only the URL path is stored; query strings carry API keys.
type Transport struct {
	Service  string
	Base     http.RoundTripper
	Recorder Recorder
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)

	status := 0
	if err == nil {
		status = resp.StatusCode
	}
	call := Call{
		Service:   t.Service,
		Endpoint:  req.URL.Path,
		Status:    status,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	// The request context may already be cancelled; recording must not be.
	if recErr := t.Recorder.Record(context.Background(), call); recErr != nil {
		log.Printf("Warning: failed to record %s call: %v", t.Service, recErr)
	}
	return resp, err
}

// NewHTTPClient returns a client whose calls are recorded under service.
func NewHTTPClient(service string, rec Recorder, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &Transport{Service: service, Recorder: rec},
	}
}
