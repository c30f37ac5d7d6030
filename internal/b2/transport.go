package b2

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// controlTimeout bounds small control calls (authorize, lease, list, delete).
	controlTimeout = 30 * time.Second
	// uploadTimeout bounds payload transfers.
	uploadTimeout = 10 * time.Minute
)

// Request describes a single remote call. A zero Timeout means controlTimeout.
type Request struct {
	Method  string
	URL     string
	Header  map[string]string
	Body    []byte
	Timeout time.Duration
}

// Transport executes a request and returns the decoded response in whatever
// envelope shape the implementation produces; Normalize absorbs the
// differences. Implementations must return an error only for transport-level
// failures (network, DNS, timeout), never for remote error statuses.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (any, error)
}

// httpTransport is the production Transport. It wraps net/http with otel
// instrumentation and a bounded per-call timeout, and reports responses in
// the {statusCode, body} wrapper shape with the body JSON-decoded when
// possible (kept as a string otherwise).
type httpTransport struct {
	client *http.Client
}

// NewHTTPTransport creates the production HTTP transport.
func NewHTTPTransport() Transport {
	return &httpTransport{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (t *httpTransport) RoundTrip(ctx context.Context, req *Request) (any, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = controlTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Header {
		hr.Header.Set(k, v)
	}
	if req.Body != nil {
		hr.ContentLength = int64(len(req.Body))
	}

	resp, err := t.client.Do(hr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		parsed = string(data)
	}
	return map[string]any{
		"statusCode": resp.StatusCode,
		"body":       parsed,
	}, nil
}
