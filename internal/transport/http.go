package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/creasty/defaults"
)

// HTTPDoer is the subset of *http.Client the HTTP transport needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	// MaxSize caps the number of body bytes read from a response.
	MaxSize int64 `default:"16777216"` // 16MiB
}

// HTTPTransport serves http:// and https:// URIs with GET requests.
type HTTPTransport struct {
	client  HTTPDoer
	options HTTPOptions
}

// NewHTTPTransport creates an HTTPTransport using the given client.
// If client is nil, http.DefaultClient is used.
func NewHTTPTransport(client HTTPDoer, opts ...HTTPOptions) *HTTPTransport {
	t := &HTTPTransport{client: client}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if len(opts) > 0 {
		t.options = opts[0]
	}
	if err := defaults.Set(&t.options); err != nil || t.options.MaxSize <= 0 {
		t.options.MaxSize = 16 * 1024 * 1024 // Fallback default
	}

	return t
}

// Fetch issues a GET request for the URI. Any non-2xx status is a failure;
// the response Content-Type header is carried on the Resource for charset
// selection.
func (t *HTTPTransport) Fetch(ctx context.Context, u *url.URL) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("http request failed with status: %d", resp.StatusCode)
	}

	return &Resource{
		Body:        newCappedReader(resp.Body, t.options.MaxSize),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// cappedReader fails the read, instead of silently truncating, once more
// than max bytes have been produced.
type cappedReader struct {
	rc        io.ReadCloser
	remaining int64
	max       int64
}

func newCappedReader(rc io.ReadCloser, max int64) io.ReadCloser {
	// Read one extra byte to detect overflow.
	return &cappedReader{rc: rc, remaining: max + 1, max: max}
}

func (r *cappedReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, fmt.Errorf("resource content exceeds maximum size of %d bytes", r.max)
	}
	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	n, err := r.rc.Read(p)
	r.remaining -= int64(n)
	if err == nil && r.remaining <= 0 {
		err = fmt.Errorf("resource content exceeds maximum size of %d bytes", r.max)
	}

	return n, err
}

func (r *cappedReader) Close() error {
	return r.rc.Close()
}
