// Package transport contains the per-scheme byte-delivery backends used by
// the resio loaders. Each transport serves one URI scheme family; the
// Registry dispatches an already-absolute URI to the transport registered
// for its scheme.
package transport

import (
	"context"
	"io"
	"net/url"

	"github.com/arloliu/resio/internal/types"
	"github.com/spf13/afero"
)

// Resource is an open resource returned by a transport. Body is a
// single-pass stream of the resource's bytes; the caller owns it and must
// close it. ContentType carries the transport-level media type when the
// scheme provides one (HTTP response header, data URI media type), or is
// empty otherwise.
type Resource struct {
	Body        io.ReadCloser
	ContentType string
}

// Transport delivers the bytes of an absolute URI of one scheme family.
// Implementations MUST be safe for concurrent use by multiple goroutines.
type Transport interface {
	// Fetch opens the resource identified by u for reading.
	Fetch(ctx context.Context, u *url.URL) (*Resource, error)
}

// Registry dispatches fetches to transports keyed by URI scheme.
type Registry struct {
	transports map[string]Transport
}

// NewRegistry creates a Registry with the default transports for the
// file, http, https, and data schemes. If fs is nil, the OS filesystem is
// used for file URIs. If client is nil, http.DefaultClient is used.
func NewRegistry(fs afero.Fs, client HTTPDoer) *Registry {
	r := &Registry{
		transports: make(map[string]Transport),
	}
	r.Register("file", NewFileTransport(fs))

	httpTransport := NewHTTPTransport(client)
	r.Register("http", httpTransport)
	r.Register("https", httpTransport)
	r.Register("data", NewDataTransport())

	return r
}

// Register registers a transport for a given scheme. Registering over an
// existing scheme replaces its transport.
func (r *Registry) Register(scheme string, t Transport) {
	r.transports[scheme] = t
}

// Supports reports whether a transport is registered for the scheme.
func (r *Registry) Supports(scheme string) bool {
	_, ok := r.transports[scheme]
	return ok
}

// Fetch dispatches to the transport registered for u's scheme. It fails
// with *types.UnsupportedSchemeError, without any transport call, when no
// transport is registered. Transport failures are wrapped in
// *types.TransportError with the original error left intact.
func (r *Registry) Fetch(ctx context.Context, u *url.URL) (*Resource, error) {
	t, ok := r.transports[u.Scheme]
	if !ok {
		return nil, &types.UnsupportedSchemeError{Scheme: u.Scheme, URI: u.String()}
	}

	res, err := t.Fetch(ctx, u)
	if err != nil {
		return nil, &types.TransportError{Scheme: u.Scheme, URI: u.Redacted(), Err: err}
	}

	return res, nil
}
