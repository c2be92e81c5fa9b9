package resio

import (
	"context"
	"io"
	"net/url"

	"github.com/arloliu/resio/internal/transport"
	"github.com/arloliu/resio/internal/types"
)

// DirectLoader is the non-resolving loader variant. It accepts only
// absolute file, http, https, and data URIs and dispatches them to the
// transport layer with no rewriting. Relative references and package:
// URIs fail without any transport call.
type DirectLoader struct {
	registry *transport.Registry
}

// NewDirect creates a direct loader. WithBaseURI and WithPackageResolver
// have no effect on this variant.
func NewDirect(opts ...LoaderOption) *DirectLoader {
	cfg := loaderConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &DirectLoader{registry: cfg.buildRegistry()}
}

// OpenRead implements the Loader interface.
func (l *DirectLoader) OpenRead(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := parseAbsolute(uri)
	if err != nil {
		return nil, err
	}

	res, err := l.registry.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	return res.Body, nil
}

// ReadBytes implements the Loader interface.
func (l *DirectLoader) ReadBytes(ctx context.Context, uri string) ([]byte, error) {
	u, err := parseAbsolute(uri)
	if err != nil {
		return nil, err
	}

	res, err := l.registry.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	return readAll(u, res)
}

// ReadString implements the Loader interface.
func (l *DirectLoader) ReadString(ctx context.Context, uri string, opts ...ReadOption) (string, error) {
	u, err := parseAbsolute(uri)
	if err != nil {
		return "", err
	}

	res, err := l.registry.Fetch(ctx, u)
	if err != nil {
		return "", err
	}

	raw, err := readAll(u, res)
	if err != nil {
		return "", err
	}

	return decodeString(u, res, raw, opts)
}

// parseAbsolute parses a URI string and rejects relative references.
func parseAbsolute(uri string) (*url.URL, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &types.InvalidReferenceError{URI: uri, Err: err}
	}
	if !u.IsAbs() {
		return nil, &types.InvalidReferenceError{
			URI:     uri,
			Message: "relative reference requires a resolving loader",
		}
	}

	return u, nil
}
