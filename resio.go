// Package resio provides uniform, scheme-dispatched access to the bytes or
// text located by a URI.
//
// A URI may denote a local file, an HTTP(S) endpoint, an embedded data
// payload, or a package-relative path; callers ask for "the contents of
// this resource" and the loader picks the transport that satisfies it.
//
// Basic usage:
//
//	data, err := resio.ReadBytes(ctx, "https://example.com/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For more control, build a loader with options:
//
//	loader := resio.New(
//	    resio.WithBaseURI(base),
//	    resio.WithPackageResolver(pkgs),
//	)
//	text, err := loader.ReadString(ctx, "package:mylib/data/greeting.txt")
//
// Two loader variants exist: the resolving loader built by New accepts
// relative references and package: URIs and normalizes them before
// dispatch, while the direct loader built by NewDirect accepts only
// absolute file, http, https, and data URIs and performs no rewriting.
// Both are stateless after construction and safe for concurrent use.
package resio

import (
	"context"
	"io"
	"net/url"

	"github.com/arloliu/resio/internal/charset"
	"github.com/arloliu/resio/internal/transport"
	"github.com/arloliu/resio/internal/types"
)

// Loader is the capability interface for resource access. All three
// operations honor ctx cancellation and surface failures as errors; no
// operation retries or falls back to a different resource.
type Loader interface {
	// OpenRead opens the resource for incremental reading. The returned
	// stream is single-pass; a fresh call yields a fresh stream. The
	// caller must close it.
	OpenRead(ctx context.Context, uri string) (io.ReadCloser, error)

	// ReadBytes returns the resource's entire binary content.
	ReadBytes(ctx context.Context, uri string) ([]byte, error)

	// ReadString returns the resource's content decoded as text. Without
	// WithEncoding, a scheme-dependent default charset applies.
	ReadString(ctx context.Context, uri string, opts ...ReadOption) (string, error)
}

// Default is the process-wide resolving loader. It resolves relative
// references against the working directory at package initialization and
// has no package resolver configured. It is immutable; build a loader with
// New for anything beyond the defaults.
var Default = New()

// OpenRead opens a resource for reading using the Default loader.
func OpenRead(ctx context.Context, uri string) (io.ReadCloser, error) {
	return Default.OpenRead(ctx, uri)
}

// ReadBytes loads a resource's full content using the Default loader.
func ReadBytes(ctx context.Context, uri string) ([]byte, error) {
	return Default.ReadBytes(ctx, uri)
}

// ReadString loads a resource's content as text using the Default loader.
func ReadString(ctx context.Context, uri string, opts ...ReadOption) (string, error) {
	return Default.ReadString(ctx, uri, opts...)
}

// readAll drains a fetched resource into memory. Body read failures are
// transport failures and are wrapped the same way Fetch failures are.
func readAll(u *url.URL, res *transport.Resource) ([]byte, error) {
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &types.TransportError{Scheme: u.Scheme, URI: u.Redacted(), Err: err}
	}

	return data, nil
}

// decodeString applies the charset policy to fully retrieved bytes.
func decodeString(u *url.URL, res *transport.Resource, raw []byte, opts []ReadOption) (string, error) {
	cfg := readConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	text, err := charset.Decode(raw, cfg.encoding, u.Scheme, res.ContentType)
	if err != nil {
		return "", &types.TransportError{Scheme: u.Scheme, URI: u.Redacted(), Err: err}
	}

	return text, nil
}
