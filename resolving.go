package resio

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/resio/internal/transport"
	"github.com/arloliu/resio/internal/types"
)

// ResolvingLoader accepts everything the direct loader accepts, plus
// relative URI references and the package scheme. Before each dispatch it
// normalizes the input: package: URIs go through the configured
// PackageResolver, everything else is resolved against the base URI per
// RFC 3986. After normalization, dispatch is identical to the direct
// loader's.
type ResolvingLoader struct {
	registry *transport.Registry
	base     *url.URL
	pkg      PackageResolver
}

// New creates a resolving loader. Without WithBaseURI, relative references
// resolve against a file: URI for the process working directory; without
// WithPackageResolver, package: loads fail.
func New(opts ...LoaderOption) *ResolvingLoader {
	cfg := loaderConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := cfg.baseURI
	if base == nil {
		base = workingDirURI()
	}

	return &ResolvingLoader{
		registry: cfg.buildRegistry(),
		base:     base,
		pkg:      cfg.pkg,
	}
}

// Base returns the base URI relative references resolve against.
func (l *ResolvingLoader) Base() *url.URL {
	c := *l.base
	return &c
}

// OpenRead implements the Loader interface.
func (l *ResolvingLoader) OpenRead(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := l.normalize(ctx, uri)
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
func (l *ResolvingLoader) ReadBytes(ctx context.Context, uri string) ([]byte, error) {
	u, err := l.normalize(ctx, uri)
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
func (l *ResolvingLoader) ReadString(ctx context.Context, uri string, opts ...ReadOption) (string, error) {
	u, err := l.normalize(ctx, uri)
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

// Resolve normalizes a URI the way every load operation does, without
// performing the load: package: URIs go through the package resolver,
// anything else is resolved against the base URI. Already-absolute URIs
// with a loadable scheme come back unchanged.
func (l *ResolvingLoader) Resolve(ctx context.Context, uri string) (*url.URL, error) {
	return l.normalize(ctx, uri)
}

// normalize turns any accepted input URI into an absolute, directly
// loadable one.
func (l *ResolvingLoader) normalize(ctx context.Context, uri string) (*url.URL, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &types.InvalidReferenceError{URI: uri, Err: err}
	}

	if u.Scheme == "package" {
		return l.resolvePackage(ctx, u)
	}

	return l.base.ResolveReference(u), nil
}

// resolvePackage delegates a package: URI to the configured resolver and
// validates the result. A relative result, or another package: URI, fails
// fast: recursive indirection is not supported.
func (l *ResolvingLoader) resolvePackage(ctx context.Context, u *url.URL) (*url.URL, error) {
	if l.pkg == nil {
		return nil, &types.PackageResolutionError{
			URI:     u.String(),
			Message: "no package resolver configured",
		}
	}

	resolved, err := l.pkg.ResolvePackage(ctx, u)
	if err != nil {
		var perr *types.PackageResolutionError
		if errors.As(err, &perr) {
			return nil, err
		}

		return nil, &types.PackageResolutionError{URI: u.String(), Err: err}
	}

	if resolved == nil || !resolved.IsAbs() {
		return nil, &types.PackageResolutionError{
			URI:     u.String(),
			Message: "package resolver returned a relative URI",
		}
	}
	if resolved.Scheme == "package" {
		return nil, &types.PackageResolutionError{
			URI:     u.String(),
			Message: "package resolver returned another package URI",
		}
	}

	return resolved, nil
}

// workingDirURI builds the default base URI from the working directory.
// The trailing slash makes relative references resolve inside the
// directory rather than next to it.
func workingDirURI() *url.URL {
	wd, err := os.Getwd()
	if err != nil {
		return &url.URL{Scheme: "file", Path: "/"}
	}

	p := filepath.ToSlash(wd)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}

	return &url.URL{Scheme: "file", Path: p}
}
