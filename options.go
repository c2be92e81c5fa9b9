package resio

import (
	"net/http"
	"net/url"

	"github.com/arloliu/resio/internal/transport"
	"github.com/spf13/afero"
)

// loaderConfig holds construction-time configuration shared by both loader
// variants.
type loaderConfig struct {
	fs         afero.Fs
	httpClient *http.Client
	baseURI    *url.URL
	pkg        PackageResolver
	extra      map[string]Transport
}

// LoaderOption configures a loader at construction time.
type LoaderOption func(*loaderConfig)

// WithFilesystem sets the filesystem used for file: URIs. By default the
// loader uses DefaultFs as captured at construction.
func WithFilesystem(fs afero.Fs) LoaderOption {
	return func(c *loaderConfig) {
		c.fs = fs
	}
}

// WithHTTPClient sets the HTTP client used for http: and https: URIs.
// By default http.DefaultClient is used.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(c *loaderConfig) {
		c.httpClient = client
	}
}

// WithBaseURI sets the absolute base URI that the resolving loader resolves
// relative references against. By default the base is a file: URI for the
// process working directory. The direct loader ignores this option.
func WithBaseURI(base *url.URL) LoaderOption {
	return func(c *loaderConfig) {
		c.baseURI = base
	}
}

// WithPackageResolver sets the resolver for package: URIs on the resolving
// loader. Without one, package: loads fail with a PackageResolutionError.
// The direct loader ignores this option.
func WithPackageResolver(r PackageResolver) LoaderOption {
	return func(c *loaderConfig) {
		c.pkg = r
	}
}

// WithTransport registers a custom transport for a scheme, replacing any
// built-in transport registered for it.
func WithTransport(scheme string, t Transport) LoaderOption {
	return func(c *loaderConfig) {
		if c.extra == nil {
			c.extra = make(map[string]Transport)
		}
		c.extra[scheme] = t
	}
}

// buildRegistry assembles the transport registry for a loader.
func (c *loaderConfig) buildRegistry() *transport.Registry {
	fs := c.fs
	if fs == nil {
		fs = DefaultFs
	}

	var client transport.HTTPDoer
	if c.httpClient != nil {
		client = c.httpClient
	}

	reg := transport.NewRegistry(fs, client)
	for scheme, t := range c.extra {
		reg.Register(scheme, t)
	}

	return reg
}

// readConfig holds per-call configuration for ReadString.
type readConfig struct {
	encoding string
}

// ReadOption configures a single ReadString call.
type ReadOption func(*readConfig)

// WithEncoding forces the charset used to decode the resource text,
// overriding both the content-type metadata and the per-scheme default.
// The name is looked up in the IANA index (e.g. "utf-8", "iso-8859-1",
// "shift_jis"); an unknown name fails the read.
func WithEncoding(name string) ReadOption {
	return func(c *readConfig) {
		c.encoding = name
	}
}
