package resio

import (
	"context"
	"net/url"

	"github.com/arloliu/resio/internal/transport"
)

// Resource is an open resource as returned by a Transport.
type Resource = transport.Resource

// Transport delivers the bytes of an absolute URI of one scheme family.
// Register custom transports on a loader with WithTransport.
// Implementations MUST be safe for concurrent use by multiple goroutines.
type Transport = transport.Transport

// PackageResolver maps a package: URI to the absolute, directly loadable
// URI it denotes. It is used to mock package resolution in tests or to
// plug in a host-environment package map (see the pkgmap package).
// Implementations MUST be safe for concurrent use by multiple goroutines.
type PackageResolver interface {
	// ResolvePackage returns the absolute URI the package URI maps to.
	// The result must not be relative and must not itself use the
	// package scheme.
	ResolvePackage(ctx context.Context, u *url.URL) (*url.URL, error)
}
