package resio

import "github.com/arloliu/resio/internal/types"

// UnsupportedSchemeError indicates that a URI's scheme has no registered transport.
type UnsupportedSchemeError = types.UnsupportedSchemeError

// InvalidReferenceError indicates a malformed URI, or a relative reference
// given to a loader that does not resolve relative references.
type InvalidReferenceError = types.InvalidReferenceError

// PackageResolutionError indicates that a package identifier could not be
// mapped to a concrete location.
type PackageResolutionError = types.PackageResolutionError

// TransportError wraps a failure from the underlying transport of a scheme.
type TransportError = types.TransportError
