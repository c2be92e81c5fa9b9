package types

import "strings"

// UnsupportedSchemeError indicates that a URI's scheme has no registered
// transport.
type UnsupportedSchemeError struct {
	Scheme string
	URI    string
}

// Error returns the string representation of the UnsupportedSchemeError.
func (e *UnsupportedSchemeError) Error() string {
	var sb strings.Builder
	sb.WriteString("unsupported scheme")
	if e.Scheme != "" {
		sb.WriteString(" '")
		sb.WriteString(e.Scheme)
		sb.WriteString("'")
	}
	if e.URI != "" {
		sb.WriteString(" in URI ")
		sb.WriteString(e.URI)
	}

	return sb.String()
}

// InvalidReferenceError indicates that a URI could not be accepted as-is:
// either it failed to parse, or a relative reference was given to a loader
// that does not resolve relative references.
type InvalidReferenceError struct {
	URI     string
	Message string
	Err     error
}

// Error returns the string representation of the InvalidReferenceError.
func (e *InvalidReferenceError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid reference '")
	sb.WriteString(e.URI)
	sb.WriteString("'")
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *InvalidReferenceError) Unwrap() error {
	return e.Err
}

// PackageResolutionError indicates that a package identifier could not be
// mapped to a concrete, directly loadable location.
type PackageResolutionError struct {
	URI     string
	Message string
	Err     error
}

// Error returns the string representation of the PackageResolutionError.
func (e *PackageResolutionError) Error() string {
	var sb strings.Builder
	sb.WriteString("cannot resolve package URI '")
	sb.WriteString(e.URI)
	sb.WriteString("'")
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *PackageResolutionError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure reported by the underlying transport for a
// scheme. The original failure is preserved unchanged; only the scheme and
// URI are added for identification.
type TransportError struct {
	Scheme string
	URI    string
	Err    error
}

// Error returns the string representation of the TransportError.
func (e *TransportError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Scheme)
	sb.WriteString(" transport failed for ")
	sb.WriteString(e.URI)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
