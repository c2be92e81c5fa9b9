package transport

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/afero"
)

// FileTransport serves file:// URIs from an afero filesystem.
type FileTransport struct {
	fs afero.Fs
}

// NewFileTransport creates a FileTransport backed by fs. If fs is nil,
// the OS filesystem is used.
func NewFileTransport(fs afero.Fs) *FileTransport {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &FileTransport{fs: fs}
}

// Fetch opens the file named by the URI path.
// Supports both file:///path and file://host/path formats; a non-empty
// host other than "localhost" is rejected since remote file URIs have no
// meaning here.
func (t *FileTransport) Fetch(ctx context.Context, u *url.URL) (*Resource, error) {
	if u.Host != "" && u.Host != "localhost" {
		return nil, fmt.Errorf("file URI with remote host %q is not supported", u.Host)
	}

	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return nil, fmt.Errorf("file URI %q has no path", u.String())
	}

	// Check context before touching the filesystem; afero reads do not
	// observe cancellation on their own.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := t.fs.Open(path)
	if err != nil {
		return nil, err
	}

	return &Resource{Body: f}, nil
}
