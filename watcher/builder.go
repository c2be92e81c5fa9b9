package watcher

import (
	"time"

	"github.com/arloliu/resio"
)

// Builder provides a fluent API for constructing a Watcher.
type Builder struct {
	config watcherConfig
	loader resio.Loader
	uri    string
}

// New creates a new watcher Builder.
func New() *Builder {
	return &Builder{
		config: watcherConfig{
			pollInterval:     defaultPollInterval,
			debounceInterval: defaultDebounceInterval,
		},
	}
}

// ForURI sets the resource URI to watch.
func (b *Builder) ForURI(uri string) *Builder {
	b.uri = uri
	return b
}

// WithLoader sets the loader used to fetch the resource. By default the
// process-wide resio.Default loader is used.
func (b *Builder) WithLoader(l resio.Loader) *Builder {
	b.loader = l
	return b
}

// WithPollInterval sets the polling interval used for resources that
// cannot be watched through the filesystem.
func (b *Builder) WithPollInterval(d time.Duration) *Builder {
	if d > 0 {
		b.config.pollInterval = d
	}
	return b
}

// WithDebounceInterval sets the quiet period collapsing bursts of change
// events into a single reload.
func (b *Builder) WithDebounceInterval(d time.Duration) *Builder {
	if d > 0 {
		b.config.debounceInterval = d
	}
	return b
}

// Build constructs the Watcher.
func (b *Builder) Build() (*Watcher, error) {
	if b.uri == "" {
		return nil, &Error{Message: "no URI to watch"}
	}

	loader := b.loader
	if loader == nil {
		loader = resio.Default
	}

	return &Watcher{
		loader: loader,
		uri:    b.uri,
		config: b.config,
	}, nil
}
