package pkgmap

import "github.com/go-playground/validator/v10"

// config holds construction-time configuration for Load and FromMap.
type config struct {
	dotenvFiles []string
	expandEnv   bool
	validator   *validator.Validate
}

// Option configures package map loading.
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{
		expandEnv: true,
		validator: validator.New(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithDotenv loads the given dotenv files into the environment before
// ${VAR} expansion of mapped root URIs. Files that do not exist are
// skipped.
func WithDotenv(files ...string) Option {
	return func(c *config) {
		c.dotenvFiles = append(c.dotenvFiles, files...)
	}
}

// WithExpandEnv enables or disables ${VAR} expansion in mapped root URIs.
// Expansion is enabled by default.
func WithExpandEnv(enabled bool) Option {
	return func(c *config) {
		c.expandEnv = enabled
	}
}

// WithValidator sets a custom validator instance for package map
// validation. Use this to apply custom validation rules or tags.
func WithValidator(v *validator.Validate) Option {
	return func(c *config) {
		if v != nil {
			c.validator = v
		}
	}
}
