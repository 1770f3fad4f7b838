package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	watch  bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithWatch keeps the process alive and re-syncs on file changes
// instead of exiting after one pass.
func WithWatch() Option {
	return func(a *application) {
		a.watch = true
	}
}
