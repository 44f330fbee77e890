package keytree

// Options configures behavior shared by all engines.
type Options struct {
	logger Logger
}

// DefaultOptions returns the default configuration: no logging.
func DefaultOptions() Options {
	return Options{
		logger: DiscardLogger{},
	}
}

// Option configures a tree using the functional options pattern.
type Option func(*Options)

// WithLogger attaches a logger to the tree. The engines are silent
// during normal operation; only Check reports through the logger when
// it finds a violated invariant.
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		opts.logger = l
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
