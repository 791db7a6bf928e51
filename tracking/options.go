package tracking

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
}

// Option customizes trackers and pipelines
type Option func(*options)

// WithLogger sets the logger used for per-frame progress. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
