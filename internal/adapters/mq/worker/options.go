package worker

import (
	"time"

	"github.com/courtlytics/pbp/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithSinkTimeout bounds the per-game persistence write.
func WithSinkTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.sinkTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}
