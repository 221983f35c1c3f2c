package normalize

import "github.com/courtlytics/pbp/internal/domain/model"

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithKindMappings adds or overrides provider type-string to kind mappings.
// Keys are matched lowercase.
func WithKindMappings(mappings map[string]model.EventKind) Option {
	return func(n *Normalizer) {
		for key, kind := range mappings {
			n.kinds[key] = kind
		}
	}
}
