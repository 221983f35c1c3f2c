package timeline

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithClutchWindow overrides the clutch thresholds: clock seconds remaining
// in the final period and the maximum absolute score difference.
func WithClutchWindow(clockSeconds float64, margin int) Option {
	return func(idx *Index) {
		if clockSeconds > 0 {
			idx.clutchClock = clockSeconds
		}
		if margin > 0 {
			idx.clutchMargin = margin
		}
	}
}
