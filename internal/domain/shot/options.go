package shot

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithThresholds replaces the default zone policy table.
func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		if t.CourtWidth > 0 && t.CourtLength > 0 {
			c.t = t
		}
	}
}
