package similarity

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithColumns overrides the participating column set. Columns outside
// the known set are ignored.
func WithColumns(cols ...Column) Option {
	return func(e *Engine) {
		if len(cols) > 0 {
			e.columns = cols
		}
	}
}

// WithDefaultTopN sets the result count used when the caller passes a
// non-positive topN.
func WithDefaultTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultTopN = n
		}
	}
}
