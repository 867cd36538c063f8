package stocktake

// Config holds policy configuration for the reconciliation engine.
type Config struct {
	// PageSize is the fixed page size for paginated item views.
	PageSize int `mapstructure:"page_size" default:"20"`

	// CountMissingAsZero controls completion of sessions with uncounted
	// items. When false (default), uncounted items emit no stock
	// adjustment. When true, they are treated as counted zero and the
	// full expected quantity is adjusted away.
	CountMissingAsZero bool `mapstructure:"count_missing_as_zero" default:"false"`
}

// EffectivePageSize returns the configured page size, falling back to the
// default when unset or out of range.
func (c Config) EffectivePageSize() int {
	if c.PageSize <= 0 || c.PageSize > 500 {
		return 20
	}
	return c.PageSize
}
