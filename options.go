package bitcask

// Option configures a Store at Open time, following the functional-options
// shape the teacher package uses for its Config.
type Option func(*Options)

// Options holds the tunables Open accepts.
type Options struct {
	// InitialLength is the initial size in bytes of the mapped log file.
	InitialLength int64

	// CacheSize is the number of hot values kept in the LRU cache.
	CacheSize int

	// GrowthFactor is the multiplicative factor applied to the mapping
	// when it must grow. Must be >= 2.
	GrowthFactor int64

	// Sync forces an fsync of the mapping after every append.
	Sync bool
}

// DefaultInitialLength is the size a freshly created log file is grown to.
const DefaultInitialLength = 8 * 1024

// DefaultCacheSize is the default LRU cache capacity.
const DefaultCacheSize = 1024

// DefaultGrowthFactor is the default mapping growth multiplier.
const DefaultGrowthFactor = 2

// DefaultOptions returns the Options Open uses when no overrides are given.
func DefaultOptions() Options {
	return Options{
		InitialLength: DefaultInitialLength,
		CacheSize:     DefaultCacheSize,
		GrowthFactor:  DefaultGrowthFactor,
		Sync:          false,
	}
}

// WithInitialLength sets the initial mapped log size.
func WithInitialLength(n int64) Option {
	return func(o *Options) {
		o.InitialLength = n
	}
}

// WithCacheSize sets the hot-value LRU cache capacity.
func WithCacheSize(n int) Option {
	return func(o *Options) {
		o.CacheSize = n
	}
}

// WithGrowthFactor sets the mapping growth multiplier. Values below 2 are
// clamped to 2 at Open time to preserve amortised O(1) growth.
func WithGrowthFactor(n int64) Option {
	return func(o *Options) {
		o.GrowthFactor = n
	}
}

// WithSync forces an fsync of the mapping after every append.
func WithSync(sync bool) Option {
	return func(o *Options) {
		o.Sync = sync
	}
}
