package lmdiskann

import "github.com/mantzaris/lmdiskann/keystore"

// Options configures a newly created or reopened index. Construct via
// DefaultOptions and override with the With* setters, matching the
// functional-option conventions used elsewhere in this codebase's index
// builders.
type Options struct {
	// MaxDegree bounds the number of out-edges stored per node.
	MaxDegree int
	// EFConstruction is the traversal bound used during insertion to
	// discover candidate neighbors.
	EFConstruction int
	// EFSearch is the default traversal bound used during Search when the
	// caller's topk is smaller than it.
	EFSearch int
	// GrowthFloor is the minimum number of additional slots added every
	// time the mapped files must grow.
	GrowthFloor int
	// DiversifyPrune enables the RNG-style diversifying prune instead of
	// the default distance-to-owner prune. See the pruning-criterion
	// decision in DESIGN.md; off by default.
	DiversifyPrune bool
	// Alpha is the diversification aggressiveness used only when
	// DiversifyPrune is enabled; must be >= 1.0.
	Alpha float64
	// Logger receives structured logs for every operation. Defaults to a
	// NoopLogger.
	Logger *Logger
	// KeyStore overrides the forward/reverse key dictionary. Defaults to a
	// Badger-backed store rooted alongside the index's other files; pass
	// keystore.NewMemory() for tests or for callers who only ever address
	// points by their numeric external ID.
	KeyStore keystore.Store
}

// DefaultOptions returns the tunables this implementation ships with.
func DefaultOptions() Options {
	return Options{
		MaxDegree:      48,
		EFConstruction: 300,
		EFSearch:       150,
		GrowthFloor:    1024,
		DiversifyPrune: false,
		Alpha:          1.2,
		Logger:         NoopLogger(),
	}
}

// Option mutates an Options value during index creation.
type Option func(*Options)

// WithMaxDegree overrides the per-node out-degree bound.
func WithMaxDegree(d int) Option { return func(o *Options) { o.MaxDegree = d } }

// WithEFConstruction overrides the insertion-time traversal bound.
func WithEFConstruction(ef int) Option { return func(o *Options) { o.EFConstruction = ef } }

// WithEFSearch overrides the default query-time traversal bound.
func WithEFSearch(ef int) Option { return func(o *Options) { o.EFSearch = ef } }

// WithGrowthFloor overrides the minimum slot-count added per file growth.
func WithGrowthFloor(n int) Option { return func(o *Options) { o.GrowthFloor = n } }

// WithDiversifyPrune enables or disables RNG-style diversifying pruning.
func WithDiversifyPrune(enabled bool) Option { return func(o *Options) { o.DiversifyPrune = enabled } }

// WithAlpha sets the diversification aggressiveness for diversifying pruning.
func WithAlpha(alpha float64) Option { return func(o *Options) { o.Alpha = alpha } }

// WithLogger overrides the index's Logger.
func WithLogger(l *Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithKeyStore overrides the index's forward/reverse key dictionary,
// e.g. with keystore.NewMemory() in place of the default Badger store.
func WithKeyStore(s keystore.Store) Option {
	return func(o *Options) { o.KeyStore = s }
}

func buildOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
