package layer

import (
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the number of features after which a transaction is committed and reopened.
	DefaultBatchSize = 10000
	// DefaultCacheSize is the SQLite page cache in MiB.
	DefaultCacheSize = 1024
)

// Options tune how a layer is written. Use DefaultOptions as the starting point.
type Options struct {
	// UseTransactions batches inserts in transactions of BatchSize features.
	UseTransactions bool `default:"true"`
	BatchSize       int  `default:"10000" validate:"min=1"`
	// CacheSize in MiB, see PRAGMA cache_size.
	CacheSize int `default:"1024" validate:"min=0"`
	// Synchronous keeps SQLite's synchronous commit on. Off by default for bulk loading.
	Synchronous bool
	JournalMode string `default:"MEMORY" validate:"oneof=DELETE TRUNCATE PERSIST MEMORY WAL OFF"`
	// SpatialIndex builds an RTree index once the layer is complete, never during inserts.
	SpatialIndex bool
	// Overwrite removes an existing target file instead of failing.
	Overwrite bool

	Logger *zap.Logger `validate:"-"`
}

// DefaultOptions returns Options with every default applied.
func DefaultOptions() Options {
	var o Options
	// only fails on non-struct pointers
	_ = defaults.Set(&o)
	return o
}

func (o Options) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(o)
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.L()
	}
	return o.Logger
}
