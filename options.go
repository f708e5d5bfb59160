package squish

import "log/slog"

// Option configures NewWriter, Compress, and Decompress.
type Option func(*config)

// config holds configuration shared by compression and decompression.
type config struct {
	compression Compression
	blockSize   int
	level       int
	logger      *slog.Logger
	observers   []Observer
}

func newConfig(opts []Option) *config {
	cfg := &config{
		compression: GzipCompression(), // default
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithBlockSize sets the uncompressed size of each block.
// Values <= 0 select DefaultBlockSize.
func WithBlockSize(size int) Option {
	return func(c *config) {
		c.blockSize = size
	}
}

// WithCompression sets the compression algorithm (gzip or zstd).
func WithCompression(compression Compression) Option {
	return func(c *config) {
		if compression != nil {
			c.compression = compression
		}
	}
}

// WithLevel sets the codec-specific compression level. 0 selects the codec default.
func WithLevel(level int) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithLogger sets a logger. By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObservers registers observers before any event is raised.
func WithObservers(observers ...Observer) Option {
	return func(c *config) {
		c.observers = append(c.observers, observers...)
	}
}
