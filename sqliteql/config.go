package sqliteql

import "log/slog"

// Config holds engine-wide options, assembled via functional options the
// way the teacher's DatabaseConfig/DatabaseOption pair does.
type Config struct {
	PageCache      bool
	MaxOpenPages   int
	StrictEncoding bool
	Logger         *slog.Logger
}

// Option configures a Config.
type Option func(*Config)

// WithPageCache enables the pager's per-query decoded-page cache for every
// query, not just the index-probe composite walks the walker always
// caches internally.
func WithPageCache(on bool) Option {
	return func(c *Config) {
		c.PageCache = on
	}
}

// WithMaxOpenPages records n in Config.MaxOpenPages (default 0). Mirrors
// the teacher's PageCacheSize knob. The engine does not read this value:
// queries are not limited in how many pages they read.
func WithMaxOpenPages(n int) Option {
	return func(c *Config) {
		c.MaxOpenPages = n
	}
}

// WithStrictEncoding controls whether a non-UTF-8 text_encoding header
// field is a fatal Unsupported open error (the default) or a logged
// warning that lets Open proceed anyway.
func WithStrictEncoding(strict bool) Option {
	return func(c *Config) {
		c.StrictEncoding = strict
	}
}

// WithLogger installs a structured logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func defaultConfig() *Config {
	return &Config{
		PageCache:      false,
		MaxOpenPages:   0,
		StrictEncoding: true,
		Logger:         slog.Default(),
	}
}

func buildConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
