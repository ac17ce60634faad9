// Package config holds the engine's configuration: page geometry, pool
// sizing, pagination tuning, and offload settings.
//
// The content capacity of a page is derived in exactly one place,
// Geometry.ContentCapacity. No other package re-derives it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration with TOML text (un)marshalling,
// so config files can say `task_timeout = "10s"`.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Geometry describes the fixed page box. All values are CSS pixels.
type Geometry struct {
	PageHeightPx     int `toml:"page_height_px"`
	PageWidthPx      int `toml:"page_width_px"`
	MarginPx         int `toml:"margin_px"`
	FooterReservePx  int `toml:"footer_reserve_px"`
	ContentPaddingPx int `toml:"content_padding_px"`
}

// ContentCapacity returns the usable content height of a page.
// This is the single authoritative derivation of the capacity constant.
func (g Geometry) ContentCapacity() int {
	return g.PageHeightPx - 2*g.MarginPx - g.FooterReservePx - g.ContentPaddingPx
}

// Pool configures page-pool sizing and growth.
type Pool struct {
	// PreloadCount is how many descriptors the pool starts with.
	PreloadCount int `toml:"preload_count"`
	// ExpandThreshold is the visible count at which growth is considered.
	ExpandThreshold int `toml:"expand_threshold"`
	// ExpandBatch is how many descriptors each expansion appends.
	ExpandBatch int `toml:"expand_batch"`
}

// Pagination configures overflow detection and merge planning.
type Pagination struct {
	// MaxAttempts caps automatic split passes per page before halting.
	MaxAttempts int `toml:"max_attempts"`
	// OverflowBufferPx is subtracted from capacity when detecting overflow,
	// preventing flapping exactly at the boundary.
	OverflowBufferPx int `toml:"overflow_buffer_px"`
	// MergeBufferPx is the safety margin required before pulling nodes up.
	MergeBufferPx int `toml:"merge_buffer_px"`
	// FallbackNodeHeightPx estimates a node the layout probe cannot see.
	FallbackNodeHeightPx int `toml:"fallback_node_height_px"`
}

// Offload configures the background task channel.
type Offload struct {
	// TaskTimeout bounds each offloaded task before synchronous fallback.
	TaskTimeout Duration `toml:"task_timeout"`
	// QueueSize is the worker channel's request buffer.
	QueueSize int `toml:"queue_size"`
}

// Logging configures the engine logger.
type Logging struct {
	Level string `toml:"level"`
}

// Config is the full engine configuration.
type Config struct {
	Geometry   Geometry   `toml:"geometry"`
	Pool       Pool       `toml:"pool"`
	Pagination Pagination `toml:"pagination"`
	Offload    Offload    `toml:"offload"`
	Logging    Logging    `toml:"logging"`
}

// Default returns the built-in configuration: an A4-like page at 96dpi with
// the stock pool and pagination tuning.
func Default() Config {
	return Config{
		Geometry: Geometry{
			PageHeightPx:     1123,
			PageWidthPx:      794,
			MarginPx:         60,
			FooterReservePx:  40,
			ContentPaddingPx: 20,
		},
		Pool: Pool{
			PreloadCount:    5,
			ExpandThreshold: 4,
			ExpandBatch:     5,
		},
		Pagination: Pagination{
			MaxAttempts:          3,
			OverflowBufferPx:     10,
			MergeBufferPx:        20,
			FallbackNodeHeightPx: 80,
		},
		Offload: Offload{
			TaskTimeout: Duration(10 * time.Second),
			QueueSize:   64,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads TOML configuration from path, layered over Default, then
// applies PAGEFLOW_* environment overrides and validates. A missing file is
// not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays PAGEFLOW_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("PAGEFLOW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PAGEFLOW_TASK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Offload.TaskTimeout = Duration(d)
		}
	}
	if v := os.Getenv("PAGEFLOW_POOL_PRELOAD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Pool.PreloadCount = n
		}
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.Geometry.ContentCapacity() <= 0 {
		return fmt.Errorf("%w: content capacity %d", ErrInvalidGeometry, c.Geometry.ContentCapacity())
	}
	if c.Geometry.PageWidthPx <= 0 {
		return fmt.Errorf("%w: page width %d", ErrInvalidGeometry, c.Geometry.PageWidthPx)
	}
	if c.Pool.PreloadCount < 1 {
		return fmt.Errorf("%w: preload count %d", ErrInvalidPool, c.Pool.PreloadCount)
	}
	if c.Pool.ExpandBatch < 1 {
		return fmt.Errorf("%w: expand batch %d", ErrInvalidPool, c.Pool.ExpandBatch)
	}
	if c.Pool.ExpandThreshold < 1 {
		return fmt.Errorf("%w: expand threshold %d", ErrInvalidPool, c.Pool.ExpandThreshold)
	}
	if c.Pagination.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts %d", ErrInvalidPagination, c.Pagination.MaxAttempts)
	}
	if c.Pagination.OverflowBufferPx < 0 || c.Pagination.MergeBufferPx < 0 {
		return fmt.Errorf("%w: negative buffer", ErrInvalidPagination)
	}
	if c.Pagination.FallbackNodeHeightPx <= 0 {
		return fmt.Errorf("%w: fallback node height %d", ErrInvalidPagination, c.Pagination.FallbackNodeHeightPx)
	}
	if c.Offload.TaskTimeout.Std() <= 0 {
		return fmt.Errorf("%w: task timeout %s", ErrInvalidOffload, c.Offload.TaskTimeout.Std())
	}
	if c.Offload.QueueSize < 1 {
		return fmt.Errorf("%w: queue size %d", ErrInvalidOffload, c.Offload.QueueSize)
	}
	return nil
}
