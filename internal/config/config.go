package config

import (
	"fmt"
	"strings"
)

// Default threshold values. These match the behavior of common desktop
// tiling extensions: a 10px edge tolerance keeps neighbor detection stable
// across WM-imposed geometry nudges, and 50px of projected overlap filters
// out diagonal near-misses.
const (
	DefaultInnerGap          = 8
	DefaultOuterGap          = 8
	DefaultSnapThreshold     = 30
	DefaultMinWindowWidth    = 200
	DefaultMinWindowHeight   = 150
	DefaultNeighborOverlap   = 50
	DefaultEdgeTolerance     = 10
	DefaultBoundaryThreshold = 20
	DefaultPollIntervalMS    = 50
)

// LoggingConfig controls daemon log output.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error.
	Level string `yaml:"level,omitempty"`
	// File is an optional log file path; empty logs to stderr.
	File string `yaml:"file,omitempty"`
}

// Config is the effective snaptile configuration.
type Config struct {
	// InnerGap is the pixel gap between adjacent tiled windows.
	InnerGap int `yaml:"inner_gap"`
	// OuterGap is the pixel gap between tiled windows and the work area edge.
	OuterGap int `yaml:"outer_gap"`
	// SnapThreshold is the distance from a work-area edge (in pixels) at
	// which a dragged window activates an edge snap zone.
	SnapThreshold int `yaml:"snap_threshold"`
	// MinWindowWidth is the floor below which no planner shrinks a window.
	MinWindowWidth int `yaml:"min_window_width"`
	// MinWindowHeight is the vertical counterpart of MinWindowWidth.
	MinWindowHeight int `yaml:"min_window_height"`
	// NeighborOverlapMin is the minimum projected overlap (pixels) for two
	// windows to count as neighbors.
	NeighborOverlapMin int `yaml:"neighbor_overlap_min"`
	// EdgeTolerance is the maximum distance between facing edges for
	// neighbor classification.
	EdgeTolerance int `yaml:"edge_tolerance"`
	// BoundaryThreshold is the cursor distance from a window edge that
	// qualifies as an insert-seam hit during a drag.
	BoundaryThreshold int `yaml:"boundary_threshold"`
	// PollIntervalMS is the drag/resize polling cadence in milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`
	// ExcludedApps lists WM_CLASS values that never enter the registry.
	ExcludedApps []string `yaml:"excluded_apps,omitempty"`

	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// Default returns a config populated with default values.
func Default() *Config {
	return &Config{
		InnerGap:           DefaultInnerGap,
		OuterGap:           DefaultOuterGap,
		SnapThreshold:      DefaultSnapThreshold,
		MinWindowWidth:     DefaultMinWindowWidth,
		MinWindowHeight:    DefaultMinWindowHeight,
		NeighborOverlapMin: DefaultNeighborOverlap,
		EdgeTolerance:      DefaultEdgeTolerance,
		BoundaryThreshold:  DefaultBoundaryThreshold,
		PollIntervalMS:     DefaultPollIntervalMS,
		Logging:            LoggingConfig{Level: "info"},
	}
}

// applyDefaults fills zero-valued fields after a partial yaml load.
func (c *Config) applyDefaults() {
	d := Default()
	if c.InnerGap == 0 {
		c.InnerGap = d.InnerGap
	}
	if c.OuterGap == 0 {
		c.OuterGap = d.OuterGap
	}
	if c.SnapThreshold == 0 {
		c.SnapThreshold = d.SnapThreshold
	}
	if c.MinWindowWidth == 0 {
		c.MinWindowWidth = d.MinWindowWidth
	}
	if c.MinWindowHeight == 0 {
		c.MinWindowHeight = d.MinWindowHeight
	}
	if c.NeighborOverlapMin == 0 {
		c.NeighborOverlapMin = d.NeighborOverlapMin
	}
	if c.EdgeTolerance == 0 {
		c.EdgeTolerance = d.EdgeTolerance
	}
	if c.BoundaryThreshold == 0 {
		c.BoundaryThreshold = d.BoundaryThreshold
	}
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = d.PollIntervalMS
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.InnerGap < 0 {
		return fmt.Errorf("inner_gap must be >= 0, got %d", c.InnerGap)
	}
	if c.OuterGap < 0 {
		return fmt.Errorf("outer_gap must be >= 0, got %d", c.OuterGap)
	}
	if c.SnapThreshold < 1 {
		return fmt.Errorf("snap_threshold must be >= 1, got %d", c.SnapThreshold)
	}
	if c.MinWindowWidth < 1 {
		return fmt.Errorf("min_window_width must be >= 1, got %d", c.MinWindowWidth)
	}
	if c.MinWindowHeight < 1 {
		return fmt.Errorf("min_window_height must be >= 1, got %d", c.MinWindowHeight)
	}
	if c.NeighborOverlapMin < 1 {
		return fmt.Errorf("neighbor_overlap_min must be >= 1, got %d", c.NeighborOverlapMin)
	}
	if c.EdgeTolerance < 0 {
		return fmt.Errorf("edge_tolerance must be >= 0, got %d", c.EdgeTolerance)
	}
	if c.BoundaryThreshold < 1 {
		return fmt.Errorf("boundary_threshold must be >= 1, got %d", c.BoundaryThreshold)
	}
	if c.PollIntervalMS < 10 {
		return fmt.Errorf("poll_interval_ms must be >= 10, got %d", c.PollIntervalMS)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

// IsExcluded reports whether the given WM_CLASS is excluded from tiling.
// Matching is case-insensitive.
func (c *Config) IsExcluded(appID string) bool {
	appID = strings.ToLower(strings.TrimSpace(appID))
	if appID == "" {
		return false
	}
	for _, excluded := range c.ExcludedApps {
		if strings.ToLower(strings.TrimSpace(excluded)) == appID {
			return true
		}
	}
	return false
}
