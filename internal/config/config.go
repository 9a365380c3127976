package config

// Config represents the full application configuration.
type Config struct {
	Git           GitConfig           `yaml:"git"`
	Output        OutputConfig        `yaml:"output"`
	Trim          TrimConfig          `yaml:"trim"`
	Store         StoreConfig         `yaml:"store"`
	Knowledge     KnowledgeConfig     `yaml:"knowledge"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// TrimConfig tunes how aggressively untouched diff content is elided from
// the reply.
type TrimConfig struct {
	// AdjacentMode controls whether hunks neighbouring a discussed hunk
	// are quoted in full: auto, always, never.
	AdjacentMode string `yaml:"adjacentMode"`

	// LargeHunkLines is the size above which a discussed hunk is quoted
	// partially rather than in full.
	LargeHunkLines int `yaml:"largeHunkLines"`

	// KeepHeadLines is how many leading lines of a partially quoted hunk
	// survive for orientation.
	KeepHeadLines int `yaml:"keepHeadLines"`

	// RelevantPadLines is the context radius kept around the discussed
	// lines of a partially quoted hunk.
	RelevantPadLines int `yaml:"relevantPadLines"`
}

// StoreConfig configures the report archive. Enabled is a pointer so an
// overlay can carry an explicit "false" distinct from "not set".
type StoreConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// IsEnabled reports whether the archive is switched on. An unset value
// counts as disabled; the loader's defaults always set it.
func (s StoreConfig) IsEnabled() bool {
	return s.Enabled != nil && *s.Enabled
}

// KnowledgeConfig points at the per-subsystem review notes directory.
type KnowledgeConfig struct {
	Dir string `yaml:"dir"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures diagnostic logging. Logs go to stderr so the
// reply body on stdout stays clean for piping.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // json, human
}

// Merge combines multiple configuration instances, prioritising the latter
// ones. The CLI uses it to overlay flag-derived settings on the file
// configuration.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Git = chooseGit(base.Git, overlay.Git)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Trim = chooseTrim(base.Trim, overlay.Trim)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Knowledge = chooseKnowledge(base.Knowledge, overlay.Knowledge)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseGit(base, overlay GitConfig) GitConfig {
	if overlay.RepositoryDir != "" {
		return overlay
	}
	return base
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseTrim(base, overlay TrimConfig) TrimConfig {
	result := base
	if overlay.AdjacentMode != "" {
		result.AdjacentMode = overlay.AdjacentMode
	}
	if overlay.LargeHunkLines != 0 {
		result.LargeHunkLines = overlay.LargeHunkLines
	}
	if overlay.KeepHeadLines != 0 {
		result.KeepHeadLines = overlay.KeepHeadLines
	}
	if overlay.RelevantPadLines != 0 {
		result.RelevantPadLines = overlay.RelevantPadLines
	}
	return result
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	result := base
	if overlay.Enabled != nil {
		result.Enabled = overlay.Enabled
	}
	if overlay.Path != "" {
		result.Path = overlay.Path
	}
	return result
}

func chooseKnowledge(base, overlay KnowledgeConfig) KnowledgeConfig {
	if overlay.Dir != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
