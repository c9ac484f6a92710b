// Package config loads and validates the tool configuration from flags,
// environment variables, and an optional YAML file.
package config

import (
	"time"

	"schemaforge/internal/naming"
)

// Config holds the full tool configuration.
type Config struct {
	Input         InputConfig         `mapstructure:"input"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Output        OutputConfig        `mapstructure:"output"`
	Targets       []TargetConfig      `mapstructure:"targets"`
	Generators    GeneratorsConfig    `mapstructure:"generators"`
	Naming        naming.Config       `mapstructure:"naming"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// Input source kinds.
const (
	SourceDDL       = "ddl"
	SourceAPISchema = "api-schema"
	SourceDatabase  = "database"
)

// InputConfig selects where the canonical schema comes from.
type InputConfig struct {
	// Source is one of "ddl", "api-schema", or "database".
	Source string `mapstructure:"source"`
	// DDLFile is the SQL DDL script to parse when Source is "ddl".
	// Supports "@-" to read from stdin.
	DDLFile string `mapstructure:"ddl_file"`
	// APISchemaFile is the JSON or YAML entity document to parse when
	// Source is "api-schema". Supports "@-" to read from stdin.
	APISchemaFile string `mapstructure:"api_schema_file"`
}

// PoolConfig holds connection pool parameters.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DatabaseConfig holds connection parameters for live introspection.
type DatabaseConfig struct {
	// Driver is "mysql" or "postgres".
	Driver string `mapstructure:"driver"`

	// ConnectionString is a complete DSN for the chosen driver. When set it
	// overrides the discrete Host/Port/User/Password/Database fields.
	// Configured via "dsn" in YAML or SFORGE_DATABASE_DSN.
	ConnectionString string `mapstructure:"dsn"`
	// ConnectionStringFile is a path to a file containing the DSN.
	// Supports "@-" to read from stdin.
	ConnectionStringFile string `mapstructure:"dsn_file"`

	// Discrete connection fields (used when DSN is not set)
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	PasswordFile   string `mapstructure:"password_file"`
	PasswordPrompt bool   `mapstructure:"password_prompt"`
	Database       string `mapstructure:"database"`
	// Schema is the namespace scanned on PostgreSQL; ignored for MySQL,
	// where the database itself is the namespace.
	Schema string `mapstructure:"schema"`

	Pool PoolConfig `mapstructure:"pool"`

	// PingTimeout is the max time to wait for the database on startup.
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
}

// OutputConfig controls where generated files land.
type OutputConfig struct {
	// Dir is the directory the per-target trees are written under.
	Dir string `mapstructure:"dir"`
	// DryRun lists the files each target would produce without writing them.
	DryRun bool `mapstructure:"dry_run"`
}

// TargetConfig describes one language/framework pairing to generate.
type TargetConfig struct {
	Language  string `mapstructure:"language"`
	// Framework may be empty, in which case the registry default for the
	// language is used.
	Framework string `mapstructure:"framework"`
	// Entities limits generation to the named tables; empty means all.
	Entities []string `mapstructure:"entities"`
	// Preset names a bundle of generator options.
	Preset string `mapstructure:"preset"`
	// Options are per-target overrides with the highest precedence.
	Options map[string]string `mapstructure:"options"`
}

// GeneratorsConfig tunes registry behavior.
type GeneratorsConfig struct {
	// Defaults maps a language to the framework used when a target leaves
	// the framework empty, e.g. {"go": "gin"}.
	Defaults map[string]string `mapstructure:"defaults"`
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level          string `mapstructure:"level"`           // debug, info, warn, error
	Format         string `mapstructure:"format"`          // json, text
	ExportsEnabled bool   `mapstructure:"exports_enabled"` // Enable OTLP log export
}

// OTLPConfig holds OTLP exporter configuration.
type OTLPConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
	Timeout  time.Duration     `mapstructure:"timeout"`
}

// ObservabilityConfig holds observability parameters.
type ObservabilityConfig struct {
	ServiceName      string        `mapstructure:"service_name"`
	ServiceVersion   string        `mapstructure:"service_version"`
	Environment      string        `mapstructure:"environment"`
	TracingEnabled   bool          `mapstructure:"tracing_enabled"`
	TraceSampleRatio float64       `mapstructure:"trace_sample_ratio"`
	Logging          LoggingConfig `mapstructure:"logging"`
	OTLP             OTLPConfig    `mapstructure:"otlp"`
}
