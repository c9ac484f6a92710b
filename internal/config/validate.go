package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Input.validate(result, &c.Database)
	c.validateTargets(result)
	c.Output.validate(result)
	c.Observability.validate(result)

	return result
}

func (i *InputConfig) validate(result *ValidationResult, db *DatabaseConfig) {
	switch i.Source {
	case SourceDDL:
		if strings.TrimSpace(i.DDLFile) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "input.ddl_file",
				Message: "required when input.source is \"ddl\"",
				Hint:    "pass --input.ddl_file schema.sql or @- for stdin",
			})
		}
	case SourceAPISchema:
		if strings.TrimSpace(i.APISchemaFile) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "input.api_schema_file",
				Message: "required when input.source is \"api-schema\"",
				Hint:    "pass --input.api_schema_file entities.yaml or @- for stdin",
			})
		}
	case SourceDatabase:
		db.validate(result)
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "input.source",
			Message: fmt.Sprintf("unknown source %q", i.Source),
			Hint:    "valid sources are ddl, api-schema, database",
		})
	}
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	switch d.Driver {
	case "mysql", "postgres":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unsupported driver %q", d.Driver),
			Hint:    "valid drivers are mysql, postgres",
		})
		return
	}

	if strings.TrimSpace(d.ConnectionString) == "" {
		if strings.TrimSpace(d.Host) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "database.host",
				Message: "required when database.dsn is not set",
			})
		}
		if d.Port < 1 || d.Port > 65535 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "database.port",
				Message: fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port),
			})
		}
	}

	if _, err := d.EffectiveDatabaseName(); err != nil && d.Driver == "mysql" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.database",
			Message: err.Error(),
		})
	}

	if d.Pool.MaxIdle > d.Pool.MaxOpen {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.pool.max_idle",
			Message: fmt.Sprintf("max_idle (%d) exceeds max_open (%d); idle connections above the open limit are discarded", d.Pool.MaxIdle, d.Pool.MaxOpen),
		})
	}
}

func (c *Config) validateTargets(result *ValidationResult) {
	if len(c.Targets) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "targets",
			Message: "at least one generation target is required",
			Hint:    "pass --target go/gin or add a targets section to the config file",
		})
		return
	}

	for i, t := range c.Targets {
		if strings.TrimSpace(t.Language) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("targets[%d].language", i),
				Message: "language cannot be empty",
			})
		}
		for _, entity := range t.Entities {
			if strings.TrimSpace(entity) == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fmt.Sprintf("targets[%d].entities", i),
					Message: "entity name cannot be empty",
				})
			}
		}
	}
}

func (o *OutputConfig) validate(result *ValidationResult) {
	if strings.TrimSpace(o.Dir) == "" && !o.DryRun {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "output.dir",
			Message: "output directory cannot be empty",
		})
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	switch strings.ToLower(o.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.level",
			Message: fmt.Sprintf("unknown log level %q", o.Logging.Level),
			Hint:    "valid levels are debug, info, warn, error",
		})
	}

	switch strings.ToLower(o.Logging.Format) {
	case "json", "text":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.format",
			Message: fmt.Sprintf("unknown log format %q", o.Logging.Format),
			Hint:    "valid formats are json, text",
		})
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.trace_sample_ratio",
			Message: fmt.Sprintf("sample ratio %v must be between 0.0 and 1.0", o.TraceSampleRatio),
		})
	}

	if o.TracingEnabled && strings.TrimSpace(o.OTLP.Endpoint) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.otlp.endpoint",
			Message: "required when tracing is enabled",
		})
	}
}
