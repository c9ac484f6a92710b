// Package app wires configuration, schema ingestion, the generation engine,
// and output writing into the command line tool.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"schemaforge/internal/config"
	"schemaforge/internal/engine"
	"schemaforge/internal/generator"
	"schemaforge/internal/generator/gogen"
	"schemaforge/internal/generator/gqlgen"
	"schemaforge/internal/generator/javagen"
	"schemaforge/internal/generator/tsgen"
	"schemaforge/internal/ingest"
	"schemaforge/internal/introspect"
	"schemaforge/internal/logging"
	"schemaforge/internal/naming"
	"schemaforge/internal/observability"
	"schemaforge/internal/schema"
)

// writeConcurrency bounds the file-writing fan-out per target.
const writeConcurrency = 8

// App holds the wired tool components.
type App struct {
	cfg      *config.Config
	logger   *logging.Logger
	namer    *naming.Namer
	registry *generator.Registry
	engine   *engine.Engine

	tracerProvider *observability.TracerProvider
	loggerProvider *observability.LoggerProvider
}

// InitLogger creates the tool logger and, when log exports are enabled, the
// OTLP logger provider feeding it.
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	if !cfg.Observability.Logging.ExportsEnabled {
		return logger, nil, nil
	}

	logger.Info("initializing OpenTelemetry logging",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("otlp_endpoint", cfg.Observability.OTLP.Endpoint),
		slog.Bool("insecure", cfg.Observability.OTLP.Insecure),
	)

	loggerProvider, err := observability.InitLoggerProvider(context.Background(), observabilityConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	logger = logging.NewLogger(logging.Config{
		Level:          cfg.Observability.Logging.Level,
		Format:         cfg.Observability.Logging.Format,
		LoggerProvider: loggerProvider.Provider(),
	})
	slog.SetDefault(logger.Logger)
	return logger, loggerProvider, nil
}

func observabilityConfig(cfg *config.Config) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLPConfig: observability.OTLPExporterConfig{
			Endpoint: cfg.Observability.OTLP.Endpoint,
			Insecure: cfg.Observability.OTLP.Insecure,
			Headers:  cfg.Observability.OTLP.Headers,
			Timeout:  cfg.Observability.OTLP.Timeout,
		},
	}
}

// New builds the application from validated configuration. Every built-in
// backend is registered; cfg.Generators.Defaults picks the framework used
// when a target names only a language.
func New(cfg *config.Config, logger *logging.Logger) *App {
	namer := naming.New(cfg.Naming, logger.Logger)

	registry := generator.NewRegistry(generator.WithDefaults(cfg.Generators.Defaults))
	registry.Register(gogen.New(namer))
	registry.Register(javagen.New(namer))
	registry.Register(tsgen.New(namer))
	registry.Register(gqlgen.New(namer))

	return &App{
		cfg:      cfg,
		logger:   logger,
		namer:    namer,
		registry: registry,
		engine:   engine.New(registry, namer, logger.Logger),
	}
}

// AttachLoggerProvider hands the app the OTLP logger provider so Shutdown can
// flush it.
func (a *App) AttachLoggerProvider(lp *observability.LoggerProvider) {
	a.loggerProvider = lp
}

// InitTracing starts the OTLP tracer provider when tracing is enabled.
func (a *App) InitTracing(ctx context.Context) error {
	if !a.cfg.Observability.TracingEnabled {
		return nil
	}
	tp, err := observability.InitTracerProvider(ctx, observabilityConfig(a.cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp
	return nil
}

// Shutdown flushes the telemetry providers.
func (a *App) Shutdown(ctx context.Context) {
	if a.tracerProvider != nil {
		_ = a.tracerProvider.Shutdown(ctx, a.logger.Logger)
	}
	if a.loggerProvider != nil {
		_ = a.loggerProvider.Shutdown(ctx, a.logger.Logger)
	}
}

// Run loads the schema from the configured source, generates every target,
// and writes the results under the output directory.
func (a *App) Run(ctx context.Context) error {
	s, err := a.loadSchema(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("schema loaded",
		slog.String("source", a.cfg.Input.Source),
		slog.Int("tables", len(s.Tables)),
	)

	targets := make([]engine.Target, 0, len(a.cfg.Targets))
	for _, t := range a.cfg.Targets {
		targets = append(targets, engine.Target{
			Language:  t.Language,
			Framework: t.Framework,
			Entities:  t.Entities,
			Options: generator.Options{
				Preset:    t.Preset,
				Overrides: t.Options,
			},
		})
	}

	result, err := a.engine.Run(ctx, s, targets)
	if err != nil {
		return err
	}

	failed := 0
	for _, tr := range result.Targets {
		logger := a.logger.WithFields(
			slog.String("language", tr.Language),
			slog.String("framework", tr.Framework),
		)
		if tr.Err != nil {
			failed++
			logger.Error("target failed", slog.String("error", tr.Err.Error()))
			continue
		}

		if a.cfg.Output.DryRun {
			for _, path := range tr.Files.Paths() {
				fmt.Println(filepath.Join(targetDir(tr.Language, tr.Framework), path))
			}
			continue
		}

		dir := filepath.Join(a.cfg.Output.Dir, targetDir(tr.Language, tr.Framework))
		if err := writeFiles(dir, tr.Files); err != nil {
			failed++
			logger.Error("writing target output failed", slog.String("error", err.Error()))
			continue
		}
		logger.Info("target written",
			slog.String("dir", dir),
			slog.Int("files", len(tr.Files)),
		)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(result.Targets))
	}
	return nil
}

func targetDir(language, framework string) string {
	if framework == "" {
		return language
	}
	return language + "-" + framework
}

func (a *App) loadSchema(ctx context.Context) (*schema.Schema, error) {
	switch a.cfg.Input.Source {
	case config.SourceDDL:
		src, err := readInput(a.cfg.Input.DDLFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read DDL input: %w", err)
		}
		return ingest.ParseDDL(ctx, src)

	case config.SourceAPISchema:
		data, err := readInput(a.cfg.Input.APISchemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API schema input: %w", err)
		}
		doc, err := ingest.ParseDocument([]byte(data))
		if err != nil {
			return nil, err
		}
		return ingest.NewConverter(a.namer).ConvertDocument(ctx, doc)

	case config.SourceDatabase:
		return a.introspectDatabase(ctx)

	default:
		return nil, fmt.Errorf("unknown input source %q", a.cfg.Input.Source)
	}
}

func (a *App) introspectDatabase(ctx context.Context) (*schema.Schema, error) {
	dsn, err := a.cfg.Database.DSN()
	if err != nil {
		return nil, err
	}
	target, err := a.cfg.Database.IntrospectionTarget()
	if err != nil {
		return nil, err
	}

	db, dialect, err := introspect.Connect(ctx, introspect.ConnectConfig{
		Driver:      a.cfg.Database.Driver,
		DSN:         dsn,
		Tracing:     a.cfg.Observability.TracingEnabled,
		MaxOpen:     a.cfg.Database.Pool.MaxOpen,
		MaxIdle:     a.cfg.Database.Pool.MaxIdle,
		MaxLifetime: a.cfg.Database.Pool.MaxLifetime,
		PingTimeout: a.cfg.Database.PingTimeout,
	})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return introspect.New(db, dialect, introspect.WithLogger(a.logger.Logger)).Introspect(ctx, target)
}

func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "@-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeFiles materializes one target's path/content map under dir.
func writeFiles(dir string, files generator.Files) error {
	var g errgroup.Group
	g.SetLimit(writeConcurrency)

	for _, relPath := range files.Paths() {
		content := files[relPath]
		dest := filepath.Join(dir, filepath.FromSlash(relPath))
		g.Go(func() error {
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("create directory for %s: %w", dest, err)
			}
			if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
			return nil
		})
	}
	return g.Wait()
}
