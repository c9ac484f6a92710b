// Package engine orchestrates a generation run: relationship resolution over
// an ingested schema, registry dispatch per requested target, and failure
// isolation so one backend cannot take down the rest of the run.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"schemaforge/internal/generator"
	"schemaforge/internal/naming"
	"schemaforge/internal/relation"
	"schemaforge/internal/schema"
	"schemaforge/internal/typemap"
)

// Target names one requested backend run.
type Target struct {
	Language string
	// Framework may be empty, selecting the language's default generator.
	Framework string
	Entities  []string
	Options   generator.Options
}

// TargetResult is the outcome of one target. Err is set on registry misses,
// generation errors, and recovered panics; Files is nil in those cases.
type TargetResult struct {
	Language  string
	Framework string
	Files     generator.Files
	Warnings  []string
	Err       error
}

// Result is the outcome of a whole run.
type Result struct {
	RunID   string
	Targets []TargetResult
}

// Engine wires the resolver, the registry, and the per-language type mappers.
type Engine struct {
	registry *generator.Registry
	namer    *naming.Namer
	logger   *slog.Logger
	// mappers drive pre-generation mapping-gap analysis per language.
	mappers map[string]typemap.Mapper
}

// New returns an Engine over the given registry and namer.
func New(registry *generator.Registry, namer *naming.Namer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		namer:    namer,
		logger:   logger,
		mappers: map[string]typemap.Mapper{
			"go":         typemap.GoMapper{},
			"java":       typemap.JavaMapper{},
			"typescript": typemap.TypeScriptMapper{},
			"graphql":    typemap.GraphQLMapper{},
		},
	}
}

// Run resolves relationships on s and generates every target. A schema that
// fails validation or resolution aborts the whole run before any generator
// executes; per-target failures are recorded in the result instead.
func (e *Engine) Run(ctx context.Context, s *schema.Schema, targets []Target) (*Result, error) {
	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID))

	ctx, span := startSpan(ctx, "engine.run",
		attribute.String("run.id", runID),
		attribute.Int("run.targets", len(targets)),
	)
	defer span.End()

	if err := s.Validate(); err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if err := relation.Resolve(ctx, s, e.namer); err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("relationship resolution: %w", err)
	}
	logger.Info("schema resolved",
		slog.Int("tables", len(s.Tables)),
		slog.Int("relationships", len(s.Relationships)),
	)

	result := &Result{RunID: runID}
	for _, target := range targets {
		result.Targets = append(result.Targets, e.runTarget(ctx, logger, s, target))
	}
	return result, nil
}

func (e *Engine) runTarget(ctx context.Context, logger *slog.Logger, s *schema.Schema, target Target) TargetResult {
	ctx, span := startSpan(ctx, "engine.target",
		attribute.String("target.language", target.Language),
		attribute.String("target.framework", target.Framework),
	)
	defer span.End()

	res := TargetResult{Language: target.Language, Framework: target.Framework}

	var gen generator.ProjectGenerator
	var ok bool
	if target.Framework == "" {
		gen, ok = e.registry.DefaultGenerator(target.Language)
	} else {
		gen, ok = e.registry.Generator(target.Language, target.Framework)
	}
	if !ok {
		res.Err = fmt.Errorf("no generator registered for %s/%s", target.Language, target.Framework)
		recordSpanError(span, res.Err)
		logger.Warn("registry miss",
			slog.String("language", target.Language),
			slog.String("framework", target.Framework),
		)
		return res
	}
	res.Framework = gen.Framework()

	res.Warnings = e.mappingWarnings(gen.Language(), s)
	for _, w := range res.Warnings {
		logger.Warn("mapping gap", slog.String("language", gen.Language()), slog.String("detail", w))
	}

	files, err := e.generate(ctx, gen, s, target)
	if err != nil {
		res.Err = err
		recordSpanError(span, err)
		logger.Error("generation failed",
			slog.String("language", gen.Language()),
			slog.String("framework", gen.Framework()),
			slog.String("error", err.Error()),
		)
		return res
	}
	res.Files = files
	span.SetAttributes(attribute.Int("target.files", len(files)))
	logger.Info("target generated",
		slog.String("language", gen.Language()),
		slog.String("framework", gen.Framework()),
		slog.Int("files", len(files)),
	)
	return res
}

// generate isolates one backend behind a recover boundary.
func (e *Engine) generate(ctx context.Context, gen generator.ProjectGenerator, s *schema.Schema, target Target) (files generator.Files, err error) {
	defer func() {
		if r := recover(); r != nil {
			files = nil
			err = fmt.Errorf("generator %s/%s panicked: %v", gen.Language(), gen.Framework(), r)
		}
	}()
	return gen.Generate(ctx, s, target.Entities, target.Options)
}

func (e *Engine) mappingWarnings(language string, s *schema.Schema) []string {
	mapper, ok := e.mappers[language]
	if !ok {
		return nil
	}
	gaps := typemap.FindGaps(mapper, s)
	warnings := make([]string, 0, len(gaps))
	for _, gap := range gaps {
		warnings = append(warnings, fmt.Sprintf(
			"column %s.%s has no %s mapping for kind %s, falling back to text",
			gap.Table, gap.Column, language, gap.Kind,
		))
	}
	return warnings
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("schemaforge/engine")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
