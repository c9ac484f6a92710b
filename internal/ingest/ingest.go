// Package ingest contains the schema front-ends. Each front-end parses one
// input format into the canonical model; a malformed or self-contradictory
// document aborts the whole conversion with a schema.Error, never a partial
// result. The front-ends share the primary-key synthesis and foreign-key
// naming rules so every downstream component sees identical structure
// regardless of input format.
package ingest

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// synthesizedPrimaryKey returns the id column added to tables whose input
// declares no primary key: a wide integer with auto-increment.
func synthesizedPrimaryKey() schema.Column {
	return schema.Column{
		Name:          "id",
		Kind:          scalar.KindBigInt,
		RawType:       "bigint",
		PrimaryKey:    true,
		AutoIncrement: true,
	}
}

// ensurePrimaryKey prepends a synthesized id column when the table has none.
func ensurePrimaryKey(t *schema.Table) {
	if len(schema.PrimaryKeyColumns(*t)) > 0 {
		return
	}
	t.Columns = append([]schema.Column{synthesizedPrimaryKey()}, t.Columns...)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("schemaforge/ingest")
	return tracer.Start(ctx, name)
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
