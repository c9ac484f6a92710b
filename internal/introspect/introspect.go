// Package introspect discovers canonical schemas from a live database's
// INFORMATION_SCHEMA. It is one of the schema front-ends: the output feeds
// relationship resolution and code generation exactly like DDL or API-schema
// ingestion does.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// Queryer provides query access for schema introspection.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Introspector reads schema metadata through a single dialect.
type Introspector struct {
	db      Queryer
	dialect Dialect
	logger  *slog.Logger
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithLogger sets the logger used for introspection warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Introspector) {
		in.logger = logger
	}
}

// New returns an Introspector over db using the given dialect.
func New(db Queryer, dialect Dialect, opts ...Option) *Introspector {
	in := &Introspector{
		db:      db,
		dialect: dialect,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Introspect reads every base table in the named database (for Postgres, the
// named schema) and returns the canonical schema. The result is validated but
// relationships are not yet resolved.
func (in *Introspector) Introspect(ctx context.Context, database string) (*schema.Schema, error) {
	ctx, span := startSpan(ctx, "introspect.database",
		attribute.String("db.name", database),
		attribute.String("db.dialect", in.dialect.Name()),
	)
	defer span.End()

	names, err := in.tableNames(ctx, database)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if len(names) == 0 {
		err := &schema.Error{Source: in.dialect.Name(), Reason: fmt.Sprintf("database %q has no tables", database)}
		recordSpanError(span, err)
		return nil, err
	}

	s := &schema.Schema{}
	for _, ti := range names {
		table, err := in.introspectTable(ctx, database, ti)
		if err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("introspect table %s: %w", ti.name, err)
		}
		s.Tables = append(s.Tables, *table)
	}

	if err := s.Validate(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("schema.tables", len(s.Tables)))
	return s, nil
}

type tableInfo struct {
	name    string
	comment string
}

func (in *Introspector) tableNames(ctx context.Context, database string) ([]tableInfo, error) {
	query, args, err := in.dialect.TablesQuery(database)
	if err != nil {
		return nil, err
	}
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var tables []tableInfo
	for rows.Next() {
		var ti tableInfo
		var comment sql.NullString
		if err := rows.Scan(&ti.name, &comment); err != nil {
			return nil, err
		}
		if comment.Valid {
			ti.comment = strings.TrimSpace(comment.String)
		}
		tables = append(tables, ti)
	}
	return tables, rows.Err()
}

func (in *Introspector) introspectTable(ctx context.Context, database string, ti tableInfo) (*schema.Table, error) {
	ctx, span := startSpan(ctx, "introspect.table",
		attribute.String("db.table", ti.name),
	)
	defer span.End()

	columns, err := in.columns(ctx, database, ti.name)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	primaryKeys, err := in.primaryKeys(ctx, database, ti.name)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	foreignKeys, err := in.foreignKeys(ctx, database, ti.name)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	indexes, err := in.indexes(ctx, database, ti.name)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	for i := range columns {
		for _, pk := range primaryKeys {
			if columns[i].Name == pk {
				columns[i].PrimaryKey = true
				break
			}
		}
	}
	markUniqueColumns(columns, indexes)

	return &schema.Table{
		Name:        ti.name,
		Comment:     ti.comment,
		Columns:     columns,
		ForeignKeys: foreignKeys,
		Indexes:     indexes,
	}, nil
}

func (in *Introspector) columns(ctx context.Context, database, table string) ([]schema.Column, error) {
	query, args, err := in.dialect.ColumnsQuery(database, table)
	if err != nil {
		return nil, err
	}
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var columns []schema.Column
	for rows.Next() {
		var name, dataType, isNullable string
		var columnType, comment, columnDefault, extra sql.NullString
		if err := rows.Scan(&name, &dataType, &columnType, &comment, &isNullable, &columnDefault, &extra); err != nil {
			return nil, err
		}

		rawType := dataType
		if columnType.Valid && columnType.String != "" {
			rawType = columnType.String
		}
		kind, known := scalar.ParseSQL(rawType)
		if !known {
			in.logger.Warn("column type has no canonical kind, treating as text",
				slog.String("table", table),
				slog.String("column", name),
				slog.String("type", rawType),
			)
		}

		col := schema.Column{
			Name:     name,
			Kind:     kind,
			RawType:  rawType,
			Nullable: strings.EqualFold(isNullable, "YES"),
		}
		if comment.Valid {
			col.Comment = strings.TrimSpace(comment.String)
		}
		if columnDefault.Valid {
			col.HasDefault = true
			col.Default = columnDefault.String
		}
		if extra.Valid && strings.Contains(strings.ToLower(extra.String), "auto_increment") {
			col.AutoIncrement = true
		}
		if kind == scalar.KindEnum {
			values, err := scalar.ParseEnumValues(rawType)
			if err != nil {
				in.logger.Warn("failed to parse enum values",
					slog.String("table", table),
					slog.String("column", name),
					slog.String("type", rawType),
					slog.String("error", err.Error()),
				)
			} else {
				col.EnumValues = values
			}
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (in *Introspector) primaryKeys(ctx context.Context, database, table string) ([]string, error) {
	query, args, err := in.dialect.PrimaryKeyQuery(database, table)
	if err != nil {
		return nil, err
	}
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var primaryKeys []string
	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			return nil, err
		}
		primaryKeys = append(primaryKeys, columnName)
	}
	return primaryKeys, rows.Err()
}

func (in *Introspector) foreignKeys(ctx context.Context, database, table string) ([]schema.ForeignKey, error) {
	query, args, err := in.dialect.ForeignKeysQuery(database, table)
	if err != nil {
		return nil, err
	}
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var foreignKeys []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		var ordinal int
		if err := rows.Scan(&fk.ColumnName, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.ConstraintName, &ordinal); err != nil {
			return nil, err
		}
		foreignKeys = append(foreignKeys, fk)
	}
	return foreignKeys, rows.Err()
}

func (in *Introspector) indexes(ctx context.Context, database, table string) ([]schema.Index, error) {
	query, args, err := in.dialect.IndexesQuery(database, table)
	if err != nil {
		return nil, err
	}
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var order []string
	byName := make(map[string]*schema.Index)
	for rows.Next() {
		var indexName, columnName string
		var nonUnique, seq int
		if err := rows.Scan(&indexName, &nonUnique, &seq, &columnName); err != nil {
			return nil, err
		}
		idx, ok := byName[indexName]
		if !ok {
			idx = &schema.Index{Name: indexName, Unique: nonUnique == 0}
			byName[indexName] = idx
			order = append(order, indexName)
		}
		idx.Columns = append(idx.Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]schema.Index, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *byName[name])
	}
	return indexes, nil
}

// markUniqueColumns sets the Unique flag on columns covered alone by a
// unique index.
func markUniqueColumns(columns []schema.Column, indexes []schema.Index) {
	for _, idx := range indexes {
		if !idx.Unique || len(idx.Columns) != 1 {
			continue
		}
		for i := range columns {
			if columns[i].Name == idx.Columns[0] {
				columns[i].Unique = true
			}
		}
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("schemaforge/introspect")
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
