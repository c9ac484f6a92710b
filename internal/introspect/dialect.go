package introspect

import (
	sq "github.com/Masterminds/squirrel"
)

// Dialect supplies the metadata queries for one database flavor. Every query
// returns rows in a fixed column order so the introspector can scan them
// uniformly:
//
//	tables:       table_name, table_comment
//	columns:      column_name, data_type, column_type, column_comment,
//	              is_nullable, column_default, extra
//	primary keys: column_name (ordered by key position)
//	foreign keys: column_name, referenced_table, referenced_column,
//	              constraint_name, ordinal_position
//	indexes:      index_name, non_unique, seq_in_index, column_name
type Dialect interface {
	Name() string
	TablesQuery(database string) (string, []any, error)
	ColumnsQuery(database, table string) (string, []any, error)
	PrimaryKeyQuery(database, table string) (string, []any, error)
	ForeignKeysQuery(database, table string) (string, []any, error)
	IndexesQuery(database, table string) (string, []any, error)
}

// MySQLDialect reads INFORMATION_SCHEMA the MySQL way. It also covers TiDB
// and MariaDB, which expose the same views.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) TablesQuery(database string) (string, []any, error) {
	return sq.Select("TABLE_NAME", "TABLE_COMMENT").
		From("INFORMATION_SCHEMA.TABLES").
		Where(sq.Eq{"TABLE_SCHEMA": database}).
		Where(sq.Eq{"TABLE_TYPE": "BASE TABLE"}).
		OrderBy("TABLE_NAME").
		ToSql()
}

func (MySQLDialect) ColumnsQuery(database, table string) (string, []any, error) {
	return sq.Select(
		"COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "COLUMN_COMMENT",
		"IS_NULLABLE", "COLUMN_DEFAULT", "EXTRA",
	).
		From("INFORMATION_SCHEMA.COLUMNS").
		Where(sq.Eq{"TABLE_SCHEMA": database}).
		Where(sq.Eq{"TABLE_NAME": table}).
		OrderBy("ORDINAL_POSITION").
		ToSql()
}

func (MySQLDialect) PrimaryKeyQuery(database, table string) (string, []any, error) {
	return sq.Select("COLUMN_NAME").
		From("INFORMATION_SCHEMA.KEY_COLUMN_USAGE").
		Where(sq.Eq{"TABLE_SCHEMA": database}).
		Where(sq.Eq{"TABLE_NAME": table}).
		Where(sq.Eq{"CONSTRAINT_NAME": "PRIMARY"}).
		OrderBy("ORDINAL_POSITION").
		ToSql()
}

func (MySQLDialect) ForeignKeysQuery(database, table string) (string, []any, error) {
	return sq.Select(
		"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME",
		"CONSTRAINT_NAME", "ORDINAL_POSITION",
	).
		From("INFORMATION_SCHEMA.KEY_COLUMN_USAGE").
		Where(sq.Eq{"TABLE_SCHEMA": database}).
		Where(sq.Eq{"TABLE_NAME": table}).
		Where("REFERENCED_TABLE_NAME IS NOT NULL").
		OrderBy("CONSTRAINT_NAME", "ORDINAL_POSITION").
		ToSql()
}

func (MySQLDialect) IndexesQuery(database, table string) (string, []any, error) {
	return sq.Select("INDEX_NAME", "NON_UNIQUE", "SEQ_IN_INDEX", "COLUMN_NAME").
		From("INFORMATION_SCHEMA.STATISTICS").
		Where(sq.Eq{"TABLE_SCHEMA": database}).
		Where(sq.Eq{"TABLE_NAME": table}).
		Where(sq.NotEq{"INDEX_NAME": "PRIMARY"}).
		OrderBy("INDEX_NAME", "SEQ_IN_INDEX").
		ToSql()
}

// PostgresDialect reads the standard information_schema views plus pg_catalog
// where the standard views fall short. The database argument is the schema
// (namespace) to introspect, normally "public".
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) TablesQuery(database string) (string, []any, error) {
	return sq.Select("table_name", "''").
		From("information_schema.tables").
		Where(sq.Eq{"table_schema": database}).
		Where(sq.Eq{"table_type": "BASE TABLE"}).
		OrderBy("table_name").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (PostgresDialect) ColumnsQuery(database, table string) (string, []any, error) {
	// Postgres has no EXTRA column; serial and identity columns are surfaced
	// through column_default and is_identity instead.
	return sq.Select(
		"column_name", "data_type", "udt_name", "''",
		"is_nullable", "column_default",
		`CASE
			WHEN is_identity = 'YES' THEN 'auto_increment'
			WHEN column_default LIKE 'nextval(%' THEN 'auto_increment'
			ELSE ''
		END`,
	).
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": database}).
		Where(sq.Eq{"table_name": table}).
		OrderBy("ordinal_position").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (PostgresDialect) PrimaryKeyQuery(database, table string) (string, []any, error) {
	return sq.Select("kcu.column_name").
		From("information_schema.table_constraints tc").
		Join("information_schema.key_column_usage kcu ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema").
		Where(sq.Eq{"tc.table_schema": database}).
		Where(sq.Eq{"tc.table_name": table}).
		Where(sq.Eq{"tc.constraint_type": "PRIMARY KEY"}).
		OrderBy("kcu.ordinal_position").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (PostgresDialect) ForeignKeysQuery(database, table string) (string, []any, error) {
	return sq.Select(
		"kcu.column_name", "ccu.table_name", "ccu.column_name",
		"tc.constraint_name", "kcu.ordinal_position",
	).
		From("information_schema.table_constraints tc").
		Join("information_schema.key_column_usage kcu ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema").
		Join("information_schema.constraint_column_usage ccu ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema").
		Where(sq.Eq{"tc.table_schema": database}).
		Where(sq.Eq{"tc.table_name": table}).
		Where(sq.Eq{"tc.constraint_type": "FOREIGN KEY"}).
		OrderBy("tc.constraint_name", "kcu.ordinal_position").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (PostgresDialect) IndexesQuery(database, table string) (string, []any, error) {
	// The standard views do not expose index column order, so this one goes
	// through pg_catalog.
	query := `
		SELECT
			i.relname,
			CASE WHEN ix.indisunique THEN 0 ELSE 1 END,
			k.ordinality,
			a.attname
		FROM pg_class t
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_index ix ON ix.indrelid = t.oid
		JOIN pg_class i ON i.oid = ix.indexrelid
		CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ordinality)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND t.relname = $2 AND NOT ix.indisprimary
		ORDER BY i.relname, k.ordinality
	`
	return query, []any{database, table}, nil
}
