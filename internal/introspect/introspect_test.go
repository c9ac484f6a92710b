package introspect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/scalar"
)

func expectTable(mock sqlmock.Sqlmock, table string, columns, primaryKeys, foreignKeys, indexes *sqlmock.Rows) {
	mock.ExpectQuery("SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, COLUMN_COMMENT, IS_NULLABLE, COLUMN_DEFAULT, EXTRA FROM INFORMATION_SCHEMA.COLUMNS").
		WithArgs("shop", table).
		WillReturnRows(columns)
	mock.ExpectQuery("SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE").
		WithArgs("shop", table, "PRIMARY").
		WillReturnRows(primaryKeys)
	mock.ExpectQuery("SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME, CONSTRAINT_NAME, ORDINAL_POSITION FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE").
		WithArgs("shop", table).
		WillReturnRows(foreignKeys)
	mock.ExpectQuery("SELECT INDEX_NAME, NON_UNIQUE, SEQ_IN_INDEX, COLUMN_NAME FROM INFORMATION_SCHEMA.STATISTICS").
		WithArgs("shop", table, "PRIMARY").
		WillReturnRows(indexes)
}

func columnRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "COLUMN_COMMENT",
		"IS_NULLABLE", "COLUMN_DEFAULT", "EXTRA",
	})
}

func TestIntrospectMySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT TABLE_NAME, TABLE_COMMENT FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("shop", "BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_COMMENT"}).
			AddRow("customers", "registered accounts").
			AddRow("orders", ""))

	expectTable(mock, "customers",
		columnRows().
			AddRow("id", "bigint", "bigint(20)", "", "NO", nil, "auto_increment").
			AddRow("email", "varchar", "varchar(320)", "", "NO", nil, "").
			AddRow("status", "enum", "enum('active','closed')", "", "NO", "active", ""),
		sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"),
		sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME", "ORDINAL_POSITION"}),
		sqlmock.NewRows([]string{"INDEX_NAME", "NON_UNIQUE", "SEQ_IN_INDEX", "COLUMN_NAME"}).
			AddRow("uq_customers_email", 0, 1, "email"))

	expectTable(mock, "orders",
		columnRows().
			AddRow("id", "bigint", "bigint(20)", "", "NO", nil, "auto_increment").
			AddRow("customer_id", "bigint", "bigint(20)", "", "NO", nil, ""),
		sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"),
		sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME", "ORDINAL_POSITION"}).
			AddRow("customer_id", "customers", "id", "fk_orders_customer", 1),
		sqlmock.NewRows([]string{"INDEX_NAME", "NON_UNIQUE", "SEQ_IN_INDEX", "COLUMN_NAME"}))

	in := New(db, MySQLDialect{})
	s, err := in.Introspect(context.Background(), "shop")
	require.NoError(t, err)
	require.Len(t, s.Tables, 2)

	customers := s.Table("customers")
	require.NotNil(t, customers)
	assert.Equal(t, "registered accounts", customers.Comment)

	id := customers.Column("id")
	require.NotNil(t, id)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.Equal(t, scalar.KindBigInt, id.Kind)

	email := customers.Column("email")
	assert.True(t, email.Unique, "single-column unique index marks the column")

	status := customers.Column("status")
	assert.Equal(t, scalar.KindEnum, status.Kind)
	assert.Equal(t, []string{"active", "closed"}, status.EnumValues)
	assert.True(t, status.HasDefault)

	orders := s.Table("orders")
	require.Len(t, orders.ForeignKeys, 1)
	assert.Equal(t, "customers", orders.ForeignKeys[0].ReferencedTable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntrospectEmptyDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT TABLE_NAME, TABLE_COMMENT FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("empty", "BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_COMMENT"}))

	in := New(db, MySQLDialect{})
	_, err = in.Introspect(context.Background(), "empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tables")
}

func TestIntrospectUnknownTypeFallsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT TABLE_NAME, TABLE_COMMENT FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("shop", "BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_COMMENT"}).AddRow("places", ""))

	expectTable(mock, "places",
		columnRows().
			AddRow("id", "bigint", "bigint(20)", "", "NO", nil, "auto_increment").
			AddRow("location", "geometry", "geometry", "", "YES", nil, ""),
		sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"),
		sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME", "ORDINAL_POSITION"}),
		sqlmock.NewRows([]string{"INDEX_NAME", "NON_UNIQUE", "SEQ_IN_INDEX", "COLUMN_NAME"}))

	in := New(db, MySQLDialect{})
	s, err := in.Introspect(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, scalar.KindText, s.Table("places").Column("location").Kind)
}

func TestDialectQueryShapes(t *testing.T) {
	t.Run("mysql placeholders", func(t *testing.T) {
		query, args, err := MySQLDialect{}.ColumnsQuery("shop", "orders")
		require.NoError(t, err)
		assert.Contains(t, query, "?")
		assert.Equal(t, []any{"shop", "orders"}, args)
	})
	t.Run("postgres placeholders", func(t *testing.T) {
		query, args, err := PostgresDialect{}.PrimaryKeyQuery("public", "orders")
		require.NoError(t, err)
		assert.Contains(t, query, "$1")
		assert.Equal(t, []any{"public", "orders", "PRIMARY KEY"}, args)
	})
	t.Run("postgres index query is positional", func(t *testing.T) {
		_, args, err := PostgresDialect{}.IndexesQuery("public", "orders")
		require.NoError(t, err)
		assert.Equal(t, []any{"public", "orders"}, args)
	})
}
