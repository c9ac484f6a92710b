package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

const shopDDL = `
CREATE TABLE customers (
  id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  email VARCHAR(320) NOT NULL UNIQUE,
  name VARCHAR(100) NOT NULL,
  status ENUM('active','suspended','closed') NOT NULL DEFAULT 'active',
  balance DECIMAL(10,2) NOT NULL DEFAULT 0,
  notes TEXT COMMENT 'free-form account notes',
  created_at TIMESTAMP NOT NULL
);

CREATE TABLE orders (
  id BIGINT NOT NULL AUTO_INCREMENT,
  customer_id BIGINT NOT NULL,
  placed_at DATETIME NOT NULL,
  PRIMARY KEY (id),
  KEY idx_orders_customer (customer_id),
  CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id) REFERENCES customers (id)
);
`

func TestParseDDL(t *testing.T) {
	s, err := ParseDDL(context.Background(), shopDDL)
	require.NoError(t, err)
	require.Len(t, s.Tables, 2)

	customers := s.Table("customers")
	require.NotNil(t, customers)

	t.Run("column types and flags", func(t *testing.T) {
		id := customers.Column("id")
		require.NotNil(t, id)
		assert.Equal(t, scalar.KindBigInt, id.Kind)
		assert.True(t, id.PrimaryKey)
		assert.True(t, id.AutoIncrement)
		assert.False(t, id.Nullable)

		email := customers.Column("email")
		assert.True(t, email.Unique)
		assert.Equal(t, 320, email.Length)

		balance := customers.Column("balance")
		assert.Equal(t, scalar.KindDecimal, balance.Kind)
		assert.Equal(t, 10, balance.Precision)
		assert.Equal(t, 2, balance.Scale)
		assert.True(t, balance.HasDefault)

		notes := customers.Column("notes")
		assert.True(t, notes.Nullable)
		assert.Equal(t, "free-form account notes", notes.Comment)
	})

	t.Run("enum values", func(t *testing.T) {
		status := customers.Column("status")
		assert.Equal(t, scalar.KindEnum, status.Kind)
		assert.Equal(t, []string{"active", "suspended", "closed"}, status.EnumValues)
		assert.Equal(t, "active", status.Default)
	})

	t.Run("table-level primary key and foreign key", func(t *testing.T) {
		orders := s.Table("orders")
		require.NotNil(t, orders)
		assert.True(t, orders.Column("id").PrimaryKey)
		require.Len(t, orders.ForeignKeys, 1)
		fk := orders.ForeignKeys[0]
		assert.Equal(t, "customer_id", fk.ColumnName)
		assert.Equal(t, "customers", fk.ReferencedTable)
		assert.Equal(t, "id", fk.ReferencedColumn)
		assert.Equal(t, "fk_orders_customer", fk.ConstraintName)
		require.Len(t, orders.Indexes, 1)
		assert.Equal(t, "idx_orders_customer", orders.Indexes[0].Name)
	})
}

func TestParseDDLInlineReferences(t *testing.T) {
	s, err := ParseDDL(context.Background(), `
CREATE TABLE teams (id BIGINT PRIMARY KEY, name VARCHAR(80) NOT NULL);
CREATE TABLE players (
  id BIGINT PRIMARY KEY,
  team_id BIGINT REFERENCES teams (id)
);`)
	require.NoError(t, err)

	players := s.Table("players")
	require.NotNil(t, players)
	require.Len(t, players.ForeignKeys, 1)
	assert.Equal(t, "teams", players.ForeignKeys[0].ReferencedTable)
}

func TestParseDDLSynthesizesPrimaryKey(t *testing.T) {
	s, err := ParseDDL(context.Background(), `
CREATE TABLE audit_entries (
  message TEXT NOT NULL,
  logged_at TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)

	entries := s.Table("audit_entries")
	require.NotNil(t, entries)
	id := entries.Column("id")
	require.NotNil(t, id)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.Equal(t, "message", entries.Columns[1].Name)
}

func TestParseDDLQuotedIdentifiers(t *testing.T) {
	s, err := ParseDDL(context.Background(), "CREATE TABLE `line_items` (`id` BIGINT PRIMARY KEY, `qty` INT NOT NULL);")
	require.NoError(t, err)
	assert.NotNil(t, s.Table("line_items"))
	assert.Equal(t, scalar.KindInt, s.Table("line_items").Column("qty").Kind)
}

func TestParseDDLKeywordPrefixedColumns(t *testing.T) {
	s, err := ParseDDL(context.Background(), `
CREATE TABLE settings (
  id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  key_name VARCHAR(64) NOT NULL,
  indexed_at DATETIME,
  unique_code VARCHAR(16) NOT NULL
);`)
	require.NoError(t, err)

	settings := s.Table("settings")
	require.NotNil(t, settings)
	require.Len(t, settings.Columns, 4)
	assert.NotNil(t, settings.Column("key_name"))
	assert.NotNil(t, settings.Column("indexed_at"))
	assert.NotNil(t, settings.Column("unique_code"))
	assert.Empty(t, settings.Indexes)
	assert.False(t, settings.Column("unique_code").Unique)
}

func TestParseDDLUnknownTypeFallsBack(t *testing.T) {
	s, err := ParseDDL(context.Background(), `
CREATE TABLE places (
  id BIGINT PRIMARY KEY,
  location GEOMETRY
);`)
	require.NoError(t, err)
	loc := s.Table("places").Column("location")
	assert.Equal(t, scalar.KindText, loc.Kind)
	assert.Equal(t, "GEOMETRY", loc.RawType)
}

func TestParseDDLErrors(t *testing.T) {
	tests := []struct {
		name string
		ddl  string
	}{
		{"unterminated statement", "CREATE TABLE broken (id BIGINT PRIMARY KEY"},
		{"unterminated string", "CREATE TABLE broken (status VARCHAR(10) DEFAULT 'open"},
		{"dangling foreign key", `
CREATE TABLE orders (
  id BIGINT PRIMARY KEY,
  customer_id BIGINT NOT NULL,
  CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id) REFERENCES customers (id)
);`},
		{"no create table statements", "DROP TABLE users;"},
		{"empty column list", "CREATE TABLE empty ();"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDDL(context.Background(), tt.ddl)
			require.Error(t, err)
			var serr *schema.Error
			assert.ErrorAs(t, err, &serr)
		})
	}
}
