package relation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/naming"
	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

func pkColumn() schema.Column {
	return schema.Column{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true}
}

func fkColumn(name string) schema.Column {
	return schema.Column{Name: name, Kind: scalar.KindBigInt, Nullable: true}
}

func shopSchema() *schema.Schema {
	return &schema.Schema{
		Tables: []schema.Table{
			{
				Name:    "orders",
				Columns: []schema.Column{pkColumn(), {Name: "total", Kind: scalar.KindDecimal}},
			},
			{
				Name: "order_items",
				Columns: []schema.Column{
					pkColumn(),
					fkColumn("order_id"),
					{Name: "quantity", Kind: scalar.KindInt},
				},
				ForeignKeys: []schema.ForeignKey{
					{ColumnName: "order_id", ReferencedTable: "orders", ReferencedColumn: "id"},
				},
			},
			{
				Name:    "products",
				Columns: []schema.Column{pkColumn(), {Name: "name", Kind: scalar.KindText}},
			},
			{
				Name:    "tags",
				Columns: []schema.Column{pkColumn(), {Name: "label", Kind: scalar.KindText}},
			},
			{
				Name: "product_tags",
				Columns: []schema.Column{
					{Name: "product_id", Kind: scalar.KindBigInt, PrimaryKey: true},
					{Name: "tag_id", Kind: scalar.KindBigInt, PrimaryKey: true},
				},
				ForeignKeys: []schema.ForeignKey{
					{ColumnName: "product_id", ReferencedTable: "products", ReferencedColumn: "id"},
					{ColumnName: "tag_id", ReferencedTable: "tags", ReferencedColumn: "id"},
				},
			},
		},
	}
}

func relsOfKind(s *schema.Schema, kind schema.RelKind) []schema.Relationship {
	var out []schema.Relationship
	for _, r := range s.Relationships {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func TestResolveShopScenario(t *testing.T) {
	s := shopSchema()
	require.NoError(t, Resolve(context.Background(), s, naming.Default()))

	manyToOne := relsOfKind(s, schema.ManyToOne)
	require.Len(t, manyToOne, 1)
	assert.Equal(t, "order_items", manyToOne[0].SourceTable)
	assert.Equal(t, "orders", manyToOne[0].TargetTable)
	assert.Equal(t, "order_id", manyToOne[0].ForeignKeyColumn)
	assert.Equal(t, "order", manyToOne[0].FieldName)

	oneToMany := relsOfKind(s, schema.OneToMany)
	require.Len(t, oneToMany, 1)
	assert.Equal(t, "orders", oneToMany[0].SourceTable)
	assert.Equal(t, "order_items", oneToMany[0].TargetTable)
	assert.Equal(t, "order_items", oneToMany[0].FieldName)

	manyToMany := relsOfKind(s, schema.ManyToMany)
	require.Len(t, manyToMany, 1)
	assert.Equal(t, "products", manyToMany[0].SourceTable)
	assert.Equal(t, "tags", manyToMany[0].TargetTable)
	assert.Equal(t, "product_tags", manyToMany[0].JunctionTable)
	assert.Empty(t, manyToMany[0].ForeignKeyColumn)
	assert.Equal(t, "tags", manyToMany[0].FieldName)

	// The junction is excluded from the generatable-entity list but stays
	// in the schema for storage-layer artifacts.
	junction := s.Table("product_tags")
	require.NotNil(t, junction)
	assert.True(t, junction.IsJunction)
	for _, tbl := range s.GeneratableTables() {
		assert.NotEqual(t, "product_tags", tbl.Name)
	}
}

func TestResolveOneToOne(t *testing.T) {
	s := &schema.Schema{
		Tables: []schema.Table{
			{Name: "users", Columns: []schema.Column{pkColumn()}},
			{
				Name: "profiles",
				Columns: []schema.Column{
					pkColumn(),
					{Name: "user_id", Kind: scalar.KindBigInt, Unique: true},
				},
				ForeignKeys: []schema.ForeignKey{
					{ColumnName: "user_id", ReferencedTable: "users", ReferencedColumn: "id"},
				},
			},
		},
	}
	require.NoError(t, Resolve(context.Background(), s, naming.Default()))

	oneToOne := relsOfKind(s, schema.OneToOne)
	require.Len(t, oneToOne, 2, "outgoing and mirrored incoming")
	assert.Equal(t, "profiles", oneToOne[0].SourceTable)
	assert.Equal(t, "users", oneToOne[0].TargetTable)
	assert.Equal(t, "users", oneToOne[1].SourceTable)
	assert.Equal(t, "profile", oneToOne[1].FieldName)
	assert.Empty(t, relsOfKind(s, schema.ManyToOne))
	assert.Empty(t, relsOfKind(s, schema.OneToMany))
}

func TestResolveSelfReference(t *testing.T) {
	s := &schema.Schema{
		Tables: []schema.Table{
			{
				Name: "employees",
				Columns: []schema.Column{
					pkColumn(),
					fkColumn("manager_id"),
				},
				ForeignKeys: []schema.ForeignKey{
					{ColumnName: "manager_id", ReferencedTable: "employees", ReferencedColumn: "id"},
				},
			},
		},
	}
	require.NoError(t, Resolve(context.Background(), s, naming.Default()))

	manyToOne := relsOfKind(s, schema.ManyToOne)
	require.Len(t, manyToOne, 1)
	assert.Equal(t, "employees", manyToOne[0].SourceTable)
	assert.Equal(t, "employees", manyToOne[0].TargetTable)
	assert.Equal(t, "manager", manyToOne[0].FieldName)

	oneToMany := relsOfKind(s, schema.OneToMany)
	require.Len(t, oneToMany, 1)
	assert.Equal(t, "employees", oneToMany[0].SourceTable)
	assert.Equal(t, "employees", oneToMany[0].TargetTable)
}

func TestResolveMultipleFKsSameTarget(t *testing.T) {
	s := &schema.Schema{
		Tables: []schema.Table{
			{Name: "users", Columns: []schema.Column{pkColumn()}},
			{
				Name: "posts",
				Columns: []schema.Column{
					pkColumn(),
					fkColumn("author_id"),
					fkColumn("editor_id"),
				},
				ForeignKeys: []schema.ForeignKey{
					{ColumnName: "author_id", ReferencedTable: "users", ReferencedColumn: "id"},
					{ColumnName: "editor_id", ReferencedTable: "users", ReferencedColumn: "id"},
				},
			},
		},
	}
	require.NoError(t, Resolve(context.Background(), s, naming.Default()))

	oneToMany := relsOfKind(s, schema.OneToMany)
	require.Len(t, oneToMany, 2)
	assert.Equal(t, "author_posts", oneToMany[0].FieldName)
	assert.Equal(t, "editor_posts", oneToMany[1].FieldName)
}

func TestResolveIdempotentShape(t *testing.T) {
	a := shopSchema()
	b := shopSchema()
	require.NoError(t, Resolve(context.Background(), a, naming.Default()))
	require.NoError(t, Resolve(context.Background(), b, naming.Default()))
	assert.Equal(t, a.Relationships, b.Relationships)
}

func TestResolveDanglingForeignKey(t *testing.T) {
	s := &schema.Schema{
		Tables: []schema.Table{
			{
				Name: "orders",
				Columns: []schema.Column{
					pkColumn(),
					fkColumn("customer_id"),
				},
				ForeignKeys: []schema.ForeignKey{
					{ColumnName: "customer_id", ReferencedTable: "customers", ReferencedColumn: "id"},
				},
			},
		},
	}
	err := Resolve(context.Background(), s, naming.Default())
	var serr *schema.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "orders", serr.Table)
	assert.Contains(t, serr.Reason, "customers")
	assert.Empty(t, s.Relationships)
}

func TestClassifyJunctions(t *testing.T) {
	t.Run("attribute column disqualifies", func(t *testing.T) {
		s := shopSchema()
		junction := s.Table("product_tags")
		junction.Columns = append(junction.Columns, schema.Column{Name: "note", Kind: scalar.KindText})
		assert.Empty(t, classifyJunctions(s)["product_tags"].Table)
	})

	t.Run("housekeeping columns allowed", func(t *testing.T) {
		s := shopSchema()
		junction := s.Table("product_tags")
		junction.Columns[0].PrimaryKey = false
		junction.Columns[1].PrimaryKey = false
		junction.Columns = append(junction.Columns,
			pkColumn(),
			schema.Column{Name: "created_at", Kind: scalar.KindDateTime},
		)
		info, ok := classifyJunctions(s)["product_tags"]
		require.True(t, ok)
		assert.Equal(t, "products", info.LeftFK.ReferencedTable)
		assert.Equal(t, "tags", info.RightFK.ReferencedTable)
	})

	t.Run("self pair is not a junction", func(t *testing.T) {
		s := &schema.Schema{
			Tables: []schema.Table{
				{Name: "nodes", Columns: []schema.Column{pkColumn()}},
				{
					Name: "node_links",
					Columns: []schema.Column{
						{Name: "parent_id", Kind: scalar.KindBigInt, PrimaryKey: true},
						{Name: "child_id", Kind: scalar.KindBigInt, PrimaryKey: true},
					},
					ForeignKeys: []schema.ForeignKey{
						{ColumnName: "parent_id", ReferencedTable: "nodes", ReferencedColumn: "id"},
						{ColumnName: "child_id", ReferencedTable: "nodes", ReferencedColumn: "id"},
					},
				},
			},
		}
		assert.Empty(t, classifyJunctions(s))
	})
}
