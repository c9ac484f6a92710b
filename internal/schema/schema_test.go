package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/scalar"
)

func testSchema() *Schema {
	return &Schema{
		Tables: []Table{
			{
				Name: "products",
				Columns: []Column{
					{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
					{Name: "name", Kind: scalar.KindText},
					{Name: "sku", Kind: scalar.KindText},
				},
				Indexes: []Index{
					{Name: "uq_products_sku", Unique: true, Columns: []string{"sku"}},
				},
			},
			{
				Name:       "product_tags",
				IsJunction: true,
				Columns: []Column{
					{Name: "product_id", Kind: scalar.KindBigInt, PrimaryKey: true},
					{Name: "tag_id", Kind: scalar.KindBigInt, PrimaryKey: true},
				},
				ForeignKeys: []ForeignKey{
					{ColumnName: "product_id", ReferencedTable: "products", ReferencedColumn: "id"},
					{ColumnName: "tag_id", ReferencedTable: "tags", ReferencedColumn: "id"},
				},
			},
			{
				Name: "tags",
				Columns: []Column{
					{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true},
					{Name: "label", Kind: scalar.KindText, Unique: true},
				},
			},
		},
	}
}

func TestGeneratableTablesExcludesJunctions(t *testing.T) {
	s := testSchema()
	tables := s.GeneratableTables()
	require.Len(t, tables, 2)
	assert.Equal(t, "products", tables[0].Name)
	assert.Equal(t, "tags", tables[1].Name)
}

func TestValidate(t *testing.T) {
	s := testSchema()
	assert.NoError(t, s.Validate())

	t.Run("dangling foreign key", func(t *testing.T) {
		bad := testSchema()
		bad.Tables[1].ForeignKeys[1].ReferencedTable = "missing"
		err := bad.Validate()
		require.Error(t, err)
		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "product_tags", serr.Table)
	})

	t.Run("missing primary key", func(t *testing.T) {
		bad := testSchema()
		bad.Tables[2].Columns[0].PrimaryKey = false
		err := bad.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no primary key")
	})
}

func TestHasUniqueColumn(t *testing.T) {
	s := testSchema()
	products := s.Table("products")
	require.NotNil(t, products)
	assert.True(t, products.HasUniqueColumn("sku"), "unique via single-column index")
	assert.False(t, products.HasUniqueColumn("name"))

	tags := s.Table("tags")
	require.NotNil(t, tags)
	assert.True(t, tags.HasUniqueColumn("label"), "unique via column flag")
}

func TestSurrogateKey(t *testing.T) {
	intPK := Table{Columns: []Column{
		{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
		{Name: "name", Kind: scalar.KindText},
	}}
	assert.True(t, SurrogateKey(intPK, intPK.Columns[0]))
	assert.False(t, SurrogateKey(intPK, intPK.Columns[1]), "non-key column")

	uuidPK := Table{Columns: []Column{
		{Name: "id", Kind: scalar.KindUUID, PrimaryKey: true},
	}}
	assert.False(t, SurrogateKey(uuidPK, uuidPK.Columns[0]), "declared UUID key keeps its kind")

	composite := Table{Columns: []Column{
		{Name: "product_id", Kind: scalar.KindBigInt, PrimaryKey: true},
		{Name: "tag_id", Kind: scalar.KindBigInt, PrimaryKey: true},
	}}
	assert.False(t, SurrogateKey(composite, composite.Columns[0]))
}

func TestPrimaryKeyColumns(t *testing.T) {
	s := testSchema()
	junction := s.Table("product_tags")
	require.NotNil(t, junction)
	cols := PrimaryKeyColumns(*junction)
	require.Len(t, cols, 2)
	assert.Equal(t, "product_id", cols[0].Name)

	first := PrimaryKeyColumn(*junction)
	require.NotNil(t, first)
	assert.Equal(t, "product_id", first.Name)
}
