package gqlgen

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/generator"
	"schemaforge/internal/naming"
	"schemaforge/internal/relation"
	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

func shopSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s := &schema.Schema{Tables: []schema.Table{
		{
			Name:    "products",
			Comment: "catalog entries",
			Columns: []schema.Column{
				{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
				{Name: "name", Kind: scalar.KindText},
				{Name: "price", Kind: scalar.KindDecimal, Nullable: true},
			},
		},
		{
			Name: "tags",
			Columns: []schema.Column{
				{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
				{Name: "label", Kind: scalar.KindText},
			},
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
	}}
	require.NoError(t, relation.Resolve(context.Background(), s, naming.Default()))
	return s
}

func parseSDL(t *testing.T, sdl string) *ast.Document {
	t.Helper()
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(sdl),
			Name: "schema.graphql",
		}),
	})
	require.NoError(t, err, "emitted SDL must parse:\n%s", sdl)
	return doc
}

func objectTypes(doc *ast.Document) map[string]*ast.ObjectDefinition {
	types := make(map[string]*ast.ObjectDefinition)
	for _, def := range doc.Definitions {
		if obj, ok := def.(*ast.ObjectDefinition); ok {
			types[obj.Name.Value] = obj
		}
	}
	return types
}

func TestGenerateSDL(t *testing.T) {
	s := shopSchema(t)
	g := New(naming.Default())

	files, err := g.Generate(context.Background(), s, nil, generator.Options{})
	require.NoError(t, err)
	sdl, ok := files["schema.graphql"]
	require.True(t, ok)

	doc := parseSDL(t, sdl)
	types := objectTypes(doc)

	t.Run("one type per generatable table plus Query", func(t *testing.T) {
		assert.Contains(t, types, "Product")
		assert.Contains(t, types, "Tag")
		assert.Contains(t, types, "Query")
		assert.NotContains(t, types, "ProductTag", "junction tables stay hidden")
	})

	t.Run("primary key is non-null ID", func(t *testing.T) {
		assert.Contains(t, sdl, "id: ID!")
	})

	t.Run("nullability follows the column", func(t *testing.T) {
		assert.Contains(t, sdl, "name: String!")
		assert.Contains(t, sdl, "price: Float\n")
	})

	t.Run("many to many field on the owning side", func(t *testing.T) {
		assert.Contains(t, sdl, "tags: [Tag!]!")
	})

	t.Run("query fields per table", func(t *testing.T) {
		assert.Contains(t, sdl, "product(id: ID!): Product")
		assert.Contains(t, sdl, "products(limit: Int, offset: Int): [Product!]!")
		assert.Contains(t, sdl, "tag(id: ID!): Tag")
		assert.Contains(t, sdl, "tags(limit: Int, offset: Int): [Tag!]!")
	})
}

func TestGenerateReservedTypeNames(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{{
		Name: "strings",
		Columns: []schema.Column{
			{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
			{Name: "value", Kind: scalar.KindText},
		},
	}}}
	require.NoError(t, relation.Resolve(context.Background(), s, naming.Default()))

	g := New(naming.Default())
	files, err := g.Generate(context.Background(), s, nil, generator.Options{})
	require.NoError(t, err)

	sdl := files["schema.graphql"]
	doc := parseSDL(t, sdl)
	types := objectTypes(doc)
	assert.Contains(t, types, "String_", "escaped away from the built-in scalar")
	assert.NotContains(t, types, "String")
	assert.Contains(t, sdl, "string(id: ID!): String_")
}

func TestGenerateDeclaredUUIDKey(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{
		{
			Name: "devices",
			Columns: []schema.Column{
				{Name: "id", Kind: scalar.KindUUID, PrimaryKey: true},
				{Name: "label", Kind: scalar.KindText},
			},
		},
	}}
	require.NoError(t, relation.Resolve(context.Background(), s, naming.Default()))

	g := New(naming.Default())
	files, err := g.Generate(context.Background(), s, nil, generator.Options{})
	require.NoError(t, err)

	sdl := files["schema.graphql"]
	parseSDL(t, sdl)
	assert.Contains(t, sdl, "id: ID!")
}

func TestGenerateSchemaFileOverride(t *testing.T) {
	s := shopSchema(t)
	g := New(naming.Default())

	files, err := g.Generate(context.Background(), s, nil, generator.Options{
		Overrides: map[string]string{"schemaFile": "api/schema.graphqls"},
	})
	require.NoError(t, err)
	assert.Contains(t, files, "api/schema.graphqls")
}
