package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/naming"
	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

const blogDocument = `{
  "entities": {
    "Post": {
      "type": "object",
      "properties": {
        "id": {"type": "integer", "format": "int64"},
        "title": {"type": "string", "maxLength": 200},
        "body": {"type": "string"},
        "published": {"type": "boolean"},
        "author": {"$ref": "#/entities/Author"},
        "tags": {"type": "array", "items": {"$ref": "#/entities/Tag"}}
      },
      "required": ["id", "title", "author"]
    },
    "Author": {
      "type": "object",
      "properties": {
        "id": {"type": "integer", "format": "int64"},
        "name": {"type": "string"},
        "email": {"type": "string"}
      },
      "required": ["id", "name"]
    },
    "Tag": {
      "type": "object",
      "properties": {
        "name": {"type": "string"}
      },
      "required": ["name"]
    }
  }
}`

func TestConvertDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(blogDocument))
	require.NoError(t, err)

	conv := NewConverter(naming.Default())
	s, err := conv.ConvertDocument(context.Background(), doc)
	require.NoError(t, err)

	t.Run("id property becomes primary key", func(t *testing.T) {
		posts := s.Table("posts")
		require.NotNil(t, posts)
		id := posts.Column("id")
		require.NotNil(t, id)
		assert.True(t, id.PrimaryKey)
		assert.Equal(t, scalar.KindBigInt, id.Kind)
		assert.False(t, id.Nullable)
	})

	t.Run("primary key synthesized when absent", func(t *testing.T) {
		tags := s.Table("tags")
		require.NotNil(t, tags)
		id := tags.Column("id")
		require.NotNil(t, id)
		assert.True(t, id.PrimaryKey)
		assert.True(t, id.AutoIncrement)
	})

	t.Run("ref property becomes foreign key column", func(t *testing.T) {
		posts := s.Table("posts")
		col := posts.Column("author_id")
		require.NotNil(t, col)
		assert.Equal(t, scalar.KindBigInt, col.Kind)
		require.Len(t, posts.ForeignKeys, 1)
		assert.Equal(t, "author_id", posts.ForeignKeys[0].ColumnName)
		assert.Equal(t, "authors", posts.ForeignKeys[0].ReferencedTable)
		assert.Equal(t, "id", posts.ForeignKeys[0].ReferencedColumn)
	})

	t.Run("array of refs synthesizes junction table", func(t *testing.T) {
		junction := s.Table("posts_tags")
		require.NotNil(t, junction)
		require.Len(t, junction.ForeignKeys, 2)
		assert.Equal(t, "posts", junction.ForeignKeys[0].ReferencedTable)
		assert.Equal(t, "tags", junction.ForeignKeys[1].ReferencedTable)
		for _, col := range junction.Columns {
			assert.False(t, col.Nullable, col.Name)
		}
	})

	t.Run("nullability follows required list", func(t *testing.T) {
		posts := s.Table("posts")
		assert.False(t, posts.Column("title").Nullable)
		assert.True(t, posts.Column("body").Nullable)
		assert.True(t, posts.Column("published").Nullable)
	})
}

func TestConvertDocumentIdempotent(t *testing.T) {
	doc, err := ParseDocument([]byte(blogDocument))
	require.NoError(t, err)

	conv := NewConverter(naming.Default())
	first, err := conv.ConvertDocument(context.Background(), doc)
	require.NoError(t, err)
	second, err := conv.ConvertDocument(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestConvertDocumentYAML(t *testing.T) {
	yamlDoc := `
entities:
  Product:
    type: object
    properties:
      name:
        type: string
      price:
        type: number
        format: double
      status:
        type: string
        enum: [active, retired]
    required: [name, price]
`
	doc, err := ParseDocument([]byte(yamlDoc))
	require.NoError(t, err)

	conv := NewConverter(naming.Default())
	s, err := conv.ConvertDocument(context.Background(), doc)
	require.NoError(t, err)

	products := s.Table("products")
	require.NotNil(t, products)
	assert.Equal(t, scalar.KindFloat, products.Column("price").Kind)
	status := products.Column("status")
	assert.Equal(t, scalar.KindEnum, status.Kind)
	assert.Equal(t, []string{"active", "retired"}, status.EnumValues)
}

func TestConvertDanglingReference(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
	  "entities": {
	    "Order": {
	      "type": "object",
	      "properties": {
	        "id": {"type": "integer"},
	        "customer": {"$ref": "#/entities/Customer"}
	      }
	    }
	  }
	}`))
	require.NoError(t, err)

	conv := NewConverter(naming.Default())
	_, err = conv.ConvertDocument(context.Background(), doc)
	require.Error(t, err)
	var serr *schema.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "Order", serr.Table)
}

func TestParseDocumentRejectsGarbage(t *testing.T) {
	_, err := ParseDocument([]byte("{{{not a document"))
	require.Error(t, err)
	var serr *schema.Error
	assert.ErrorAs(t, err, &serr)
}
