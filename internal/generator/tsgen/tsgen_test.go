package tsgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/generator"
	"schemaforge/internal/naming"
	"schemaforge/internal/relation"
	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

func storeSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s := &schema.Schema{Tables: []schema.Table{
		{
			Name: "products",
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
				{Name: "label", Kind: scalar.KindText, Unique: true},
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

func TestGenerate(t *testing.T) {
	s := storeSchema(t)
	g := New(naming.Default())

	files, err := g.Generate(context.Background(), s, nil, generator.Options{})
	require.NoError(t, err)

	entity := files["src/product/product.entity.ts"]
	require.NotEmpty(t, entity)

	t.Run("junction tables get no entity", func(t *testing.T) {
		assert.NotContains(t, files, "src/product-tag/product-tag.entity.ts")
	})

	t.Run("primary key is generated number", func(t *testing.T) {
		assert.Contains(t, entity, "@PrimaryGeneratedColumn()")
		assert.Contains(t, entity, "id: number;")
	})

	t.Run("nullable column carries null union", func(t *testing.T) {
		assert.Contains(t, entity, "@Column({ name: 'price', nullable: true })")
		assert.Contains(t, entity, "price: string | null;")
	})

	t.Run("many to many uses the junction table name", func(t *testing.T) {
		assert.Contains(t, entity, "@ManyToMany(() => Tag)")
		assert.Contains(t, entity, "@JoinTable({ name: 'product_tags' })")
		assert.Contains(t, entity, "tags: Tag[];")
		assert.Contains(t, entity, "import { Tag } from '../tag/tag.entity';")
	})

	t.Run("unique column is decorated", func(t *testing.T) {
		tag := files["src/tag/tag.entity.ts"]
		assert.Contains(t, tag, "@Column({ name: 'label', unique: true })")
	})

	t.Run("supporting artifacts exist", func(t *testing.T) {
		for _, path := range []string{
			"src/product/product.service.ts",
			"src/product/product.controller.ts",
			"src/product/product.module.ts",
			"src/product/product.entity.spec.ts",
			"src/migrations/0001-init.sql",
		} {
			assert.Contains(t, files, path)
		}
	})
}

func TestGenerateReservedColumnNames(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{{
		Name: "widgets",
		Columns: []schema.Column{
			{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
			{Name: "class", Kind: scalar.KindText},
		},
	}}}
	require.NoError(t, relation.Resolve(context.Background(), s, naming.Default()))

	g := New(naming.Default())
	files, err := g.Generate(context.Background(), s, nil, generator.Options{})
	require.NoError(t, err)

	entity := files["src/widget/widget.entity.ts"]
	assert.Contains(t, entity, "@Column({ name: 'class' })")
	assert.Contains(t, entity, "class_: string;")
	assert.NotContains(t, entity, "\n  class: string;")
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

	entity := files["src/device/device.entity.ts"]
	assert.Contains(t, entity, "@PrimaryColumn({ name: 'id' })")
	assert.Contains(t, entity, "id: string;")
	assert.NotContains(t, entity, "id: number;")

	controller := files["src/device/device.controller.ts"]
	assert.Contains(t, controller, "ParseUUIDPipe,")
	assert.Contains(t, controller, "@Param('id', ParseUUIDPipe) id: string")
	assert.NotContains(t, controller, "ParseIntPipe")
}

func TestGenerateSrcDirOverride(t *testing.T) {
	s := storeSchema(t)
	g := New(naming.Default())

	files, err := g.Generate(context.Background(), s, []string{"tags"}, generator.Options{
		Overrides: map[string]string{"srcDir": "app"},
	})
	require.NoError(t, err)
	assert.Contains(t, files, "app/tag/tag.entity.ts")
	assert.NotContains(t, files, "app/product/product.entity.ts")
}
