package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/generator"
	"schemaforge/internal/generator/gogen"
	"schemaforge/internal/generator/gqlgen"
	"schemaforge/internal/generator/javagen"
	"schemaforge/internal/generator/tsgen"
	"schemaforge/internal/naming"
	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

type stubGenerator struct {
	language  string
	framework string
	files     generator.Files
	err       error
	panics    bool
}

func (g *stubGenerator) Language() string                { return g.language }
func (g *stubGenerator) Framework() string               { return g.framework }
func (g *stubGenerator) Supports(generator.Feature) bool { return true }

func (g *stubGenerator) Generate(ctx context.Context, s *schema.Schema, entities []string, opts generator.Options) (generator.Files, error) {
	if g.panics {
		panic("template exploded")
	}
	return g.files, g.err
}

func productsSchema() *schema.Schema {
	return &schema.Schema{Tables: []schema.Table{
		{
			Name: "products",
			Columns: []schema.Column{
				{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
				{Name: "name", Kind: scalar.KindText},
				{Name: "price", Kind: scalar.KindDecimal, Nullable: true, Precision: 10, Scale: 2},
				{Name: "category_id", Kind: scalar.KindBigInt, Nullable: true},
			},
			ForeignKeys: []schema.ForeignKey{
				{ColumnName: "category_id", ReferencedTable: "categories", ReferencedColumn: "id"},
			},
		},
		{
			Name: "categories",
			Columns: []schema.Column{
				{Name: "id", Kind: scalar.KindBigInt, PrimaryKey: true, AutoIncrement: true},
				{Name: "title", Kind: scalar.KindText},
			},
		},
	}}
}

func TestRunIsolatesFailures(t *testing.T) {
	registry := generator.NewRegistry()
	registry.Register(&stubGenerator{language: "go", framework: "gin", files: generator.Files{"ok.go": "package ok"}})
	registry.Register(&stubGenerator{language: "java", framework: "spring", panics: true})
	registry.Register(&stubGenerator{language: "typescript", framework: "nestjs", err: errors.New("disk on fire")})

	e := New(registry, naming.Default(), nil)
	result, err := e.Run(context.Background(), productsSchema(), []Target{
		{Language: "go", Framework: "gin"},
		{Language: "java", Framework: "spring"},
		{Language: "typescript", Framework: "nestjs"},
		{Language: "rust", Framework: "axum"},
	})
	require.NoError(t, err, "per-target failures never abort the run")
	require.Len(t, result.Targets, 4)
	assert.NotEmpty(t, result.RunID)

	assert.NoError(t, result.Targets[0].Err)
	assert.Equal(t, generator.Files{"ok.go": "package ok"}, result.Targets[0].Files)

	require.Error(t, result.Targets[1].Err)
	assert.Contains(t, result.Targets[1].Err.Error(), "panicked")
	assert.Nil(t, result.Targets[1].Files)

	require.Error(t, result.Targets[2].Err)
	assert.Contains(t, result.Targets[2].Err.Error(), "disk on fire")

	require.Error(t, result.Targets[3].Err)
	assert.Contains(t, result.Targets[3].Err.Error(), "no generator registered")
}

func TestRunDefaultFramework(t *testing.T) {
	registry := generator.NewRegistry()
	registry.Register(&stubGenerator{language: "go", framework: "gin", files: generator.Files{}})
	registry.Register(&stubGenerator{language: "go", framework: "echo", files: generator.Files{}})

	e := New(registry, naming.Default(), nil)
	result, err := e.Run(context.Background(), productsSchema(), []Target{{Language: "go"}})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)
	assert.NoError(t, result.Targets[0].Err)
	assert.Equal(t, "gin", result.Targets[0].Framework)
}

func TestRunAbortsOnInvalidSchema(t *testing.T) {
	registry := generator.NewRegistry()
	registry.Register(&stubGenerator{language: "go", framework: "gin"})

	bad := &schema.Schema{Tables: []schema.Table{
		{Name: "orphans", Columns: []schema.Column{{Name: "note", Kind: scalar.KindText}}},
	}}

	e := New(registry, naming.Default(), nil)
	_, err := e.Run(context.Background(), bad, []Target{{Language: "go", Framework: "gin"}})
	require.Error(t, err)
	var serr *schema.Error
	assert.ErrorAs(t, err, &serr)
}

func TestRunCollectsMappingWarnings(t *testing.T) {
	registry := generator.NewRegistry()
	registry.Register(&stubGenerator{language: "go", framework: "gin", files: generator.Files{}})

	s := productsSchema()
	// An unrecognized spelling lands on KindText with known=false upstream;
	// a kind outside the closed set is what FindGaps reports on.
	s.Tables[0].Columns = append(s.Tables[0].Columns, schema.Column{
		Name: "blob_of_mystery", Kind: scalar.Kind(99), Nullable: true,
	})

	e := New(registry, naming.Default(), nil)
	result, err := e.Run(context.Background(), s, []Target{{Language: "go", Framework: "gin"}})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)
	require.Len(t, result.Targets[0].Warnings, 1)
	assert.Contains(t, result.Targets[0].Warnings[0], "blob_of_mystery")
	assert.Contains(t, result.Targets[0].Warnings[0], "unknown(99)", "warning names the stray kind")
}

// The full pipeline: every real backend generates the same two-table store.
func TestRunAllBackends(t *testing.T) {
	namer := naming.Default()
	registry := generator.NewRegistry()
	registry.Register(gogen.New(namer))
	registry.Register(javagen.New(namer))
	registry.Register(tsgen.New(namer))
	registry.Register(gqlgen.New(namer))

	e := New(registry, namer, nil)
	result, err := e.Run(context.Background(), productsSchema(), []Target{
		{Language: "go"},
		{Language: "java"},
		{Language: "typescript"},
		{Language: "graphql"},
	})
	require.NoError(t, err)
	require.Len(t, result.Targets, 4)

	for _, target := range result.Targets {
		require.NoError(t, target.Err, target.Language)
		assert.NotEmpty(t, target.Files, target.Language)
		assert.Empty(t, target.Warnings, target.Language)
	}

	byLang := map[string]generator.Files{}
	for _, target := range result.Targets {
		byLang[target.Language] = target.Files
	}

	assert.Regexp(t, `Id\s+int64`, byLang["go"]["internal/models/product.go"])
	assert.Regexp(t, `Price\s+\*string`, byLang["go"]["internal/models/product.go"])
	assert.Contains(t, byLang["java"]["src/main/java/com/example/app/entity/Product.java"], "private Long id;")
	assert.Contains(t, byLang["java"]["src/main/java/com/example/app/entity/Product.java"], "private BigDecimal price;")
	assert.Contains(t, byLang["typescript"]["src/product/product.entity.ts"], "id: number;")
	assert.Contains(t, byLang["typescript"]["src/product/product.entity.ts"], "price: string | null;")
	assert.Contains(t, byLang["graphql"]["schema.graphql"], "id: ID!")
	assert.Contains(t, byLang["graphql"]["schema.graphql"], "price: Float")
}
