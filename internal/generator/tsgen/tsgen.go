// Package tsgen emits a TypeScript/NestJS project skeleton with TypeORM
// entities, NestJS services and controllers, and an initial SQL migration.
package tsgen

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"schemaforge/internal/generator"
	"schemaforge/internal/naming"
	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
	"schemaforge/internal/typemap"
)

var presets = generator.Presets{
	"standard": {"srcDir": "src"},
	"service":  {"srcDir": "src", "port": "3000"},
}

// Generator is the typescript/nestjs project generator.
type Generator struct {
	namer  *naming.Namer
	mapper typemap.TypeScriptMapper
}

// New returns a typescript/nestjs generator using the given namer.
func New(namer *naming.Namer) *Generator {
	return &Generator{namer: namer}
}

func (g *Generator) Language() string  { return "typescript" }
func (g *Generator) Framework() string { return "nestjs" }

func (g *Generator) Supports(f generator.Feature) bool {
	all := generator.FeatureRepositories | generator.FeatureServices |
		generator.FeatureControllers | generator.FeatureMigrations |
		generator.FeatureTests | generator.FeatureRelationships
	return all.Has(f)
}

// Generate emits a TypeORM entity, a NestJS service, controller, and module
// per table, a test stub per entity, and the initial migration.
func (g *Generator) Generate(ctx context.Context, s *schema.Schema, entities []string, opts generator.Options) (generator.Files, error) {
	tables, err := generator.SelectTables(s, entities)
	if err != nil {
		return nil, err
	}
	srcDir := presets.Resolve(opts, "srcDir", "src")

	files := generator.Files{}
	for _, table := range tables {
		data := g.templateData(s, table)
		dir := srcDir + "/" + data.FileBase + "/"

		for _, artifact := range []struct {
			suffix   string
			template string
		}{
			{".entity.ts", entityTemplate},
			{".service.ts", serviceTemplate},
			{".controller.ts", controllerTemplate},
			{".module.ts", moduleTemplate},
			{".entity.spec.ts", specTemplate},
		} {
			content, err := render(artifact.template, data)
			if err != nil {
				return nil, fmt.Errorf("%s%s: %w", data.FileBase, artifact.suffix, err)
			}
			files[dir+data.FileBase+artifact.suffix] = content
		}
	}

	files[srcDir+"/migrations/0001-init.sql"] = generator.MigrationSQL(s)
	return files, nil
}

type fieldData struct {
	Name      string
	Type      string
	Decorator string
}

type relationData struct {
	Name       string
	Target     string
	TargetFile string
	Decorator  string
	Type       string
}

type tmplData struct {
	Entity    string
	FileBase  string // kebab-ish singular used in file names
	Table     string
	Route     string
	PKType    string
	PKPipe    string // Nest pipe validating the :id parameter, if any
	Fields    []fieldData
	Relations []relationData
	Targets   []relationData // unique relation targets, for imports
}

func render(text string, data tmplData) (string, error) {
	tmpl, err := template.New("ts").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *Generator) templateData(s *schema.Schema, table schema.Table) tmplData {
	entity := g.namer.EntityName(table.Name)
	fileBase := strings.ReplaceAll(g.namer.Singularize(table.Name), "_", "-")

	var fields []fieldData
	for _, col := range table.Columns {
		var typ, decorator string
		if col.PrimaryKey && len(schema.PrimaryKeyColumns(table)) == 1 {
			if schema.SurrogateKey(table, col) {
				typ = g.mapper.PrimaryKeyType()
			} else {
				typ = g.mapper.MapColumnType(col)
			}
			if col.AutoIncrement {
				decorator = "@PrimaryGeneratedColumn()"
			} else {
				decorator = fmt.Sprintf("@PrimaryColumn({ name: '%s' })", col.Name)
			}
		} else {
			typ = g.mapper.MapColumnType(col)
			var parts []string
			parts = append(parts, fmt.Sprintf("name: '%s'", col.Name))
			if col.Nullable {
				parts = append(parts, "nullable: true")
			}
			if col.Unique {
				parts = append(parts, "unique: true")
			}
			decorator = fmt.Sprintf("@Column({ %s })", strings.Join(parts, ", "))
		}
		fields = append(fields, fieldData{
			Name:      fieldName(col.Name),
			Type:      typ,
			Decorator: decorator,
		})
	}

	var relations []relationData
	seen := map[string]bool{}
	var targets []relationData
	addTarget := func(r relationData) {
		if r.Target != entity && !seen[r.Target] {
			seen[r.Target] = true
			targets = append(targets, r)
		}
	}
	for _, rel := range s.RelationshipsFor(table.Name) {
		target := g.namer.EntityName(rel.TargetTable)
		targetFile := strings.ReplaceAll(g.namer.Singularize(rel.TargetTable), "_", "-")
		name := fieldName(rel.FieldName)
		r := relationData{Name: name, Target: target, TargetFile: targetFile}
		switch rel.Kind {
		case schema.ManyToOne:
			r.Decorator = fmt.Sprintf("@ManyToOne(() => %s)\n  @JoinColumn({ name: '%s' })", target, rel.ForeignKeyColumn)
			r.Type = target
		case schema.OneToOne:
			r.Decorator = fmt.Sprintf("@OneToOne(() => %s)\n  @JoinColumn({ name: '%s' })", target, rel.ForeignKeyColumn)
			r.Type = target
		case schema.OneToMany:
			inverse := fieldName(g.namer.RelationFieldName(rel.ForeignKeyColumn))
			r.Decorator = fmt.Sprintf("@OneToMany(() => %s, (child) => child.%s)", target, inverse)
			r.Type = g.mapper.ListType(target)
		case schema.ManyToMany:
			r.Decorator = fmt.Sprintf("@ManyToMany(() => %s)\n  @JoinTable({ name: '%s' })", target, rel.JunctionTable)
			r.Type = g.mapper.ListType(target)
		}
		relations = append(relations, r)
		addTarget(r)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Target < targets[j].Target })

	pkType, pkPipe := g.keyType(table)
	return tmplData{
		Entity:    entity,
		FileBase:  fileBase,
		Table:     table.Name,
		Route:     table.Name,
		PKType:    pkType,
		PKPipe:    pkPipe,
		Fields:    fields,
		Relations: relations,
		Targets:   targets,
	}
}

// fieldName is the entity property for a column or relation, escaped
// against the TypeScript reserved vocabulary.
func fieldName(name string) string {
	return naming.TypeScriptReserved.Escape(naming.ToUnexported(name))
}

// keyType is the identifier type services and controllers address rows by,
// plus the Nest pipe the controller validates the :id parameter with.
// Surrogate keys widen to the mapper's fixed key type; a declared key such
// as a UUID id keeps its column mapping and arrives as a plain string.
func (g *Generator) keyType(table schema.Table) (typ, pipe string) {
	if pks := schema.PrimaryKeyColumns(table); len(pks) == 1 && !schema.SurrogateKey(table, pks[0]) {
		typ = g.mapper.MapColumnType(pks[0])
		if pks[0].Kind == scalar.KindUUID {
			return typ, "ParseUUIDPipe"
		}
		return typ, ""
	}
	return g.mapper.PrimaryKeyType(), "ParseIntPipe"
}
