// Package javagen emits a Java/Spring project skeleton: JPA entities,
// Spring Data repositories, service and controller classes, and a Flyway
// initial migration.
package javagen

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"schemaforge/internal/generator"
	"schemaforge/internal/naming"
	"schemaforge/internal/schema"
	"schemaforge/internal/typemap"
)

const defaultPackage = "com.example.app"

var presets = generator.Presets{
	"standard": {"package": defaultPackage},
	"service":  {"package": defaultPackage, "port": "8080"},
}

// Generator is the java/spring project generator.
type Generator struct {
	namer  *naming.Namer
	mapper typemap.JavaMapper
}

// New returns a java/spring generator using the given namer.
func New(namer *naming.Namer) *Generator {
	return &Generator{namer: namer}
}

func (g *Generator) Language() string  { return "java" }
func (g *Generator) Framework() string { return "spring" }

func (g *Generator) Supports(f generator.Feature) bool {
	all := generator.FeatureRepositories | generator.FeatureServices |
		generator.FeatureControllers | generator.FeatureMigrations |
		generator.FeatureTests | generator.FeatureRelationships
	return all.Has(f)
}

// Generate emits one entity, repository, service, and controller per table,
// plus the initial Flyway migration and a test stub per entity.
func (g *Generator) Generate(ctx context.Context, s *schema.Schema, entities []string, opts generator.Options) (generator.Files, error) {
	tables, err := generator.SelectTables(s, entities)
	if err != nil {
		return nil, err
	}
	basePackage := presets.Resolve(opts, "package", defaultPackage)
	baseDir := "src/main/java/" + strings.ReplaceAll(basePackage, ".", "/")
	testDir := "src/test/java/" + strings.ReplaceAll(basePackage, ".", "/")

	files := generator.Files{}
	for _, table := range tables {
		data := g.templateData(s, table, basePackage)
		entity := data.Entity

		for _, artifact := range []struct {
			dir      string
			suffix   string
			template string
		}{
			{baseDir + "/entity/", ".java", entityTemplate},
			{baseDir + "/repository/", "Repository.java", repositoryTemplate},
			{baseDir + "/service/", "Service.java", serviceTemplate},
			{baseDir + "/controller/", "Controller.java", controllerTemplate},
		} {
			content, err := render(artifact.template, data)
			if err != nil {
				return nil, fmt.Errorf("%s%s for %s: %w", artifact.dir, artifact.suffix, table.Name, err)
			}
			files[artifact.dir+entity+artifact.suffix] = content
		}

		testStub, err := render(entityTestTemplate, data)
		if err != nil {
			return nil, fmt.Errorf("test stub for %s: %w", table.Name, err)
		}
		files[testDir+"/entity/"+entity+"Test.java"] = testStub
	}

	files["src/main/resources/db/migration/V1__init.sql"] = generator.MigrationSQL(s)
	return files, nil
}

type fieldData struct {
	Name       string // Java field name, camelCase
	Column     string // backing column name
	Type       string
	Annotation string
}

type relationData struct {
	Name       string
	Type       string
	Annotation string
	JoinLine   string
}

type tmplData struct {
	Package   string
	Entity    string
	Table     string
	Route     string
	PKType    string
	PKImports []string
	Imports   []string
	Fields    []fieldData
	Relations []relationData
}

func render(text string, data tmplData) (string, error) {
	tmpl, err := template.New("java").Funcs(template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *Generator) templateData(s *schema.Schema, table schema.Table, basePackage string) tmplData {
	entity := g.namer.EntityName(table.Name)

	imports := map[string]bool{}
	var fields []fieldData
	for _, col := range table.Columns {
		var typ string
		if schema.SurrogateKey(table, col) {
			typ = g.mapper.PrimaryKeyType()
		} else {
			typ = g.mapper.MapColumnType(col)
		}
		for _, imp := range g.mapper.RequiredImports(col) {
			imports[imp] = true
		}

		annotation := fmt.Sprintf("@Column(name = \"%s\"", col.Name)
		if !col.Nullable {
			annotation += ", nullable = false"
		}
		if col.Unique {
			annotation += ", unique = true"
		}
		annotation += ")"
		if col.PrimaryKey {
			annotation = "@Id"
			if col.AutoIncrement {
				annotation += "\n    @GeneratedValue(strategy = GenerationType.IDENTITY)"
			}
		}

		fields = append(fields, fieldData{
			Name:       fieldName(col.Name),
			Column:     col.Name,
			Type:       typ,
			Annotation: annotation,
		})
	}

	var relations []relationData
	for _, rel := range s.RelationshipsFor(table.Name) {
		target := g.namer.EntityName(rel.TargetTable)
		name := fieldName(rel.FieldName)
		switch rel.Kind {
		case schema.ManyToOne:
			relations = append(relations, relationData{
				Name:       name,
				Type:       target,
				Annotation: "@ManyToOne(fetch = FetchType.LAZY)",
				JoinLine:   fmt.Sprintf("@JoinColumn(name = \"%s\", insertable = false, updatable = false)", rel.ForeignKeyColumn),
			})
		case schema.OneToOne:
			relations = append(relations, relationData{
				Name:       name,
				Type:       target,
				Annotation: "@OneToOne(fetch = FetchType.LAZY)",
				JoinLine:   fmt.Sprintf("@JoinColumn(name = \"%s\", insertable = false, updatable = false)", rel.ForeignKeyColumn),
			})
		case schema.OneToMany:
			relations = append(relations, relationData{
				Name:       name,
				Type:       "List<" + target + ">",
				Annotation: fmt.Sprintf("@OneToMany(mappedBy = \"%s\")", fieldName(g.namer.RelationFieldName(rel.ForeignKeyColumn))),
			})
			imports["java.util.List"] = true
		case schema.ManyToMany:
			relations = append(relations, relationData{
				Name:       name,
				Type:       "List<" + target + ">",
				Annotation: "@ManyToMany",
				JoinLine:   fmt.Sprintf("@JoinTable(name = \"%s\")", rel.JunctionTable),
			})
			imports["java.util.List"] = true
		}
	}

	sortedImports := make([]string, 0, len(imports))
	for imp := range imports {
		sortedImports = append(sortedImports, imp)
	}
	sort.Strings(sortedImports)

	pkType, pkImports := g.keyType(table)
	return tmplData{
		Package:   basePackage,
		Entity:    entity,
		Table:     table.Name,
		Route:     "/" + table.Name,
		PKType:    pkType,
		PKImports: pkImports,
		Imports:   sortedImports,
		Fields:    fields,
		Relations: relations,
	}
}

// fieldName is the camelCase entity field for a column or relation, escaped
// against the Java reserved vocabulary.
func fieldName(name string) string {
	return naming.JavaReserved.Escape(naming.ToUnexported(name))
}

// keyType is the identifier type repositories, services, and controllers
// address rows by. Surrogate keys widen to the mapper's fixed key type;
// a declared key such as a UUID id keeps its column mapping.
func (g *Generator) keyType(table schema.Table) (string, []string) {
	if pks := schema.PrimaryKeyColumns(table); len(pks) == 1 && !schema.SurrogateKey(table, pks[0]) {
		return g.mapper.MapColumnType(pks[0]), g.mapper.RequiredImports(pks[0])
	}
	return g.mapper.PrimaryKeyType(), g.mapper.PrimaryKeyImports()
}
