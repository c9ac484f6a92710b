package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"schemaforge/internal/naming"
	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// Property is a single property of an entity schema.
type Property struct {
	Type        string    `json:"type" yaml:"type"`
	Format      string    `json:"format" yaml:"format"`
	Ref         string    `json:"$ref" yaml:"$ref"`
	Items       *Property `json:"items" yaml:"items"`
	Enum        []string  `json:"enum" yaml:"enum"`
	MaxLength   int       `json:"maxLength" yaml:"maxLength"`
	Default     string    `json:"default" yaml:"default"`
	Description string    `json:"description" yaml:"description"`
}

// EntitySchema describes one entity in an API-schema document.
type EntitySchema struct {
	Type        string               `json:"type" yaml:"type"`
	Properties  map[string]*Property `json:"properties" yaml:"properties"`
	Required    []string             `json:"required" yaml:"required"`
	Description string               `json:"description" yaml:"description"`
}

// Document is a full API-schema input: named entity schemas whose internal
// references must all be resolvable against the document itself.
type Document struct {
	Entities map[string]*EntitySchema `json:"entities" yaml:"entities"`
}

// ParseDocument decodes an API-schema document from JSON or YAML.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
			return nil, &schema.Error{Source: "apischema", Reason: fmt.Sprintf("document is neither valid JSON (%v) nor valid YAML (%v)", err, yamlErr)}
		}
	}
	if len(doc.Entities) == 0 {
		return nil, &schema.Error{Source: "apischema", Reason: "document declares no entities"}
	}
	return &doc, nil
}

// Converter turns API-schema entities into canonical tables. It owns the
// table-name derivation so references by entity name and references by
// derived table name resolve identically.
type Converter struct {
	namer *naming.Namer
}

// NewConverter creates a Converter. A nil namer uses the default naming
// configuration.
func NewConverter(namer *naming.Namer) *Converter {
	if namer == nil {
		namer = naming.Default()
	}
	return &Converter{namer: namer}
}

// ConvertDocument converts every entity of a document into one canonical
// Schema, including the junction tables synthesized for array-of-reference
// properties. Entity order is alphabetical by name so the same document
// always yields a structurally identical schema.
func (c *Converter) ConvertDocument(ctx context.Context, doc *Document) (*schema.Schema, error) {
	_, span := startSpan(ctx, "ingest.convert_document")
	defer span.End()

	names := make([]string, 0, len(doc.Entities))
	for name := range doc.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	s := &schema.Schema{}
	var junctions []schema.Table
	for _, name := range names {
		table, extras, err := c.convertEntity(name, doc.Entities[name], doc.Entities)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		s.Tables = append(s.Tables, *table)
		junctions = append(junctions, extras...)
	}
	// Junction tables go last so both endpoints are declared before them.
	// A pair referenced from both sides yields one junction, not two.
	linked := make(map[string]bool)
	for _, j := range junctions {
		left := j.ForeignKeys[0].ReferencedTable
		right := j.ForeignKeys[1].ReferencedTable
		if linked[left+"|"+right] || linked[right+"|"+left] {
			continue
		}
		linked[left+"|"+right] = true
		s.Tables = append(s.Tables, j)
	}

	if err := s.Validate(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return s, nil
}

// Convert converts a single named entity into a canonical table. The allSchemas
// map is the full document's entity set, used to resolve references; a
// reference that resolves to no declared entity aborts the conversion.
func (c *Converter) Convert(name string, raw *EntitySchema, allSchemas map[string]*EntitySchema) (*schema.Table, error) {
	table, _, err := c.convertEntity(name, raw, allSchemas)
	return table, err
}

func (c *Converter) convertEntity(name string, raw *EntitySchema, allSchemas map[string]*EntitySchema) (*schema.Table, []schema.Table, error) {
	if raw == nil {
		return nil, nil, &schema.Error{Source: "apischema", Table: name, Reason: "entity schema is empty"}
	}
	if raw.Type != "" && raw.Type != "object" {
		return nil, nil, &schema.Error{Source: "apischema", Table: name, Reason: fmt.Sprintf("entity must be an object schema, got %q", raw.Type)}
	}

	tableName := c.namer.TableName(name)
	table := &schema.Table{
		Name:    tableName,
		Comment: raw.Description,
	}

	required := make(map[string]bool, len(raw.Required))
	for _, r := range raw.Required {
		required[r] = true
	}

	propNames := make([]string, 0, len(raw.Properties))
	for prop := range raw.Properties {
		propNames = append(propNames, prop)
	}
	sort.Strings(propNames)
	// The id property, when present, leads the column list.
	sort.SliceStable(propNames, func(i, j int) bool {
		return strings.EqualFold(propNames[i], "id") && !strings.EqualFold(propNames[j], "id")
	})

	var junctions []schema.Table
	for _, propName := range propNames {
		prop := raw.Properties[propName]
		if prop == nil {
			return nil, nil, &schema.Error{Source: "apischema", Table: name, Reason: fmt.Sprintf("property %q has no schema", propName)}
		}

		switch {
		case strings.EqualFold(propName, "id"):
			// The id property is the primary key regardless of its declared type.
			kind := scalar.KindBigInt
			if prop.Type != "" {
				kind, _ = scalar.ParseJSONType(prop.Type, prop.Format)
				if !kind.IsNumeric() && kind != scalar.KindUUID {
					kind = scalar.KindBigInt
				}
			}
			table.Columns = append(table.Columns, schema.Column{
				Name:          "id",
				Kind:          kind,
				RawType:       prop.Type,
				PrimaryKey:    true,
				AutoIncrement: kind == scalar.KindBigInt || kind == scalar.KindInt,
				Comment:       prop.Description,
			})

		case prop.Ref != "":
			target, err := c.resolveReference(name, propName, prop.Ref, allSchemas)
			if err != nil {
				return nil, nil, err
			}
			columnName := naming.ToSnakeCase(propName) + "_id"
			table.Columns = append(table.Columns, schema.Column{
				Name:     columnName,
				Kind:     scalar.KindBigInt,
				RawType:  "bigint",
				Nullable: true,
				Comment:  prop.Description,
			})
			table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKey{
				ColumnName:       columnName,
				ReferencedTable:  target,
				ReferencedColumn: "id",
				ConstraintName:   fmt.Sprintf("fk_%s_%s", tableName, columnName),
			})

		case prop.Type == "array" && prop.Items != nil && prop.Items.Ref != "":
			// Array-of-reference properties are not columns: the association
			// is deferred to relationship resolution through a synthesized
			// pure junction table.
			target, err := c.resolveReference(name, propName, prop.Items.Ref, allSchemas)
			if err != nil {
				return nil, nil, err
			}
			junctions = append(junctions, c.junctionTable(tableName, target))

		default:
			col, err := c.convertProperty(name, propName, prop, required[propName])
			if err != nil {
				return nil, nil, err
			}
			table.Columns = append(table.Columns, *col)
		}
	}

	ensurePrimaryKey(table)
	return table, junctions, nil
}

func (c *Converter) convertProperty(entity, propName string, prop *Property, isRequired bool) (*schema.Column, error) {
	if prop.Type == "array" {
		return nil, &schema.Error{Source: "apischema", Table: entity, Reason: fmt.Sprintf("property %q is an array without an entity reference", propName)}
	}
	kind, _ := scalar.ParseJSONType(prop.Type, prop.Format)
	if len(prop.Enum) > 0 {
		kind = scalar.KindEnum
	}
	col := &schema.Column{
		Name:       naming.ToSnakeCase(propName),
		Kind:       kind,
		RawType:    prop.Type,
		Nullable:   !isRequired,
		Length:     prop.MaxLength,
		EnumValues: append([]string(nil), prop.Enum...),
		Comment:    prop.Description,
	}
	if prop.Default != "" {
		col.HasDefault = true
		col.Default = prop.Default
	}
	return col, nil
}

// resolveReference maps a $ref value to a declared entity's table name.
// The last path segment is matched against entity names first and derived
// table names second; anything else is a dangling reference.
func (c *Converter) resolveReference(entity, propName, ref string, allSchemas map[string]*EntitySchema) (string, error) {
	target := ref
	if idx := strings.LastIndex(target, "/"); idx != -1 {
		target = target[idx+1:]
	}
	if _, ok := allSchemas[target]; ok {
		return c.namer.TableName(target), nil
	}
	derived := c.namer.TableName(target)
	for name := range allSchemas {
		if c.namer.TableName(name) == derived {
			return derived, nil
		}
	}
	return "", &schema.Error{
		Source: "apischema",
		Table:  entity,
		Reason: fmt.Sprintf("property %q references undeclared entity %q", propName, ref),
	}
}

// junctionTable synthesizes the pure junction table for an array-of-reference
// property: two NOT NULL wide-integer FK columns with a covering unique index.
func (c *Converter) junctionTable(leftTable, rightTable string) schema.Table {
	name := leftTable + "_" + c.namer.Singularize(rightTable) + "s"
	leftCol := c.namer.Singularize(leftTable) + "_id"
	rightCol := c.namer.Singularize(rightTable) + "_id"
	return schema.Table{
		Name: name,
		Columns: []schema.Column{
			{Name: leftCol, Kind: scalar.KindBigInt, RawType: "bigint", PrimaryKey: true},
			{Name: rightCol, Kind: scalar.KindBigInt, RawType: "bigint", PrimaryKey: true},
		},
		ForeignKeys: []schema.ForeignKey{
			{ColumnName: leftCol, ReferencedTable: leftTable, ReferencedColumn: "id", ConstraintName: fmt.Sprintf("fk_%s_%s", name, leftCol)},
			{ColumnName: rightCol, ReferencedTable: rightTable, ReferencedColumn: "id", ConstraintName: fmt.Sprintf("fk_%s_%s", name, rightCol)},
		},
		Indexes: []schema.Index{
			{Name: "uq_" + name, Unique: true, Columns: []string{leftCol, rightCol}},
		},
	}
}
