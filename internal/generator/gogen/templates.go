package gogen

import (
	"strings"
	"text/template"

	"schemaforge/internal/schema"
)

func newTemplate(name, text string) (*template.Template, error) {
	return template.New(name).Parse(text)
}

type tmplColumn struct {
	Name  string
	Field string
}

type tmplData struct {
	Module       string
	Entity       string
	Table        string
	Route        string
	PKField      string
	PKColumn     string
	PKType       string
	PKImport     string // extra import the key type needs, if any
	ParseID      string // expression parsing the :id route parameter
	SelectList   string
	ScanFields   string
	InsertList   string
	Placeholders string
	InsertFields string
}

func (g *Generator) templateData(s *schema.Schema, table schema.Table, module string) tmplData {
	entity := g.namer.EntityName(table.Name)

	pkColumn := "id"
	if pk := schema.PrimaryKeyColumn(table); pk != nil {
		pkColumn = pk.Name
	}

	var selectCols, scanFields, insertCols, insertFields, placeholders []string
	for _, col := range table.Columns {
		field := fieldName(col.Name)
		selectCols = append(selectCols, "`"+col.Name+"`")
		scanFields = append(scanFields, "&m."+field)
		if col.AutoIncrement {
			continue
		}
		insertCols = append(insertCols, "`"+col.Name+"`")
		insertFields = append(insertFields, "m."+field)
		placeholders = append(placeholders, "?")
	}

	pkType, pkImport, parseID := g.keyType(table)
	return tmplData{
		Module:       module,
		Entity:       entity,
		Table:        table.Name,
		Route:        "/" + table.Name,
		PKField:      fieldName(pkColumn),
		PKColumn:     pkColumn,
		PKType:       pkType,
		PKImport:     pkImport,
		ParseID:      parseID,
		SelectList:   strings.Join(selectCols, ", "),
		ScanFields:   strings.Join(scanFields, ", "),
		InsertList:   strings.Join(insertCols, ", "),
		Placeholders: strings.Join(placeholders, ", "),
		InsertFields: strings.Join(insertFields, ", "),
	}
}

// keyType is the identifier type the repository, service, and handler
// address rows by, plus the import it pulls in and the expression the
// handler uses to parse the :id route parameter. Surrogate keys widen to
// the mapper's fixed key type; declared UUID and text keys keep their
// column mapping and its string-shaped parsing.
func (g *Generator) keyType(table schema.Table) (typ, imp, parseID string) {
	if pks := schema.PrimaryKeyColumns(table); len(pks) == 1 && !schema.SurrogateKey(table, pks[0]) {
		switch g.mapper.MapColumnType(pks[0]) {
		case "uuid.UUID":
			return "uuid.UUID", "github.com/google/uuid", `uuid.Parse(c.Param("id"))`
		case "string":
			return "string", "", `c.Param("id"), error(nil)`
		}
	}
	return g.mapper.PrimaryKeyType(), "", `strconv.ParseInt(c.Param("id"), 10, 64)`
}

const repositoryTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package repository

import (
	"context"
	"database/sql"
	"fmt"
{{if .PKImport}}
	"{{.PKImport}}"
{{end}}
	"{{.Module}}/internal/models"
)

// {{.Entity}}Repository provides row access for the {{.Table}} table.
type {{.Entity}}Repository struct {
	db *sql.DB
}

func New{{.Entity}}Repository(db *sql.DB) *{{.Entity}}Repository {
	return &{{.Entity}}Repository{db: db}
}

func (r *{{.Entity}}Repository) GetByID(ctx context.Context, id {{.PKType}}) (*models.{{.Entity}}, error) {
	row := r.db.QueryRowContext(ctx, "SELECT {{.SelectList}} FROM ` + "`{{.Table}}`" + ` WHERE ` + "`{{.PKColumn}}`" + ` = ?", id)
	var m models.{{.Entity}}
	if err := row.Scan({{.ScanFields}}); err != nil {
		return nil, fmt.Errorf("get {{.Table}} by id: %w", err)
	}
	return &m, nil
}

func (r *{{.Entity}}Repository) List(ctx context.Context, limit, offset int) ([]*models.{{.Entity}}, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT {{.SelectList}} FROM ` + "`{{.Table}}`" + ` LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list {{.Table}}: %w", err)
	}
	defer rows.Close()

	var out []*models.{{.Entity}}
	for rows.Next() {
		var m models.{{.Entity}}
		if err := rows.Scan({{.ScanFields}}); err != nil {
			return nil, fmt.Errorf("scan {{.Table}} row: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *{{.Entity}}Repository) Create(ctx context.Context, m *models.{{.Entity}}) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO ` + "`{{.Table}}`" + ` ({{.InsertList}}) VALUES ({{.Placeholders}})",
		{{.InsertFields}},
	)
	if err != nil {
		return fmt.Errorf("insert {{.Table}}: %w", err)
	}
	return nil
}

func (r *{{.Entity}}Repository) Delete(ctx context.Context, id {{.PKType}}) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM ` + "`{{.Table}}`" + ` WHERE ` + "`{{.PKColumn}}`" + ` = ?", id); err != nil {
		return fmt.Errorf("delete {{.Table}}: %w", err)
	}
	return nil
}
`

const serviceTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package service

import (
	"context"
{{if .PKImport}}
	"{{.PKImport}}"
{{end}}
	"{{.Module}}/internal/models"
	"{{.Module}}/internal/repository"
)

// {{.Entity}}Service wraps {{.Entity}}Repository with application logic.
type {{.Entity}}Service struct {
	repo *repository.{{.Entity}}Repository
}

func New{{.Entity}}Service(repo *repository.{{.Entity}}Repository) *{{.Entity}}Service {
	return &{{.Entity}}Service{repo: repo}
}

func (s *{{.Entity}}Service) Get(ctx context.Context, id {{.PKType}}) (*models.{{.Entity}}, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *{{.Entity}}Service) List(ctx context.Context, limit, offset int) ([]*models.{{.Entity}}, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *{{.Entity}}Service) Create(ctx context.Context, m *models.{{.Entity}}) error {
	return s.repo.Create(ctx, m)
}

func (s *{{.Entity}}Service) Delete(ctx context.Context, id {{.PKType}}) error {
	return s.repo.Delete(ctx, id)
}
`

const handlerTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
{{if .PKImport}}	"{{.PKImport}}"
{{end}}

	"{{.Module}}/internal/models"
	"{{.Module}}/internal/service"
)

// {{.Entity}}Handler exposes {{.Table}} over HTTP.
type {{.Entity}}Handler struct {
	svc *service.{{.Entity}}Service
}

func New{{.Entity}}Handler(svc *service.{{.Entity}}Service) *{{.Entity}}Handler {
	return &{{.Entity}}Handler{svc: svc}
}

func (h *{{.Entity}}Handler) Register(r gin.IRouter) {
	r.GET("{{.Route}}/:id", h.get)
	r.GET("{{.Route}}", h.list)
	r.POST("{{.Route}}", h.create)
	r.DELETE("{{.Route}}/:id", h.delete)
}

func (h *{{.Entity}}Handler) get(c *gin.Context) {
	id, err := {{.ParseID}}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	m, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *{{.Entity}}Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	out, err := h.svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *{{.Entity}}Handler) create(c *gin.Context) {
	var m models.{{.Entity}}
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Create(c.Request.Context(), &m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *{{.Entity}}Handler) delete(c *gin.Context) {
	id, err := {{.ParseID}}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
`

const modelTestTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package models

import "testing"

func Test{{.Entity}}TableName(t *testing.T) {
	if got := ({{.Entity}}{}).TableName(); got != "{{.Table}}" {
		t.Fatalf("expected table {{.Table}}, got %s", got)
	}
}
`
