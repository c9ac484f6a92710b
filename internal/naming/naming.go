package naming

import (
	"log/slog"
	"strings"
)

// Namer provides all name transformation functions for converting schema
// names to generated-code identifiers. It handles pluralization, reserved
// words, and collisions.
type Namer struct {
	config   Config
	logger   *slog.Logger
	resolver *CollisionResolver
}

// New creates a Namer with the given configuration
func New(cfg Config, logger *slog.Logger) *Namer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Namer{
		config:   cfg,
		logger:   logger,
		resolver: NewCollisionResolver(logger),
	}
}

// Default returns a Namer with default configuration
func Default() *Namer {
	return New(DefaultConfig(), nil)
}

// Reset clears the collision resolver state, allowing the namer to be reused
// for a new generation request.
func (n *Namer) Reset() {
	n.resolver = NewCollisionResolver(n.logger)
}

// ToSnakeCase converts camelCase or PascalCase to snake_case. A separator is
// inserted before each uppercase letter that is not already preceded by an
// uppercase letter or a separator, then the result is lowercased.
// Example: "orderItem" -> "order_item", "HTTPStatus" -> "httpstatus".
func ToSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !isUpper(s[i-1]) && s[i-1] != '_' && s[i-1] != '-' {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		if r == '-' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// ToExported converts a separator-delimited name to PascalCase.
// Example: "user_profiles" -> "UserProfiles"
func ToExported(s string) string {
	parts := splitSeparators(s)
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}

// ToUnexported converts a separator-delimited name to camelCase.
// Example: "user_name" -> "userName"
func ToUnexported(s string) string {
	parts := splitSeparators(s)
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	if len(parts) > 0 && len(parts[0]) > 0 {
		parts[0] = strings.ToLower(parts[0][:1]) + parts[0][1:]
	}
	return strings.Join(parts, "")
}

func splitSeparators(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-'
	})
}

// TableName derives a table name from an entity name: camelCase is split
// into lowercase underscore tokens, then the last token is pluralized.
// Example: "orderItem" -> "order_items"
func (n *Namer) TableName(entity string) string {
	return n.Pluralize(ToSnakeCase(entity))
}

// Pluralize converts a singular word to its plural form using suffix
// heuristics: consonant+"y" -> "ies", s/x/ch/sh endings -> "es", otherwise
// append "s". Irregular plurals are deliberately not handled ("person"
// becomes "persons"); per-word overrides in Config are the only escape
// hatch, since generated output depends on the heuristic's exact behavior.
func (n *Namer) Pluralize(word string) string {
	if override, ok := n.config.PluralOverrides[word]; ok {
		return override
	}
	return pluralizeHeuristic(word)
}

// Singularize is the left-inverse of Pluralize for the regular cases only:
// "ies" -> "y"; "es" dropped only for the ses/xes/ches/shes endings; a
// trailing "s" dropped otherwise. "buses" -> "bus" and "boxes" -> "box"
// round-trip; irregular forms do not.
func (n *Namer) Singularize(word string) string {
	if override, ok := n.config.SingularOverrides[word]; ok {
		return override
	}
	return singularizeHeuristic(word)
}

func pluralizeHeuristic(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	if strings.HasSuffix(lower, "y") && len(word) >= 2 && !isVowel(lower[len(lower)-2]) {
		return word[:len(word)-1] + "ies"
	}
	if strings.HasSuffix(lower, "s") || strings.HasSuffix(lower, "x") ||
		strings.HasSuffix(lower, "ch") || strings.HasSuffix(lower, "sh") {
		return word + "es"
	}
	return word + "s"
}

func singularizeHeuristic(word string) string {
	lower := strings.ToLower(word)
	if strings.HasSuffix(lower, "ies") && len(word) > 3 {
		return word[:len(word)-3] + "y"
	}
	for _, suffix := range []string{"ses", "xes", "ches", "shes"} {
		if strings.HasSuffix(lower, suffix) {
			return word[:len(word)-2]
		}
	}
	if strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && len(word) > 1 {
		return word[:len(word)-1]
	}
	return word
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// RelationFieldName derives the accessor name for a many-to-one relationship
// from the FK column name with common suffixes stripped.
// Example: "author_id" -> "author", "created_by_user_id" -> "created_by_user"
func (n *Namer) RelationFieldName(fkColumn string) string {
	name := fkColumn
	for _, suffix := range []string{"_id", "_fk"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return name
}

// InverseFieldName derives the accessor name for a one-to-many relationship.
// If isOnlyFK is true (single FK from the source table), the pluralized
// table name is used alone. Otherwise the FK column name prefixes it for
// disambiguation.
// Example: isOnlyFK=true: "comments" -> "comments"
// Example: isOnlyFK=false, fkColumn="author_id": "posts" -> "author_posts"
func (n *Namer) InverseFieldName(sourceTable, fkColumn string, isOnlyFK bool) string {
	plural := n.Pluralize(n.Singularize(sourceTable))
	if isOnlyFK {
		return plural
	}
	return n.RelationFieldName(fkColumn) + "_" + plural
}

// ManyToManyFieldName derives the accessor name for a many-to-many
// association: the pluralized target table name.
func (n *Namer) ManyToManyFieldName(targetTable string) string {
	return n.Pluralize(n.Singularize(targetTable))
}

// EntityName derives the singular PascalCase entity name for a table.
// Example: "order_items" -> "OrderItem"
func (n *Namer) EntityName(tableName string) string {
	return ToExported(n.Singularize(tableName))
}

// RegisterEntity registers a table's entity name and returns the resolved
// (collision-suffixed when necessary) name.
func (n *Namer) RegisterEntity(tableName string) string {
	return n.resolver.RegisterEntity(n.EntityName(tableName), tableName)
}

// RegisterField registers a field name within an entity and returns the
// resolved name. Column fields always win precedence over relationship
// fields, so columns must be registered first.
func (n *Namer) RegisterField(entity, fieldName, source string) string {
	return n.resolver.RegisterField(entity, fieldName, source)
}

// FieldExists checks whether a field name is already taken on an entity.
func (n *Namer) FieldExists(entity, fieldName string) bool {
	return n.resolver.FieldExists(entity, fieldName)
}
