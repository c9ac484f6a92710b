package naming

import "strings"

// ReservedSet is a backend's reserved-word vocabulary together with its
// deterministic escape policy. Escaping is guaranteed to produce a name
// distinct from every reserved word and recognizable to a human reader.
type ReservedSet struct {
	words  map[string]bool
	suffix string
}

// NewReservedSet builds a set from word list and escape suffix. Matching is
// case-insensitive.
func NewReservedSet(suffix string, words ...string) ReservedSet {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return ReservedSet{words: set, suffix: suffix}
}

// IsReserved reports whether the name collides with a reserved word.
func (r ReservedSet) IsReserved(name string) bool {
	return r.words[strings.ToLower(name)]
}

// Escape rewrites a colliding identifier by appending the backend's suffix
// marker. Non-colliding names pass through unchanged. The operation is
// idempotent in effect: the suffixed form is never itself reserved.
func (r ReservedSet) Escape(name string) string {
	if r.IsReserved(name) {
		return name + r.suffix
	}
	return name
}

// Per-backend reserved vocabularies. Each generator escapes identifiers
// against its own set; the shared engine never escapes.
var (
	// GoReserved covers Go keywords plus predeclared identifiers that would
	// shadow badly in generated code.
	GoReserved = NewReservedSet("_",
		"break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select", "struct",
		"switch", "type", "var",
		"string", "int", "error", "true", "false", "nil",
	)

	// JavaReserved covers Java language keywords and literals.
	JavaReserved = NewReservedSet("_",
		"abstract", "assert", "boolean", "break", "byte", "case", "catch",
		"char", "class", "const", "continue", "default", "do", "double",
		"else", "enum", "extends", "final", "finally", "float", "for",
		"goto", "if", "implements", "import", "instanceof", "int",
		"interface", "long", "native", "new", "package", "private",
		"protected", "public", "return", "short", "static", "strictfp",
		"super", "switch", "synchronized", "this", "throw", "throws",
		"transient", "try", "void", "volatile", "while",
		"true", "false", "null",
	)

	// TypeScriptReserved covers TypeScript/ECMAScript reserved words.
	TypeScriptReserved = NewReservedSet("_",
		"break", "case", "catch", "class", "const", "continue", "debugger",
		"default", "delete", "do", "else", "enum", "export", "extends",
		"false", "finally", "for", "function", "if", "import", "in",
		"instanceof", "new", "null", "return", "super", "switch", "this",
		"throw", "true", "try", "typeof", "var", "void", "while", "with",
		"implements", "interface", "let", "package", "private", "protected",
		"public", "static", "yield",
	)

	// GraphQLReserved covers GraphQL keywords, built-in scalars, and the
	// introspection prefix.
	GraphQLReserved = NewReservedSet("_",
		"query", "mutation", "subscription", "type", "schema", "scalar",
		"enum", "input", "interface", "union", "fragment", "directive",
		"extend", "implements", "on",
		"int", "float", "string", "boolean", "id",
		"true", "false", "null",
	)

	// SQLReserved covers the ANSI keywords that commonly collide with
	// entity-derived table and column names in migrations.
	SQLReserved = NewReservedSet("_",
		"select", "insert", "update", "delete", "from", "where", "group",
		"order", "by", "having", "join", "union", "table", "index", "key",
		"primary", "foreign", "references", "constraint", "create", "drop",
		"alter", "grant", "user", "default", "check", "column", "values",
	)
)
