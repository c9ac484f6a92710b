package schema

import "fmt"

// Error reports malformed or unresolvable schema input. A generation request
// that hits one aborts before any generator runs; no partial schema is
// produced or consumed downstream.
type Error struct {
	Source string // input document or front-end name, when known
	Table  string // offending table, when known
	Reason string
}

func (e *Error) Error() string {
	switch {
	case e.Source != "" && e.Table != "":
		return fmt.Sprintf("schema error in %s, table %s: %s", e.Source, e.Table, e.Reason)
	case e.Table != "":
		return fmt.Sprintf("schema error in table %s: %s", e.Table, e.Reason)
	case e.Source != "":
		return fmt.Sprintf("schema error in %s: %s", e.Source, e.Reason)
	default:
		return "schema error: " + e.Reason
	}
}
