package scalar

import (
	"fmt"
	"strings"
)

// ParseEnumValues extracts the member list from an enum or set type spelling
// such as enum('a','b','it''s'). Backslash escapes and doubled quotes inside
// members are unescaped.
func ParseEnumValues(columnType string) ([]string, error) {
	trimmed := strings.TrimSpace(columnType)
	lower := strings.ToLower(trimmed)
	open := strings.Index(lower, "(")
	if open == -1 || !strings.HasSuffix(lower, ")") {
		return nil, fmt.Errorf("invalid enum definition %q", columnType)
	}

	definition := trimmed[open+1 : len(trimmed)-1]
	var values []string
	i := 0
	for i < len(definition) {
		for i < len(definition) && (definition[i] == ' ' || definition[i] == ',') {
			i++
		}
		if i >= len(definition) {
			break
		}
		if definition[i] != '\'' {
			return nil, fmt.Errorf("expected quote at position %d in %q", i, columnType)
		}
		i++
		var sb strings.Builder
		for i < len(definition) {
			ch := definition[i]
			if ch == '\\' {
				if i+1 >= len(definition) {
					return nil, fmt.Errorf("unterminated escape in %q", columnType)
				}
				sb.WriteByte(definition[i+1])
				i += 2
				continue
			}
			if ch == '\'' {
				if i+1 < len(definition) && definition[i+1] == '\'' {
					sb.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			sb.WriteByte(ch)
			i++
		}
		values = append(values, sb.String())
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no members in %q", columnType)
	}
	return values, nil
}
