// Package rank normalizes discount payloads and produces the two ranked
// merchant lists.
package rank

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// emptyArraySentinel is how the legacy catalog exporter spells an empty array.
const emptyArraySentinel = "System.Object[]"

// ParseRecord parses a stringified ".NET-style" record such as
//
//	@{kind=PERCENT; amount=20.0; maxAmount=; unitRule=@{unitAmount=1000; perUnitValue=150}}
//
// into a map. Empty values become nil, True/False become bools, numbers are
// coerced to float64, the System.Object[] sentinel becomes an empty slice,
// and nested @{...} groups recurse.
func ParseRecord(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@{") || !strings.HasSuffix(s, "}") {
		return nil, eris.Errorf("record: not a @{...} group: %q", truncate(s, 40))
	}
	body := s[2 : len(s)-1]

	out := make(map[string]any)
	for _, field := range splitTopLevel(body, ';') {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		eq := indexTopLevel(field, '=')
		if eq < 0 {
			return nil, eris.Errorf("record: field without '=': %q", truncate(field, 40))
		}
		key := strings.TrimSpace(field[:eq])
		if key == "" {
			return nil, eris.New("record: empty field name")
		}
		value, err := parseValue(strings.TrimSpace(field[eq+1:]))
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// FormatRecord serializes a map back into the @{...} form with sorted keys.
// ParseRecord(FormatRecord(m)) reproduces m.
func FormatRecord(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("@{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(m[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func parseValue(s string) (any, error) {
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "@{"):
		return ParseRecord(s)
	case s == emptyArraySentinel:
		return []any{}, nil
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return s, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case map[string]any:
		return FormatRecord(t)
	case []any:
		if len(t) == 0 {
			return emptyArraySentinel
		}
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, " ")
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(strings.ReplaceAll(asString(v), ";", ","))
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// splitTopLevel splits on sep, ignoring separators inside @{...} groups.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// indexTopLevel finds the first occurrence of c outside @{...} groups.
func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
