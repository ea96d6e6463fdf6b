package meta

import (
	"os"
	"strings"
)

const envPrefix = "${env."

// expandEnvExpr replaces ${env.NAME} with the value of the NAME environment
// variable; ${env.NAME:-fallback} uses fallback when NAME is unset or empty.
// An unterminated or malformed expression is kept verbatim.
func expandEnvExpr(value string) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var out strings.Builder
	out.Grow(len(value))
	for {
		start := strings.Index(value, envPrefix)
		if start < 0 {
			out.WriteString(value)
			return out.String()
		}
		out.WriteString(value[:start])
		rest := value[start+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			out.WriteString(value[start:])
			return out.String()
		}
		name, fallback, hasFallback := strings.Cut(rest[:end], ":-")
		if !isEnvName(name) {
			out.WriteString(envPrefix)
			value = rest
			continue
		}
		resolved := os.Getenv(name)
		if resolved == "" && hasFallback {
			resolved = fallback
		}
		out.WriteString(resolved)
		value = rest[end+1:]
	}
}

func isEnvName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
