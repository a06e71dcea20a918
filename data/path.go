package data

import (
	"path"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// MaxComponentLength is the maximum length of a single path component in bytes.
const MaxComponentLength = 255

// Sanitize normalizes a virtual path into its canonical form.
// Separators are unified to '/', leading and trailing separators and the
// characters "*:<>?| are removed (asterisks survive if allowWildcards is set),
// whitespace around components is trimmed, components made of three or more
// dots become "." and components are truncated to MaxComponentLength.
// Parent references ("..") are kept; Split and Combine resolve them.
func Sanitize(p string, allowWildcards bool) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = stripReserved(p, allowWildcards)

	parts := strings.Split(p, "/")
	components := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) > MaxComponentLength {
			part = strings.TrimSpace(truncate(part, MaxComponentLength))
		}
		if part == "" {
			continue
		}
		if len(part) > 2 && strings.Trim(part, ".") == "" {
			part = "."
		}
		components = append(components, part)
	}

	return strings.Join(components, "/")
}

// stripReserved removes reserved characters byte by byte, leaving invalid
// UTF-8 untouched.
func stripReserved(p string, allowWildcards bool) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '"', ':', '<', '>', '?', '|':
		case '*':
			if allowWildcards {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for i := n; i > n-utf8.UTFMax && i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return s[:i]
		}
	}
	return s[:n]
}

// Split returns the ordered components of the sanitized path with "." and
// ".." resolved. Parent references never climb above the root.
func Split(p string) []string {
	return split(Sanitize(p, false))
}

// SplitPattern works like Split but keeps wildcards.
func SplitPattern(p string) []string {
	return split(Sanitize(p, true))
}

func split(sanitized string) []string {
	resolved := strings.TrimPrefix(path.Clean("/"+sanitized), "/")
	if resolved == "" {
		return []string{}
	}
	return strings.Split(resolved, "/")
}

// Combine resolves every part relative to the result accumulated so far,
// starting at base, and returns the canonical path.
func Combine(base string, parts ...string) string {
	elems := make([]string, 0, len(parts)+2)
	elems = append(elems, "/", Sanitize(base, true))
	for _, part := range parts {
		elems = append(elems, Sanitize(part, true))
	}

	return strings.TrimPrefix(path.Join(elems...), "/")
}

// Join joins components into a virtual path.
func Join(components []string) string {
	return strings.Join(components, "/")
}

// GetName returns the final component of p, or "root" for the root itself.
func GetName(p string) string {
	components := Split(p)
	if len(components) == 0 {
		return "root"
	}
	return components[len(components)-1]
}

// GetDir returns the parent directory of p, or ".." for the root itself.
func GetDir(p string) string {
	components := Split(p)
	if len(components) == 0 {
		return ".."
	}
	return Join(components[:len(components)-1])
}

// HasPrefix checks if components starts with prefix.
func HasPrefix(components, prefix []string) bool {
	if len(prefix) > len(components) {
		return false
	}
	return slices.Equal(components[:len(prefix)], prefix)
}

// IsWildcard checks if a path component contains a wildcard.
func IsWildcard(component string) bool {
	return strings.Contains(component, "*")
}

// MatchComponent reports whether name matches a component pattern where
// '*' matches any run of characters.
func MatchComponent(pattern, name string) bool {
	if !IsWildcard(pattern) {
		return pattern == name
	}

	quoted := regexp.QuoteMeta(pattern)
	expr := "^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}
