package behavior

import (
	"strings"
	"unicode"
)

// ValidName reports whether name can appear as a token in a module
// declaration: it must be non-empty and contain no whitespace.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, unicode.IsSpace) < 0
}

// SplitNames splits a module declaration into module names. Any run of
// whitespace separates names and empty tokens are dropped.
func SplitNames(decl string) []string {
	return strings.Fields(decl)
}
