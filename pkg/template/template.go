package template

import "regexp"

// placeholderRE matches {{ VAR }} with optional inner spaces. The
// variable token follows identifier rules: a leading letter or
// underscore, then letters, digits, or underscores.
var placeholderRE = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Apply substitutes every {{ VAR }} placeholder in input with the value
// of VAR from env. Unknown variables expand to the empty string.
// Sequences that merely resemble placeholders (bad token, unbalanced
// braces) are left verbatim. The scan is single-pass: substituted values
// are never re-expanded.
func Apply(input string, env map[string]string) string {
	return placeholderRE.ReplaceAllStringFunc(input, func(match string) string {
		name := placeholderRE.FindStringSubmatch(match)[1]
		return env[name]
	})
}
