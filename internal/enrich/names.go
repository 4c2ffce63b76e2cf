// Package enrich adapts the knowledge-graph and encyclopedia clients into
// resolver sources.
package enrich

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName prepares a disclosure-page name for external lookups.
// Whitespace is collapsed, the string is NFC-normalized, and all-caps names
// are title-cased so they match English labels. Mixed-case names are kept.
func NormalizeName(name string) string {
	name = norm.NFC.String(strings.Join(strings.Fields(name), " "))
	if name == "" {
		return ""
	}
	if name == strings.ToUpper(name) && name != strings.ToLower(name) {
		// Casers hold state and are not safe for concurrent use.
		name = cases.Title(language.English).String(name)
	}
	return name
}
