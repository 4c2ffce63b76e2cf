package extract

import (
	"regexp"
	"strings"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// PositionRule maps URL tokens to a position label.
type PositionRule struct {
	Tokens []string `yaml:"tokens" mapstructure:"tokens"`
	Label  string   `yaml:"label" mapstructure:"label"`
}

// DerivedConfig configures DerivedResolver.
type DerivedConfig struct {
	Positions []PositionRule `yaml:"positions" mapstructure:"positions"`
}

// DefaultDerivedConfig returns the position table for the national and
// state legislatures.
func DefaultDerivedConfig() DerivedConfig {
	return DerivedConfig{
		Positions: []PositionRule{
			{Tokens: []string{"Lok Sabha", "LokSabha"}, Label: "Member of Parliament"},
			{Tokens: []string{"Assembly", "MLA"}, Label: "Member of Legislative Assembly"},
		},
	}
}

var (
	reParty     = regexp.MustCompile(`\(([^)]+)\):`)
	reCapsGroup = regexp.MustCompile(`\(([A-Z\s]+)\)`)
	reYear      = regexp.MustCompile(`(20\d{2})`)
)

// TitleParts holds what can be read from a disclosure page title such as
// "RAMESH KUMAR(BJP): WAYANAD(KERALA) - Lok Sabha 2024".
type TitleParts struct {
	Name  string
	Party string
	State string
	Year  string
}

// ParseTitle splits a page title into name, party, state and election year.
// Missing parts are left empty.
func ParseTitle(title string) TitleParts {
	var p TitleParts
	if i := strings.Index(title, "("); i >= 0 {
		p.Name = strings.TrimSpace(title[:i])
	}
	if m := reParty.FindStringSubmatch(title); m != nil {
		p.Party = strings.TrimSpace(m[1])
	}
	for _, loc := range reCapsGroup.FindAllStringSubmatchIndex(title, -1) {
		// "(BJP):" is the party group, not a state.
		if loc[1] < len(title) && title[loc[1]] == ':' {
			continue
		}
		if s := strings.TrimSpace(title[loc[2]:loc[3]]); s != "" {
			p.State = s
			break
		}
	}
	if m := reYear.FindStringSubmatch(title); m != nil {
		p.Year = m[1]
	}
	return p
}

// DerivedResolver fills Name, Party, State and Position from the page title
// and URL.
type DerivedResolver struct {
	positions []PositionRule
}

// NewDerivedResolver creates a DerivedResolver.
func NewDerivedResolver(cfg DerivedConfig) *DerivedResolver {
	return &DerivedResolver{positions: cfg.Positions}
}

// Position returns the label of the first rule with a token in rawURL.
func (r *DerivedResolver) Position(rawURL string) (string, bool) {
	for _, rule := range r.positions {
		for _, tok := range rule.Tokens {
			if tok != "" && strings.Contains(rawURL, tok) {
				return rule.Label, true
			}
		}
	}
	return "", false
}

// Resolve writes the derived fields into bag without replacing anything
// already there. It returns the keys it wrote.
func (r *DerivedResolver) Resolve(title, sourceURL string, bag *model.FieldBag) []string {
	parts := ParseTitle(title)

	var written []string
	set := func(key, value string) {
		if value == "" {
			return
		}
		if bag.SetIfAbsent(model.Field{Key: key, Value: value, SourceURL: sourceURL, Tier: model.TierPrimary}) {
			written = append(written, key)
		}
	}

	set("Name", parts.Name)
	set("State", parts.State)
	if label, ok := r.Position(sourceURL); ok {
		set("Position", label)
	}
	set("Party", parts.Party)
	return written
}
