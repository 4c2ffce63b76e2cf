// Package cases classifies the related-records block of a disclosure page
// into a conviction summary.
package cases

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// Rule assigns a disposition to rows containing any of its terms.
type Rule struct {
	Disposition model.Disposition `yaml:"disposition" mapstructure:"disposition"`
	Terms       []string          `yaml:"terms" mapstructure:"terms"`
}

// Config holds the classifier's keyword tables. Rules are consulted in
// order; the first match decides a row.
type Config struct {
	BoxTerms      []string `yaml:"box_terms" mapstructure:"box_terms"`
	Placeholders  []string `yaml:"placeholders" mapstructure:"placeholders"`
	Rules         []Rule   `yaml:"rules" mapstructure:"rules"`
	UnknownMarker string   `yaml:"unknown_marker" mapstructure:"unknown_marker"`
	MinLength     int      `yaml:"min_length" mapstructure:"min_length"`
}

// DefaultConfig returns the keyword tables for Indian affidavit disclosures.
// Convicted outranks Acquitted, which outranks Pending.
func DefaultConfig() Config {
	return Config{
		BoxTerms:     []string{"conviction", "convicted", "sentence", "punishment"},
		Placeholders: []string{"-", "nil", "none", "na", "n/a"},
		Rules: []Rule{
			{Disposition: model.DispositionConvicted, Terms: []string{"convicted", "conviction", "guilty"}},
			{Disposition: model.DispositionAcquitted, Terms: []string{"acquitted", "discharged", "not guilty"}},
			{Disposition: model.DispositionPending, Terms: []string{"pending", "under trial", "ongoing", "not disposed"}},
		},
		UnknownMarker: `(fir|case|cr\.?\s*no|complaint|charges?)`,
		MinLength:     10,
	}
}

// compiled is Config lowered and ready for matching.
type compiled struct {
	boxTerms     []string
	placeholders map[string]struct{}
	rules        []Rule
	unknown      *regexp.Regexp
	minLength    int
}

func compile(cfg Config) (*compiled, error) {
	c := &compiled{
		boxTerms:     lowerAll(cfg.BoxTerms),
		placeholders: make(map[string]struct{}),
		minLength:    cfg.MinLength,
	}
	for _, p := range lowerAll(cfg.Placeholders) {
		c.placeholders[p] = struct{}{}
	}
	for _, r := range cfg.Rules {
		c.rules = append(c.rules, Rule{Disposition: r.Disposition, Terms: lowerAll(r.Terms)})
	}
	if cfg.UnknownMarker != "" {
		re, err := regexp.Compile("(?i)" + cfg.UnknownMarker)
		if err != nil {
			return nil, eris.Wrap(err, "cases: compile unknown marker")
		}
		c.unknown = re
	}
	return c, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
