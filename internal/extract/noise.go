package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NoiseConfig holds the lexical rules for dropping candidate pairs.
type NoiseConfig struct {
	Lexicon           []string `yaml:"lexicon" mapstructure:"lexicon"`
	MinLength         int      `yaml:"min_length" mapstructure:"min_length"`
	RejectNumericKeys bool     `yaml:"reject_numeric_keys" mapstructure:"reject_numeric_keys"`
}

// DefaultNoiseConfig returns the lexicon tuned for affidavit disclosure pages.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Lexicon: []string{
			// relation columns of asset declarations
			"pan given", "self", "spouse", "huf", "dependent", "relation type",
			// contract boilerplate
			"details of contracts", "not applicable", "partnership firms", "private companies", "hindu undivided family",
			// site chrome
			"donate now", "share on", "download app", "follow us",
			// header labels
			"serial no", "case no", "name", "constituency", "age", "party code",
		},
		MinLength:         3,
		RejectNumericKeys: true,
	}
}

// NoiseFilter classifies candidate pairs as signal or noise. The decision
// for a pair depends only on that pair.
type NoiseFilter struct {
	lexicon   []string
	minLength int
	numeric   bool
}

// NewNoiseFilter creates a NoiseFilter. Lexicon terms match
// case-insensitively as substrings.
func NewNoiseFilter(cfg NoiseConfig) *NoiseFilter {
	lex := make([]string, 0, len(cfg.Lexicon))
	for _, term := range cfg.Lexicon {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			lex = append(lex, term)
		}
	}
	return &NoiseFilter{
		lexicon:   lex,
		minLength: cfg.MinLength,
		numeric:   cfg.RejectNumericKeys,
	}
}

// IsNoise reports whether the pair should be dropped.
func (f *NoiseFilter) IsNoise(key, value string) bool {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if utf8.RuneCountInString(key) < f.minLength || utf8.RuneCountInString(value) < f.minLength {
		return true
	}
	if f.numeric && isDigits(key) {
		return true
	}

	lk, lv := strings.ToLower(key), strings.ToLower(value)
	for _, term := range f.lexicon {
		if strings.Contains(lk, term) || strings.Contains(lv, term) {
			return true
		}
	}
	return false
}

// Filter returns the signal candidates, preserving order.
func (f *NoiseFilter) Filter(cands []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if !f.IsNoise(c.Key, c.Value) {
			out = append(out, c)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
