package enrich

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Drewraw/social-record-platform/internal/model"
	"github.com/Drewraw/social-record-platform/internal/resilience"
	"github.com/Drewraw/social-record-platform/pkg/wikipedia"
)

// PageProvider finds the narrative article for a person. wikipedia.Client
// satisfies it.
type PageProvider interface {
	LookupPage(ctx context.Context, name string) (*wikipedia.Page, error)
}

// NarrativeOption configures a NarrativeSource.
type NarrativeOption func(*NarrativeSource)

// WithNarrativeBreaker replaces the default circuit breaker.
func WithNarrativeBreaker(b *resilience.Breaker) NarrativeOption {
	return func(s *NarrativeSource) {
		s.breaker = b
	}
}

// NarrativeSource is the Tertiary tier backed by an encyclopedia article.
type NarrativeSource struct {
	provider PageProvider
	breaker  *resilience.Breaker
}

// NewNarrativeSource creates a NarrativeSource.
func NewNarrativeSource(p PageProvider, opts ...NarrativeOption) *NarrativeSource {
	s := &NarrativeSource{
		provider: p,
		breaker:  resilience.NewBreaker(3, time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements resolver.Source.
func (s *NarrativeSource) Name() string { return "wikipedia" }

// Tier implements resolver.Source.
func (s *NarrativeSource) Tier() model.Tier { return model.TierTertiary }

// Lookup implements resolver.Source.
func (s *NarrativeSource) Lookup(ctx context.Context, subject string) ([]model.Field, error) {
	name := NormalizeName(subject)
	if name == "" {
		return nil, nil
	}
	page, err := resilience.Call(ctx, s.breaker, func(ctx context.Context) (*wikipedia.Page, error) {
		return s.provider.LookupPage(ctx, name)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: page lookup %q", name)
	}
	if page == nil {
		return nil, nil
	}
	return NarrativeFields(page), nil
}

var dynastyKeywords = []string{
	"son of", "daughter of", "grandson of", "granddaughter of", "nephew of", "niece of",
	"political family", "dynasty", "father was", "mother was", "political legacy",
}

// Relation words match in any case; names must be capitalized.
var (
	relativePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b((?i:son|daughter|grandson|granddaughter|nephew|niece)) (?i:of) ([A-Z][a-z]+ [A-Z][a-z]+)`),
		regexp.MustCompile(`\b((?i:father|mother|grandfather|grandmother|uncle|aunt)) ([A-Z][a-z]+ [A-Z][a-z]+)`),
		regexp.MustCompile(`\b(?i:married to) ([A-Z][a-z]+ [A-Z][a-z]+)`),
		regexp.MustCompile(`\b(?i:his) ((?i:father|mother|brother|sister|wife|husband)) ([A-Z][a-z]+ [A-Z][a-z]+)`),
	}

	educationPatterns = compileAll(
		`(?i)graduated from ([^.,]+)`,
		`(?i)studied at ([^.,]+)`,
		`(?i)degree from ([^.,]+)`,
		`(?i)alumni of ([^.,]+)`,
		`(?i)education at ([^.,]+)`,
	)
	professionPatterns = compileAll(
		`(?i)is an? ([^.,]+) and politician`,
		`(?i)before entering politics.*?was an? ([^.,]+)`,
		`(?i)worked as an? ([^.,]+)`,
		`(?i)profession.*?([^.,]+) before`,
	)
	birthPatterns = compileAll(
		`(?i)born.*?(\d{1,2}\s+\w+\s+\d{4})`,
		`(?i)\(born.*?(\d{4})\)`,
		`(?i)age (\d{2})`,
		`(?i)(\d{4}).*?birth`,
	)
	constituencyPatterns = compileAll(
		`(?i)represents? ([^.,]+) constituency`,
		`(?i)elected from ([^.,]+)`,
		`(?i)member.*?from ([^.,]+)`,
	)
)

const maxRelativesPerPattern = 3

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// NarrativeFields extracts profile fields from an article. Dynasty Status is
// always produced; the rest only when a pattern matches.
func NarrativeFields(p *wikipedia.Page) []model.Field {
	text := p.Content
	if text == "" {
		text = p.Summary
	}
	var out []model.Field
	add := func(key, value string) {
		out = append(out, model.Field{Key: key, Value: value, SourceURL: p.URL, Tier: model.TierTertiary})
	}

	dynasty := "No"
	haystack := strings.ToLower(p.Summary + "\n" + text)
	for _, kw := range dynastyKeywords {
		if strings.Contains(haystack, kw) {
			dynasty = "Yes"
			break
		}
	}
	add("Dynasty Status", dynasty)

	if rel := relatives(text); len(rel) > 0 {
		add("Political Relatives", strings.Join(rel, "; "))
	}
	if v, ok := firstMatch(educationPatterns, text, 10, 100); ok {
		add("Education", v)
	}
	if v, ok := firstMatch(professionPatterns, text, 5, 50); ok {
		add("Profession", v)
	}
	if v, ok := firstMatch(birthPatterns, text, 0, 0); ok {
		add("Birth Info", v)
	}
	if v, ok := firstMatch(constituencyPatterns, text, 5, 50); ok {
		add("Constituency Details", v)
	}
	if p.ImageURL != "" {
		add("Wikipedia Image", p.ImageURL)
	}
	return out
}

func relatives(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range relativePatterns {
		for _, m := range re.FindAllStringSubmatch(text, maxRelativesPerPattern) {
			var relation, name string
			if len(m) == 2 {
				relation, name = "spouse", m[1]
			} else {
				relation, name = strings.ToLower(m[1]), m[2]
			}
			entry := name + " (" + relation + ")"
			if !seen[entry] {
				seen[entry] = true
				out = append(out, entry)
			}
		}
	}
	return out
}

// firstMatch returns the first capture whose length is strictly between min
// and max. A zero max disables the bounds.
func firstMatch(patterns []*regexp.Regexp, text string, minLen, maxLen int) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if maxLen == 0 {
			if v != "" {
				return v, true
			}
			continue
		}
		if n := len([]rune(v)); n > minLen && n < maxLen {
			return v, true
		}
	}
	return "", false
}
