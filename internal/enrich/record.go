package enrich

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Drewraw/social-record-platform/internal/model"
	"github.com/Drewraw/social-record-platform/internal/resilience"
	"github.com/Drewraw/social-record-platform/pkg/wikidata"
)

// DefaultRecordURL is the provenance used when a record carries no entity
// URL.
const DefaultRecordURL = "https://www.wikidata.org"

// RecordProvider looks up a structured person record. wikidata.Client
// satisfies it.
type RecordProvider interface {
	LookupPerson(ctx context.Context, name string) (*wikidata.Person, error)
}

// RecordOption configures a RecordSource.
type RecordOption func(*RecordSource)

// WithRecordClock sets the clock used for age calculation.
func WithRecordClock(now func() time.Time) RecordOption {
	return func(s *RecordSource) {
		s.now = now
	}
}

// WithRecordBreaker replaces the default circuit breaker.
func WithRecordBreaker(b *resilience.Breaker) RecordOption {
	return func(s *RecordSource) {
		s.breaker = b
	}
}

// RecordSource is the Secondary tier backed by a knowledge-graph record.
type RecordSource struct {
	provider RecordProvider
	breaker  *resilience.Breaker
	now      func() time.Time
}

// NewRecordSource creates a RecordSource.
func NewRecordSource(p RecordProvider, opts ...RecordOption) *RecordSource {
	s := &RecordSource{
		provider: p,
		breaker:  resilience.NewBreaker(3, time.Minute),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements resolver.Source.
func (s *RecordSource) Name() string { return "wikidata" }

// Tier implements resolver.Source.
func (s *RecordSource) Tier() model.Tier { return model.TierSecondary }

// Lookup implements resolver.Source.
func (s *RecordSource) Lookup(ctx context.Context, subject string) ([]model.Field, error) {
	name := NormalizeName(subject)
	if name == "" {
		return nil, nil
	}
	person, err := resilience.Call(ctx, s.breaker, func(ctx context.Context) (*wikidata.Person, error) {
		return s.provider.LookupPerson(ctx, name)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: record lookup %q", name)
	}
	if person == nil {
		return nil, nil
	}
	return RecordFields(person, s.now()), nil
}

// RecordFields maps a person record to profile fields. Age is computed
// relative to now.
func RecordFields(p *wikidata.Person, now time.Time) []model.Field {
	src := p.EntityURL
	if src == "" {
		src = DefaultRecordURL
	}
	var out []model.Field
	add := func(key, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		out = append(out, model.Field{Key: key, Value: value, SourceURL: src, Tier: model.TierSecondary})
	}

	add("Party", p.Party)
	add("Position", p.Position)
	add("Electoral Constituency", p.Constituency)
	add("Birth Date", p.BirthDate)
	if age, ok := AgeAt(p.BirthDate, now); ok {
		add("Age", strconv.Itoa(age))
	}
	add("Education", p.Education)

	var family []string
	for _, m := range []struct{ label, name string }{
		{"Father", p.Father},
		{"Mother", p.Mother},
		{"Spouse", p.Spouse},
		{"Children", p.Children},
	} {
		if n := strings.TrimSpace(m.name); n != "" {
			family = append(family, m.label+": "+n)
		}
	}
	add("Family Members", strings.Join(family, "; "))
	return out
}

// AgeAt returns completed years between a birth date and now. The date may
// be a full timestamp, a YYYY-MM-DD date or a bare year.
func AgeAt(birth string, now time.Time) (int, bool) {
	birth = strings.TrimSpace(birth)
	if birth == "" {
		return 0, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, birth); err == nil {
			age := now.Year() - t.Year()
			if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
				age--
			}
			return age, age >= 0
		}
	}
	if len(birth) >= 4 {
		if y, err := strconv.Atoi(birth[:4]); err == nil {
			age := now.Year() - y
			return age, age >= 0
		}
	}
	return 0, false
}
