// Package profile assembles ProfileRecords from disclosure pages.
package profile

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/cases"
	"github.com/Drewraw/social-record-platform/internal/document"
	"github.com/Drewraw/social-record-platform/internal/elections"
	"github.com/Drewraw/social-record-platform/internal/extract"
	"github.com/Drewraw/social-record-platform/internal/fetcher"
	"github.com/Drewraw/social-record-platform/internal/model"
	"github.com/Drewraw/social-record-platform/internal/resolver"
	"github.com/Drewraw/social-record-platform/internal/rules"
)

// Builder runs the extraction pipeline over one page at a time. A Builder
// holds no per-build state and may be shared between goroutines.
type Builder struct {
	extractor  *extract.Extractor
	classifier *cases.Classifier
	registry   *resolver.Registry
	resolver   *resolver.Resolver
	loader     fetcher.Loader
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLoader sets the loader used to follow the past-elections details
// link. Without one the related-records block is never read.
func WithLoader(l fetcher.Loader) Option {
	return func(b *Builder) { b.loader = l }
}

// WithSources registers lower-tier sources for gap filling.
func WithSources(sources ...resolver.Source) Option {
	return func(b *Builder) {
		for _, s := range sources {
			b.registry.Register(s)
		}
	}
}

// NewBuilder creates a Builder from a rule set. A nil set uses the
// compiled-in rules.
func NewBuilder(set *rules.Set, opts ...Option) (*Builder, error) {
	if set == nil {
		set = rules.Default()
	}
	cl, err := cases.NewClassifier(set.Cases)
	if err != nil {
		return nil, eris.Wrap(err, "profile: classifier")
	}
	b := &Builder{
		extractor:  extract.New(set.Extract),
		classifier: cl,
		registry:   resolver.NewRegistry(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	b.resolver = resolver.New(set.Essentials, b.registry)
	return b, nil
}

// WithNow sets a fixed time for testing.
func (b *Builder) WithNow(t time.Time) *Builder {
	b.now = func() time.Time { return t }
	return b
}

// Build assembles the profile for doc. Only a malformed document fails the
// build; missing sections and unavailable sources leave fields unresolved.
func (b *Builder) Build(ctx context.Context, doc *document.Document) (*model.ProfileRecord, error) {
	if doc == nil {
		return nil, eris.Wrap(document.ErrMalformedInput, "profile: nil document")
	}

	res, err := b.extractor.Extract(doc)
	if err != nil {
		return nil, eris.Wrap(err, "profile: extract")
	}

	rec := model.NewProfileRecord(doc.URL(), b.now())
	rec.Fields = res.Fields
	rec.PageTitle = doc.Title()
	rec.ElectionYear = res.ElectionYear

	rows := b.relatedRows(ctx, doc, rec)
	rec.ConvictionSummary = b.classifier.Classify(rows)
	rec.CriminalSummary = cases.Summarize(rec.Fields, rec.ConvictionSummary, len(rows) > 0)

	rr := b.resolver.Resolve(ctx, rec.Fields, rec.Name())
	rec.SourcesUsed = rr.SourcesUsed

	zap.L().Info("profile: built",
		zap.String("url", rec.SourceURL),
		zap.String("name", rec.Name()),
		zap.Int("fields", rec.Fields.Len()),
		zap.Int("elections", len(rec.OtherElections)),
		zap.String("conviction_status", rec.ConvictionSummary.Status),
		zap.Strings("missing", rr.MissingAfter),
	)
	return rec, nil
}

// relatedRows records the past-election table on rec and returns the
// related-records rows from the linked details page.
func (b *Builder) relatedRows(ctx context.Context, doc *document.Document, rec *model.ProfileRecord) []cases.Row {
	sec, ok := elections.Find(doc)
	if !ok {
		zap.L().Debug("profile: no other elections section", zap.String("url", doc.URL()))
		return nil
	}
	rec.OtherElections = sec.Elections

	link := sec.DetailsURL
	if link == "" || !elections.Followable(link) {
		if link != "" {
			zap.L().Debug("profile: skipping details link", zap.String("link", link))
		}
		return nil
	}
	rec.OtherElections = elections.WithDetails(sec.Elections, link)

	if b.loader == nil {
		return nil
	}
	details, err := b.loader.Load(ctx, link)
	if err != nil {
		zap.L().Warn("profile: details page unavailable",
			zap.String("url", doc.URL()),
			zap.String("link", link),
			zap.Error(err),
		)
		return nil
	}
	return elections.RelatedRows(details)
}
