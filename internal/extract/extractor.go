package extract

import (
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/document"
	"github.com/Drewraw/social-record-platform/internal/model"
)

// Config aggregates the rule tables used by an Extractor.
type Config struct {
	SkipMarker string        `yaml:"skip_marker" mapstructure:"skip_marker"`
	Noise      NoiseConfig   `yaml:"noise" mapstructure:"noise"`
	Derived    DerivedConfig `yaml:"derived" mapstructure:"derived"`
	Legacy     LegacyConfig  `yaml:"legacy" mapstructure:"legacy"`
}

// DefaultConfig returns the compiled-in rule tables.
func DefaultConfig() Config {
	return Config{
		SkipMarker: "Click here",
		Noise:      DefaultNoiseConfig(),
		Derived:    DefaultDerivedConfig(),
		Legacy:     DefaultLegacyConfig(),
	}
}

// Result is the outcome of extracting one page.
type Result struct {
	Fields       *model.FieldBag
	Strategy     string
	Candidates   int
	Dropped      int
	ElectionYear string
	DeclaredCase int
}

// Extractor runs the table strategies, the noise filter and the derived
// resolver over a page, producing Primary-tier fields.
type Extractor struct {
	chain   *Chain
	noise   *NoiseFilter
	derived *DerivedResolver
}

// New creates an Extractor from cfg.
func New(cfg Config) *Extractor {
	return &Extractor{
		chain: NewChain(
			&TableWalker{SkipMarker: cfg.SkipMarker},
			NewLegacyWalker(cfg.Legacy),
		),
		noise:   NewNoiseFilter(cfg.Noise),
		derived: NewDerivedResolver(cfg.Derived),
	}
}

// Extract builds the Primary-tier field bag for doc. Pages without tables
// yield a bag holding only derived fields.
func (e *Extractor) Extract(doc *document.Document) (*Result, error) {
	if doc == nil {
		return nil, eris.New("extract: nil document")
	}
	strategy, cands, err := e.chain.ExtractWith(doc)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: %s", doc.URL())
	}

	res := &Result{
		Fields:     model.NewFieldBag(),
		Strategy:   strategy,
		Candidates: len(cands),
	}
	signal := e.noise.Filter(cands)
	res.Dropped = len(cands) - len(signal)

	for _, c := range signal {
		res.Fields.SetIfAbsent(model.Field{Key: c.Key, Value: c.Value, SourceURL: c.SourceURL, Tier: model.TierPrimary})
	}

	e.primary(res.Fields, doc, "Image URL", CandidateImage(doc))
	if n, ok := DeclaredCaseCount(doc); ok {
		res.DeclaredCase = n
		e.primary(res.Fields, doc, "Criminal Cases", strconv.Itoa(n))
	}

	title := doc.Title()
	e.derived.Resolve(title, doc.URL(), res.Fields)
	res.ElectionYear = ParseTitle(title).Year

	e.primary(res.Fields, doc, "Affidavit PDF", AffidavitLink(doc))

	zap.L().Debug("extract: page done",
		zap.String("url", doc.URL()),
		zap.String("strategy", res.Strategy),
		zap.Int("candidates", res.Candidates),
		zap.Int("dropped", res.Dropped),
		zap.Int("fields", res.Fields.Len()),
	)
	return res, nil
}

func (e *Extractor) primary(bag *model.FieldBag, doc *document.Document, key, value string) {
	if value == "" {
		return
	}
	bag.SetIfAbsent(model.Field{Key: key, Value: value, SourceURL: doc.URL(), Tier: model.TierPrimary})
}
