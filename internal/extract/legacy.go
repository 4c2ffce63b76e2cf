package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Drewraw/social-record-platform/internal/document"
)

// LegacyConfig configures the fallback walker's historical-row filter.
type LegacyConfig struct {
	HistoricalYears []string `yaml:"historical_years" mapstructure:"historical_years"`
	RegionTokens    []string `yaml:"region_tokens" mapstructure:"region_tokens"`
}

// DefaultLegacyConfig returns the filter used by older disclosure layouts.
func DefaultLegacyConfig() LegacyConfig {
	return LegacyConfig{
		HistoricalYears: []string{
			"2019", "2018", "2017", "2016", "2015", "2014", "2013", "2012",
			"2011", "2010", "2009", "2008", "2007", "2006", "2005",
		},
		RegionTokens: []string{
			"Lok Sabha", "Assembly", "Telangana", "Andhra Pradesh", "Karnataka", "Gujarat",
			"Maharashtra", "Tamil Nadu", "Kerala", "Punjab",
		},
	}
}

// LegacyWalker reads every table, including comparison tables, but drops
// rows that describe a past election.
type LegacyWalker struct {
	cfg LegacyConfig
}

// NewLegacyWalker creates a LegacyWalker.
func NewLegacyWalker(cfg LegacyConfig) *LegacyWalker {
	return &LegacyWalker{cfg: cfg}
}

// Name implements Strategy.
func (w *LegacyWalker) Name() string {
	return "legacy"
}

// Extract implements Strategy.
func (w *LegacyWalker) Extract(doc *document.Document) ([]Candidate, error) {
	var out []Candidate
	doc.Find("table").Each(func(ti int, table *goquery.Selection) {
		document.Rows(table).Each(func(ri int, tr *goquery.Selection) {
			key, val, ok := rowPair(tr)
			if !ok || w.historical(key) {
				return
			}
			out = append(out, Candidate{
				Key:        key,
				Value:      val,
				TableIndex: ti,
				RowIndex:   ri,
				SourceURL:  doc.URL(),
			})
		})
	})
	return out, nil
}

func (w *LegacyWalker) historical(key string) bool {
	hasYear := false
	for _, y := range w.cfg.HistoricalYears {
		if strings.Contains(key, y) {
			hasYear = true
			break
		}
	}
	if !hasYear {
		return false
	}
	for _, r := range w.cfg.RegionTokens {
		if strings.Contains(key, r) {
			return true
		}
	}
	return false
}
