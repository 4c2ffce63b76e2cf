// Package extract turns a disclosure page into provenance-tagged fields.
package extract

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/document"
)

// Candidate is a raw key/value pair read from a table row.
type Candidate struct {
	Key        string
	Value      string
	TableIndex int
	RowIndex   int
	SourceURL  string
}

// Strategy reads candidate pairs from a document.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Extract returns candidates in document order.
	Extract(doc *document.Document) ([]Candidate, error)
}

// Chain tries strategies in order. A strategy that fails or yields nothing
// hands over to the next one.
type Chain struct {
	strategies []Strategy
}

// NewChain creates a Chain. The first strategy is the primary one.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Name implements Strategy.
func (c *Chain) Name() string {
	return "chain"
}

// Extract returns the first non-empty result. An empty slice without error
// means every strategy ran and found nothing.
func (c *Chain) Extract(doc *document.Document) ([]Candidate, error) {
	_, cands, err := c.ExtractWith(doc)
	return cands, err
}

// ExtractWith is Extract that also reports which strategy produced the result.
func (c *Chain) ExtractWith(doc *document.Document) (string, []Candidate, error) {
	if doc == nil {
		return "", nil, eris.New("extract: nil document")
	}
	var lastErr error
	for _, s := range c.strategies {
		cands, err := s.Extract(doc)
		if err == nil && len(cands) > 0 {
			return s.Name(), cands, nil
		}
		if err != nil {
			lastErr = err
		}
		zap.L().Debug("extract: strategy produced nothing, trying next",
			zap.String("strategy", s.Name()),
			zap.String("url", doc.URL()),
			zap.Error(err),
		)
	}
	if lastErr != nil {
		return "", nil, eris.Wrap(lastErr, "extract: all strategies failed")
	}
	return "", nil, nil
}
