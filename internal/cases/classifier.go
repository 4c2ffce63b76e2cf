package cases

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// Row is one table row of the related-records block.
type Row struct {
	TableIndex int
	RowIndex   int
	Cells      []string
}

// Classifier turns related-records rows into a ConvictionSummary.
type Classifier struct {
	c *compiled
}

// NewClassifier creates a Classifier from cfg.
func NewClassifier(cfg Config) (*Classifier, error) {
	c, err := compile(cfg)
	if err != nil {
		return nil, err
	}
	return &Classifier{c: c}, nil
}

// Classify builds the summary for rows. An empty block yields the
// no-box zero-conviction summary.
func (cl *Classifier) Classify(rows []Row) model.ConvictionSummary {
	var s model.ConvictionSummary
	boxData := false

	for _, row := range rows {
		if cl.isBoxRow(row) {
			s.ConvictionBoxFound = true
			if !cl.boxHasData(row) {
				// A label with only placeholders is not a case.
				continue
			}
			boxData = true
		}

		d, ok := cl.dispose(row)
		if !ok {
			continue
		}
		s.Cases = append(s.Cases, model.CaseRecord{
			CaseID:      caseID(row, len(s.Cases)+1),
			RawText:     strings.Join(nonEmpty(row.Cells), " | "),
			TableIndex:  row.TableIndex,
			RowIndex:    row.RowIndex,
			Disposition: d,
		})
		switch d {
		case model.DispositionConvicted:
			s.Convicted++
		case model.DispositionAcquitted:
			s.Acquitted++
		case model.DispositionPending:
			s.Pending++
		default:
			s.Unknown++
		}
	}

	s.TotalCases = len(s.Cases)
	s.ConvictionBoxEmpty = !boxData
	s.Status = Status(s)
	return s
}

func (cl *Classifier) isBoxRow(row Row) bool {
	for _, cell := range row.Cells {
		if containsAny(strings.ToLower(cell), cl.c.boxTerms) {
			return true
		}
	}
	return false
}

// boxHasData reports whether the cells other than the box label hold
// anything besides placeholders.
func (cl *Classifier) boxHasData(row Row) bool {
	for _, cell := range row.Cells {
		lower := strings.ToLower(strings.TrimSpace(cell))
		if lower == "" || containsAny(lower, cl.c.boxTerms) {
			continue
		}
		if _, ok := cl.c.placeholders[lower]; ok {
			continue
		}
		return true
	}
	return false
}

// dispose applies the rule table once to the row: the first rule matched
// by any qualifying cell wins.
func (cl *Classifier) dispose(row Row) (model.Disposition, bool) {
	var cells []string
	for _, cell := range row.Cells {
		cell = strings.TrimSpace(cell)
		if utf8.RuneCountInString(cell) > cl.c.minLength {
			cells = append(cells, strings.ToLower(cell))
		}
	}
	if len(cells) == 0 {
		return model.DispositionUnknown, false
	}
	for _, rule := range cl.c.rules {
		for _, cell := range cells {
			if containsAny(cell, rule.Terms) {
				return rule.Disposition, true
			}
		}
	}
	if cl.c.unknown != nil {
		for _, cell := range cells {
			if cl.c.unknown.MatchString(cell) {
				return model.DispositionUnknown, true
			}
		}
	}
	return model.DispositionUnknown, false
}

func caseID(row Row, n int) string {
	if len(row.Cells) > 0 {
		first := strings.TrimSpace(row.Cells[0])
		if first != "" && strings.IndexFunc(first, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
			return first
		}
	}
	return fmt.Sprintf("case_%d", n)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
