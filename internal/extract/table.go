package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Drewraw/social-record-platform/internal/document"
)

// TableWalker emits one candidate per table row whose first two cells hold
// distinct non-empty text. It makes no semantic judgement about the rows.
type TableWalker struct {
	// SkipMarker, when set, skips tables containing a link whose text
	// includes it (comparison tables on disclosure pages).
	SkipMarker string
}

// Name implements Strategy.
func (w *TableWalker) Name() string {
	return "table"
}

// Extract implements Strategy.
func (w *TableWalker) Extract(doc *document.Document) ([]Candidate, error) {
	var out []Candidate
	doc.Find("table").Each(func(ti int, table *goquery.Selection) {
		if w.SkipMarker != "" && HasLinkText(table, w.SkipMarker) {
			return
		}
		document.Rows(table).Each(func(ri int, tr *goquery.Selection) {
			key, val, ok := rowPair(tr)
			if !ok {
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

// rowPair returns the text of the first two cells when both are non-empty
// and differ.
func rowPair(tr *goquery.Selection) (string, string, bool) {
	cells := document.Cells(tr)
	if cells.Length() < 2 {
		return "", "", false
	}
	key := document.CellText(cells.Eq(0))
	val := document.CellText(cells.Eq(1))
	if key == "" || val == "" || key == val {
		return "", "", false
	}
	return key, val, true
}

// HasLinkText reports whether sel contains an anchor whose text includes marker.
func HasLinkText(sel *goquery.Selection, marker string) bool {
	found := false
	sel.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(document.CellText(a), marker) {
			found = true
			return false
		}
		return true
	})
	return found
}
