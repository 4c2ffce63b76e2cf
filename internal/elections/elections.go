// Package elections reads a candidate's past-election table and the
// related-records block it links to.
package elections

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Drewraw/social-record-platform/internal/cases"
	"github.com/Drewraw/social-record-platform/internal/document"
	"github.com/Drewraw/social-record-platform/internal/model"
)

// DetailsMarker is the anchor text of the link to the full comparison page.
const DetailsMarker = "Click here"

var (
	reOtherElections = regexp.MustCompile(`(?i)Other Elections`)
	reAltHeadings    = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Previous Elections`),
		regexp.MustCompile(`(?i)Earlier Elections`),
		regexp.MustCompile(`(?i)Past Elections`),
		regexp.MustCompile(`(?i)Election History`),
	}
	looseHeadings = []string{"other election", "previous election", "past election", "election history"}
)

// Section is the past-election table found on a candidate page.
type Section struct {
	Elections []model.ElectionRecord
	// DetailsURL is the comparison page link, empty when none was found.
	DetailsURL string
}

// Find locates the past-election section. ok is false when the page has no
// such section or it is not inside a table.
func Find(doc *document.Document) (Section, bool) {
	heading := locateHeading(doc)
	if heading == nil {
		return Section{}, false
	}
	table := heading.Closest("table")
	if table.Length() == 0 {
		return Section{}, false
	}

	var sec Section
	document.Rows(table).Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		tds := tr.ChildrenFiltered("td")
		if tds.Length() < 3 {
			return
		}
		sec.Elections = append(sec.Elections, model.ElectionRecord{
			Election:       document.CellText(tds.Eq(0)),
			DeclaredAssets: document.CellText(tds.Eq(1)),
			DeclaredCases:  document.CellText(tds.Eq(2)),
		})
	})

	href := detailsHref(table)
	if href == "" {
		href = detailsHref(table.Parent())
	}
	if href != "" {
		sec.DetailsURL = ResolveDetails(doc, href)
	}
	return sec, true
}

// Followable reports whether a details link points at a page worth fetching.
func Followable(link string) bool {
	return strings.Contains(link, "compare_profile.php") || strings.Contains(link, "candidate.php")
}

// WithDetails returns elections with DetailsURL set on each record.
func WithDetails(in []model.ElectionRecord, link string) []model.ElectionRecord {
	out := make([]model.ElectionRecord, len(in))
	for i, e := range in {
		e.DetailsURL = link
		out[i] = e
	}
	return out
}

// ResolveDetails makes href absolute. Comparison pages live at the site
// root; other relative links resolve against the page's base URL.
func ResolveDetails(doc *document.Document, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.Contains(href, "compare_profile.php"):
		return doc.SiteRoot() + strings.TrimLeft(href, "./")
	default:
		return doc.BaseURL() + strings.TrimLeft(href, "./")
	}
}

// RelatedRows flattens every table row with any non-empty cell into
// classifier input.
func RelatedRows(doc *document.Document) []cases.Row {
	var out []cases.Row
	doc.Find("table").Each(func(ti int, table *goquery.Selection) {
		document.Rows(table).Each(func(ri int, tr *goquery.Selection) {
			var cells []string
			hasText := false
			document.Cells(tr).Each(func(_ int, c *goquery.Selection) {
				text := document.CellText(c)
				if text != "" {
					hasText = true
				}
				cells = append(cells, text)
			})
			if hasText {
				out = append(out, cases.Row{TableIndex: ti, RowIndex: ri, Cells: cells})
			}
		})
	})
	return out
}

func locateHeading(doc *document.Document) *goquery.Selection {
	if s := firstOwnText(doc.Find("b"), reOtherElections); s != nil {
		return s
	}
	if s := firstOwnText(doc.Find("td"), reOtherElections); s != nil {
		return s
	}
	if s := firstOwnText(doc.Find("*"), reOtherElections); s != nil {
		return s
	}
	for _, re := range reAltHeadings {
		if s := firstOwnText(doc.Find("b"), re); s != nil {
			return s
		}
	}

	var found *goquery.Selection
	doc.Find("b, td, th, div, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(document.CellText(s))
		for _, h := range looseHeadings {
			if strings.Contains(text, h) {
				found = s
				return false
			}
		}
		return true
	})
	return found
}

// firstOwnText returns the first element whose direct text matches re.
func firstOwnText(sel *goquery.Selection, re *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if re.MatchString(ownText(s)) {
			found = s
			return false
		}
		return true
	})
	return found
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

func detailsHref(scope *goquery.Selection) string {
	var href string
	scope.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(document.CellText(a), DetailsMarker) {
			return true
		}
		if h, _ := a.Attr("href"); strings.TrimSpace(h) != "" {
			href = h
			return false
		}
		return true
	})
	return href
}
