package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CellText concatenates every descendant text node of sel, collapses runs of
// whitespace and joins the pieces with single spaces.
func CellText(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, strings.Fields(n.Data)...)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// Cells returns the direct td/th children of a table row.
func Cells(row *goquery.Selection) *goquery.Selection {
	return row.ChildrenFiltered("td, th")
}

// Rows returns the rows that belong to table itself, skipping rows of
// nested tables.
func Rows(table *goquery.Selection) *goquery.Selection {
	if len(table.Nodes) == 0 {
		return table
	}
	owner := table.Nodes[0]
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return len(tr.Nodes) > 0 && closestTable(tr.Nodes[0]) == owner
	})
}

func closestTable(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "table" {
			return p
		}
	}
	return nil
}
