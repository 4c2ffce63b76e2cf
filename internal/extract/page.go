package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Drewraw/social-record-platform/internal/document"
)

var (
	reDeclaredCases = regexp.MustCompile(`(?i)Number of Criminal Cases\D{0,40}?(\d+)`)
	reDigits        = regexp.MustCompile(`\d+`)
)

// DeclaredCaseCount returns the criminal case count the candidate declared,
// as printed on the page.
func DeclaredCaseCount(doc *document.Document) (int, bool) {
	if m := reDeclaredCases.FindStringSubmatch(doc.Text()); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}

	// Some layouts print the count as a bold number beside the label.
	n, found := 0, false
	doc.Find("span, b, strong").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		if s.Is("span") && !strings.Contains(strings.ReplaceAll(style, " ", ""), "font-weight:bold") {
			return true
		}
		text := document.CellText(s)
		if !reDigits.MatchString(text) || reDigits.FindString(text) != text {
			return true
		}
		parent := strings.ToLower(document.CellText(s.Parent()))
		if !strings.Contains(parent, "criminal") || !strings.Contains(parent, "cases") {
			return true
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return true
		}
		n, found = v, true
		return false
	})
	return n, found
}

// AffidavitLink returns the absolute URL of the first affidavit document link.
func AffidavitLink(doc *document.Document) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)
		if strings.HasSuffix(lower, ".pdf") || strings.Contains(lower, "affidavit") {
			link = document.Resolve(doc.BaseURL(), href)
			return false
		}
		return true
	})
	return link
}

var imageSelectors = []string{
	`img[src*="candidate"]`,
	`img[src*="photo"]`,
	`img[src*="image"]`,
	`img[alt*="candidate"]`,
	`img[alt*="photo"]`,
	`td img`,
	`table img`,
	`img[src$=".jpg"]`,
	`img[src$=".jpeg"]`,
	`img[src$=".png"]`,
}

var imageSkipTokens = []string{
	"icon", "logo", "arrow", "bullet", "button", "banner", "menu", "nav", "footer", "header",
}

const minImageSide = 50

// CandidateImage returns the absolute URL of the candidate portrait, trying
// selectors from most to least specific and skipping site decoration.
func CandidateImage(doc *document.Document) string {
	for _, sel := range imageSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, ok := img.Attr("src")
			if !ok || strings.TrimSpace(src) == "" {
				return true
			}
			lower := strings.ToLower(src)
			for _, tok := range imageSkipTokens {
				if strings.Contains(lower, tok) {
					return true
				}
			}
			if tooSmall(img, "width") || tooSmall(img, "height") {
				return true
			}
			found = document.Resolve(doc.BaseURL(), src)
			return false
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func tooSmall(img *goquery.Selection, attr string) bool {
	v, ok := img.Attr(attr)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	return err == nil && n < minImageSide
}
