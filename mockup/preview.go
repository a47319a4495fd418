package mockup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Preview returns the stylesheets and the inner body of a document, a fragment which can be
// embedded into another page.
func Preview(document string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("parse mockup: %w", err)
	}
	var sb strings.Builder
	doc.Find(`style, link[rel="stylesheet"], script[src]`).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("body").Length() > 0 {
			return
		}
		if outer, err := goquery.OuterHtml(s); err == nil {
			sb.WriteString(outer)
			sb.WriteByte('\n')
		}
	})
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render mockup body: %w", err)
	}
	sb.WriteString(strings.TrimSpace(body))
	return sb.String(), nil
}
