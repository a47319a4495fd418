package mockup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	HighlightClass = "highlight-change"
	tooltipLength  = 80
	summaryLength  = 40
)

var keywordRe = regexp.MustCompile(`I want to\s+(.*?)(?:,|\s+so that)`)

const annotationCSS = `<style>
.highlight-change { border: 2px solid #f39c12; box-shadow: 0 0 8px #f1c40f; position: relative; transition: box-shadow 0.3s ease-in-out; }
.highlight-change:hover { box-shadow: 0 0 12px 4px #f1c40f; z-index: 10; }
.highlight-label { position: absolute; top: -10px; left: -10px; background: #f39c12; color: white; font-size: 0.7rem; padding: 2px 6px; border-radius: 4px; z-index: 999; }
.tooltip-box { display: none; position: absolute; top: -60px; left: 0; background: #333; color: white; font-size: 0.75rem; padding: 6px; border-radius: 4px; white-space: nowrap; z-index: 9999; }
.highlight-change:hover .tooltip-box { display: block; }
details.annotated-story { background: #fff8e1; padding: 0.5rem; border: 1px solid #f39c12; border-radius: 6px; margin-bottom: 8px; }
</style>`

// Annotation links a user story to the element it changes
type Annotation struct {
	Index int
	Story string
}

// Keyword returns the action of a user story, the text between "I want to" and the following
// comma or "so that"
func Keyword(story string) string {
	m := keywordRe.FindStringSubmatch(story)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Annotate highlights, for every story, the first element whose own text contains the story keyword.
// Highlighted elements get a numbered badge and a tooltip, a legend listing the matched stories is
// appended to the body. Stories are numbered from 1 in the given order.
func Annotate(document string, stories []string) (string, []Annotation, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", nil, fmt.Errorf("parse mockup: %w", err)
	}
	doc.Find("head").AppendHtml(annotationCSS)
	body := doc.Find("body")
	var matched []Annotation
	for idx, story := range stories {
		keyword := strings.ToLower(Keyword(story))
		if keyword == "" {
			continue
		}
		parent := findTextParent(body.Nodes, keyword)
		if parent == nil {
			continue
		}
		sel := doc.FindNodes(parent)
		sel.AddClass(HighlightClass)
		sel.PrependHtml(fmt.Sprintf(`<div class="highlight-label">#%d</div><div class="tooltip-box">%s</div>`, idx+1, html.EscapeString(truncate(story, tooltipLength))))
		matched = append(matched, Annotation{Index: idx + 1, Story: story})
	}
	if len(matched) > 0 {
		body.AppendHtml(legend(matched))
	}
	ret, err := doc.Html()
	if err != nil {
		return "", nil, fmt.Errorf("render annotated mockup: %w", err)
	}
	return ret, matched, nil
}

// findTextParent walks the tree in document order and returns the parent element of the first
// text node containing keyword. Highlighted elements, badges, scripts and styles are skipped.
func findTextParent(nodes []*html.Node, keyword string) *html.Node {
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style || hasClass(n, "tooltip-box") || hasClass(n, "highlight-label")) {
			return nil
		}
		if n.Type == html.TextNode && n.Parent != nil && n.Parent.Type == html.ElementNode {
			if strings.Contains(strings.ToLower(n.Data), keyword) && !hasClass(n.Parent, HighlightClass) {
				return n.Parent
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	for _, n := range nodes {
		if found := walk(n); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, v := range strings.Fields(attr.Val) {
				if v == class {
					return true
				}
			}
		}
	}
	return false
}

func legend(matched []Annotation) string {
	var sb strings.Builder
	sb.WriteString(`<div class="annotation-legend" style="margin-top: 2rem; padding: 1rem; background: #fcf8e3; border-radius: 8px;">`)
	sb.WriteString(`<h4>📝 Highlighted Changes</h4>`)
	for _, m := range matched {
		fmt.Fprintf(&sb, `<details class="annotated-story"><summary>#%d - %s</summary><p>%s</p></details>`,
			m.Index, html.EscapeString(truncate(m.Story, summaryLength)), html.EscapeString(m.Story))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
