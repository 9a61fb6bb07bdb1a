package checker

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is an anchor found in body markup.
type Link struct {
	Href string
	Text string
}

// parseFragment parses body as the inside of a <body> element. Bodies are
// fragments, not documents, so the parser must not invent head/body wrappers
// around them.
func parseFragment(body string) *goquery.Document {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(body), ctx)
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if err != nil {
		root.AppendChild(&html.Node{Type: html.TextNode, Data: body})
	} else {
		for _, n := range nodes {
			root.AppendChild(n)
		}
	}
	return goquery.NewDocumentFromNode(root)
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true, atom.Blockquote: true,
	atom.Pre: true, atom.Hr: true, atom.Section: true, atom.Article: true, atom.Header: true,
	atom.Footer: true, atom.Figure: true, atom.Figcaption: true, atom.Dt: true, atom.Dd: true,
}

// PlainText strips markup from body and collapses whitespace. Script and
// style contents are dropped; block elements act as word separators.
func PlainText(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	doc := parseFragment(body)
	doc.Find("script, style, noscript").Remove()

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			sb.WriteByte(' ')
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ExtractLinks returns every <a> in body in document order. Anchors without
// an href attribute are reported with an empty Href.
func ExtractLinks(body string) []Link {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	var out []Link
	parseFragment(body).Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		out = append(out, Link{
			Href: strings.TrimSpace(href),
			Text: strings.Join(strings.Fields(s.Text()), " "),
		})
	})
	return out
}
