package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// invisible elements never contribute document text
var invisible = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Template: true,
}

// htmlText parses an HTML document and returns the text a reader would see
func htmlText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	var parts []string
	collectText(doc, &parts)
	return strings.Join(parts, " "), nil
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.ElementNode:
		if invisible[n.DataAtom] {
			return
		}
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
