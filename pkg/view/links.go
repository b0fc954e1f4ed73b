package view

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is a pagination anchor extracted from a rendered fragment.
type Link struct {
	// Href is the anchor's raw link target.
	Href string

	// Page is the page number extracted from the href's query string.
	// Links without a page parameter address the first page.
	Page int

	// Label is the anchor's trimmed text content.
	Label string
}

// Links parses an HTML fragment and returns the anchors inside the
// pagination region matched by selector. The selector is a single class
// selector (".pagination" or "pagination"); when empty, anchors anywhere
// in the fragment are returned. This is the headless counterpart of
// intercepting clicks on pagination links: a host resolves a clicked
// anchor to its Link and feeds Link.Page back into the pager.
func Links(fragment, selector string) ([]Link, error) {
	class := strings.TrimPrefix(strings.TrimSpace(selector), ".")

	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), root)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	var links []Link
	for _, n := range nodes {
		collectLinks(n, class, class == "", &links)
	}
	return links, nil
}

// PageFromHref extracts the page query parameter from a link target.
// The second return value reports whether the parameter was present and
// parseable.
func PageFromHref(href string) (int, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return 0, false
	}
	raw := u.Query().Get("page")
	if raw == "" {
		return 0, false
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return page, true
}

// collectLinks walks the node tree depth-first. inRegion flips once a
// node carrying the pagination class is entered; anchors are only
// collected inside the region.
func collectLinks(n *html.Node, class string, inRegion bool, links *[]Link) {
	if n.Type == html.ElementNode {
		if !inRegion && hasClass(n, class) {
			inRegion = true
		}
		if inRegion && n.DataAtom == atom.A {
			href := attr(n, "href")
			page, ok := PageFromHref(href)
			if !ok {
				page = 1
			}
			*links = append(*links, Link{
				Href:  href,
				Page:  page,
				Label: strings.TrimSpace(textContent(n)),
			})
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLinks(c, class, inRegion, links)
	}
}

// hasClass reports whether an element node carries the given class.
func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all text nodes below n.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
