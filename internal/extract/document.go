// Package extract holds the building blocks shared by extraction rules:
// parsed documents, per-field outcomes and embedded JSON lookups.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type Document struct {
	URL string
	Raw []byte

	root *html.Node
	doc  *goquery.Document
}

func Parse(raw []byte, pageURL string) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", pageURL, err)
	}
	return &Document{
		URL:  pageURL,
		Raw:  raw,
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
	}, nil
}

func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Strings returns visible text nodes of the whole document in order.
func (d *Document) Strings() []string {
	return nodeStrings(d.root)
}

// Resolve turns a relative href into an absolute URL against the document URL.
func (d *Document) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(d.URL)
	if err != nil || !base.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// Strings returns visible text nodes under sel, trimmed and non-empty.
func Strings(sel *goquery.Selection) []string {
	out := make([]string, 0, 16)
	for _, n := range sel.Nodes {
		out = append(out, nodeStrings(n)...)
	}
	return out
}

// Text is the cleaned text content of the first node in sel.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(sel.First().Text()), " ")
}

func nodeStrings(n *html.Node) []string {
	out := make([]string, 0, 16)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				out = append(out, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
