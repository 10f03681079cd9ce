package confreport

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// parseNavDocument parses an EPUB 3 navigation document and returns the
// entries of its toc nav. basePath is the ZIP-internal path of the nav
// document; hrefs are resolved against it to ZIP-internal paths.
func parseNavDocument(data []byte, basePath string) ([]TOCItem, error) {
	doc, err := html.Parse(bytes.NewReader(stripBOM(data)))
	if err != nil {
		return nil, fmt.Errorf("confreport: parse nav document: %w", err)
	}

	var toc []TOCItem
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "nav" && hasEpubType(n, "toc") {
			found = true
			if ol := findFirstChildElement(n, "ol"); ol != nil {
				toc = parseNavOL(ol, basePath)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !found {
		return nil, fmt.Errorf("confreport: nav document has no toc nav: %w", ErrInvalidEPub)
	}
	return toc, nil
}

// parseNavOL returns the <li> children of ol as TOC entries.
func parseNavOL(ol *html.Node, basePath string) []TOCItem {
	var items []TOCItem
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			items = append(items, parseNavLI(c, basePath))
		}
	}
	return items
}

// parseNavLI reads the first <a> (or a <span> heading) of li and any
// nested <ol>.
func parseNavLI(li *html.Node, basePath string) TOCItem {
	item := TOCItem{SpineIndex: -1}

	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "a":
			if item.Href == "" {
				if href := navGetAttr(c, "href"); href != "" {
					item.Href = resolveRelativePath(basePath, href)
				}
				item.Title = strings.TrimSpace(nodeTextContent(c))
			}
		case "span":
			if item.Title == "" {
				item.Title = strings.TrimSpace(nodeTextContent(c))
			}
		case "ol":
			item.Children = parseNavOL(c, basePath)
		}
	}
	return item
}

// assignSpineIndices sets SpineIndex on every entry whose href (fragment
// removed) is a spine document.
func assignSpineIndices(items []TOCItem, spineMap map[string]int) {
	for i := range items {
		if idx, ok := spineMap[hrefWithoutFragment(items[i].Href)]; ok && items[i].Href != "" {
			items[i].SpineIndex = idx
		}
		assignSpineIndices(items[i].Children, spineMap)
	}
}

func hrefWithoutFragment(href string) string {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx]
	}
	return href
}

// flattenTOCItems collects pointers to every entry, depth first.
func flattenTOCItems(flat *[]*TOCItem, items []TOCItem) {
	for i := range items {
		*flat = append(*flat, &items[i])
		flattenTOCItems(flat, items[i].Children)
	}
}

// hasEpubType reports whether n's epub:type attribute contains typeName.
func hasEpubType(n *html.Node, typeName string) bool {
	for _, t := range strings.Fields(navGetAttr(n, "epub:type")) {
		if t == typeName {
			return true
		}
	}
	return false
}

func navGetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirstChildElement returns the first descendant element named tag.
func findFirstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findFirstChildElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeTextContent(c))
	}
	return sb.String()
}
