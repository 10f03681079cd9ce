package markdown

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// isURIAttribute reports whether attr may carry a URL.
func isURIAttribute(attr html.Attribute) bool {
	switch {
	case attr.Key == "href" || attr.Key == "src":
		return true
	case attr.Namespace == "xlink" && attr.Key == "href":
		return true
	case attr.Key == "xlink:href":
		return true
	}
	return false
}

// isSafeURI allows fragments, relative references, http, https and mailto.
// Footnote links are fragments, talk citations are absolute https links.
func isSafeURI(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" || strings.HasPrefix(v, "#") {
		return true
	}

	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}
