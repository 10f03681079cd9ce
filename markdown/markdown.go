// Package markdown converts extracted talk sources into chapter records.
//
// A talk source is Markdown whose first line is a level one heading holding
// the speaker and the title separated by a line break:
//
//	# Dieter F. Uchtdorf <br />Fourth Floor, Last Door
//
// Footnote references ([^1]) and definitions are supported. The rendered
// body is XHTML: raw HTML from the source is re-parsed, scripts and event
// handlers are removed, and the result is serialised with self-closing
// void elements so it can be inserted into a chapter document verbatim.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Converter renders talk Markdown to XHTML body fragments. A Converter is
// stateless after construction and safe for concurrent use.
type Converter struct {
	engine goldmark.Markdown
}

// Option configures a Converter.
type Option func(*config)

type config struct {
	typographer bool
	hardWraps   bool
}

// WithTypographer replaces straight quotes and dashes with typographic ones.
func WithTypographer() Option {
	return func(c *config) { c.typographer = true }
}

// WithHardWraps renders soft line breaks as <br/>.
func WithHardWraps() Option {
	return func(c *config) { c.hardWraps = true }
}

// New returns a Converter with footnotes enabled and XHTML output.
func New(opts ...Option) *Converter {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	exts := []goldmark.Extender{extension.Footnote}
	if cfg.typographer {
		exts = append(exts, extension.Typographer)
	}

	rendererOptions := []renderer.Option{
		gmhtml.WithXHTML(),
		// Sources carry <br /> in headings; raw HTML is sanitised afterwards.
		gmhtml.WithUnsafe(),
	}
	if cfg.hardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}

	return &Converter{
		engine: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererOptions...),
		),
	}
}

// Convert renders src to a sanitised XHTML fragment.
func (c *Converter) Convert(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.engine.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markdown: convert: %w", err)
	}
	return sanitize(buf.Bytes())
}

// sanitize re-parses rendered HTML as body content, drops <script> and
// <style> elements, event handlers and unsafe URIs, and serialises it again.
// x/net/html writes void elements as <br/> and decodes named entities, so
// the output is well-formed XML.
func sanitize(fragment []byte) (string, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(fragment), context)
	if err != nil {
		return "", fmt.Errorf("markdown: parse rendered html: %w", err)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if isSkipped(n) {
			continue
		}
		if n.Type == html.ElementNode {
			stripUnsafeAttributes(n)
		}
		cleanNode(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("markdown: render html: %w", err)
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func isSkipped(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style)
}

// cleanNode removes skipped elements and unsafe attributes below n.
func cleanNode(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if isSkipped(c) {
			n.RemoveChild(c)
			continue
		}
		if c.Type == html.ElementNode {
			stripUnsafeAttributes(c)
		}
		cleanNode(c)
	}
}

// stripUnsafeAttributes removes event handlers (on*) and URI attributes
// whose scheme is not allowed.
func stripUnsafeAttributes(n *html.Node) {
	cleaned := n.Attr[:0]
	for _, attr := range n.Attr {
		if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
			continue
		}
		if isURIAttribute(attr) && !isSafeURI(attr.Val) {
			continue
		}
		cleaned = append(cleaned, attr)
	}
	n.Attr = cleaned
}
