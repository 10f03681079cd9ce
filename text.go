package confreport

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags start a new line in extracted text.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.Section:    true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipTags have no readable text.
var skipTags = map[atom.Atom]bool{
	atom.Head:   true,
	atom.Script: true,
	atom.Style:  true,
}

// Text returns the readable text of the content document name, one line per
// block element. Whitespace runs inside a line collapse to one space.
func (in *Inspection) Text(name string) (string, error) {
	data, err := in.ReadFile(name)
	if err != nil {
		return "", err
	}
	return extractText(stripBOM(data))
}

func extractText(data []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(data))

	var lines []string
	var line strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(line.String()), " "); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			flush()
			return strings.Join(lines, "\n"), nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] {
				// Self-closing skip tags have no end tag to balance.
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip == 0 && blockTags[a] {
				flush()
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] && skip > 0 {
				skip--
				continue
			}
			if skip == 0 && blockTags[a] {
				flush()
			}

		case html.TextToken:
			if skip == 0 {
				line.Write(z.Text())
				line.WriteByte(' ')
			}
		}
	}
}
