package markdown

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/simp-lee/confreport"
)

// Extensions lists the file extensions LoadDir picks up.
var Extensions = []string{".text", ".md"}

var (
	headingBreak = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
)

// ErrNoHeading is returned for a source whose first non-blank line is not a
// level one heading.
var ErrNoHeading = errors.New("markdown: source has no speaker heading")

// Heading splits the first level one heading of src into speaker and title.
// Inline markup is removed and entities are decoded, so both values are
// plain text.
func Heading(src []byte) (author, title string, err error) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "# ") {
			return "", "", ErrNoHeading
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "# "))

		parts := headingBreak.Split(line, 2)
		if len(parts) == 1 {
			return "", plainText(parts[0]), nil
		}
		return plainText(parts[0]), plainText(parts[1]), nil
	}
	if err := sc.Err(); err != nil {
		return "", "", fmt.Errorf("markdown: read heading: %w", err)
	}
	return "", "", ErrNoHeading
}

func plainText(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// Source is one talk file to convert.
type Source struct {
	// Path is the file path; its base name must follow the
	// gc_{year}_{month}_{session}_{order}_{name} convention.
	Path string

	// Language is the allow-list code. When empty, the name of the
	// directory holding the file is used ({year}/{month}/{lang}/...).
	Language string

	Data []byte
}

// Record converts src into a validated chapter record.
func (c *Converter) Record(src Source) (confreport.ChapterRecord, error) {
	name, err := confreport.ParseSourcePath(src.Path)
	if err != nil {
		return confreport.ChapterRecord{}, err
	}

	lang := src.Language
	if lang == "" {
		lang = path.Base(path.Dir(filepath.ToSlash(src.Path)))
	}

	author, title, err := Heading(src.Data)
	if err != nil {
		return confreport.ChapterRecord{}, fmt.Errorf("%s: %w", src.Path, err)
	}
	body, err := c.Convert(src.Data)
	if err != nil {
		return confreport.ChapterRecord{}, fmt.Errorf("%s: %w", src.Path, err)
	}

	return confreport.NewChapterRecord(confreport.ChapterFields{
		SourcePath: filepath.ToSlash(src.Path),
		Author:     author,
		Title:      title,
		Language:   lang,
		Session:    name.Session,
		Order:      name.Order,
		Body:       body,
	})
}

// LoadDir converts every talk source under root in fsys. Files are visited
// in lexical order; the language of each comes from its parent directory.
func (c *Converter) LoadDir(fsys fs.FS, root string) ([]confreport.ChapterRecord, error) {
	var paths []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasSourceExt(p) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown: walk %s: %w", root, err)
	}
	sort.Strings(paths)

	records := make([]confreport.ChapterRecord, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("markdown: read %s: %w", p, err)
		}
		rec, err := c.Record(Source{Path: p, Data: data})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func hasSourceExt(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
