package confreport

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Group partitions chapters by language and orders each partition by
// (session rank, order).
//
// One LanguagePart is returned per code in languages, in that order, even
// when no chapters were supplied for it. Chapters whose language is not in
// languages are dropped. names overrides the display name of a language; codes
// without an override fall back to the English name known to x/text.
//
// Group fails before any ordering work with *UnknownSessionError for a
// session missing from sessions, or *DuplicateChapterError for two chapters
// sharing (language, session, order).
func Group(chapters []ChapterRecord, languages []string, sessions SessionTable, names map[string]string) ([]LanguagePart, error) {
	if len(languages) == 0 {
		return nil, ErrNoLanguages
	}

	index := make(map[string]int, len(languages))
	parts := make([]LanguagePart, len(languages))
	for i, code := range languages {
		if _, dup := index[code]; dup {
			return nil, fmt.Errorf("%w: language %q listed twice", ErrInvalidOptions, code)
		}
		index[code] = i
		parts[i] = LanguagePart{Language: code, DisplayName: DisplayName(code, names)}
	}

	seen := make(map[ChapterKey]string, len(chapters))
	for _, ch := range chapters {
		i, ok := index[ch.Language]
		if !ok {
			continue
		}
		if _, ok := sessions.Lookup(ch.Session); !ok {
			return nil, &UnknownSessionError{
				Session:    ch.Session,
				Language:   ch.Language,
				Order:      ch.Order,
				SourcePath: ch.SourcePath,
			}
		}
		key := ch.Key()
		if first, dup := seen[key]; dup {
			return nil, &DuplicateChapterError{Key: key, First: first, Second: ch.SourcePath}
		}
		seen[key] = ch.SourcePath
		parts[i].Chapters = append(parts[i].Chapters, ch)
	}

	for i := range parts {
		chs := parts[i].Chapters
		sort.SliceStable(chs, func(a, b int) bool {
			return lessChapter(sessions, chs[a], chs[b])
		})
	}
	return parts, nil
}

// lessChapter orders two chapters of the same language. Both sessions must
// be known to the table.
func lessChapter(sessions SessionTable, a, b ChapterRecord) bool {
	ra, _ := sessions.Rank(a.Session)
	rb, _ := sessions.Rank(b.Session)
	if ra != rb {
		return ra < rb
	}
	return a.Order < b.Order
}

// Dropped counts the chapters Group would discard because their language is
// not in languages.
func Dropped(chapters []ChapterRecord, languages []string) int {
	allowed := make(map[string]bool, len(languages))
	for _, code := range languages {
		allowed[code] = true
	}
	n := 0
	for _, ch := range chapters {
		if !allowed[ch.Language] {
			n++
		}
	}
	return n
}

// DisplayName returns the human-readable name of a language code. An entry in
// names wins; otherwise the English display name from x/text is used, and
// the code itself when x/text does not know it.
func DisplayName(code string, names map[string]string) string {
	if name := strings.TrimSpace(names[code]); name != "" {
		return name
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// LanguageTag returns the BCP 47 tag for an allow-list code, e.g. "eng" → "en".
// Unknown codes are returned unchanged.
func LanguageTag(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}
