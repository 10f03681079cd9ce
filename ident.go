package confreport

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// IDMap maps each chapter of a part to its package-wide manifest id.
type IDMap map[ChapterKey]string

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// fallbackSlug is used when a source path yields no usable characters.
const fallbackSlug = "talk"

// AssignIDs assigns every chapter of part an id of the form
// {language}-{session}-{order}-{slug}, where slug is derived from the last
// segment of the chapter's source path (see ShortSlug).
//
// Ids are unique whenever (language, session, order) is, which Group
// guarantees. The uniqueness is still asserted: ids feed every manifest,
// spine and nav cross reference, so a collision returns *IdCollisionError.
func AssignIDs(part LanguagePart) (IDMap, error) {
	ids := make(IDMap, len(part.Chapters))
	owners := make(map[string]ChapterKey, len(part.Chapters))
	for _, ch := range part.Chapters {
		key := ch.Key()
		id := ChapterID(ch)
		if owner, taken := owners[id]; taken && owner != key {
			return nil, &IdCollisionError{ID: id, First: owner, Second: key}
		}
		owners[id] = key
		ids[key] = id
	}
	return ids, nil
}

// ChapterID returns the manifest id of ch.
func ChapterID(ch ChapterRecord) string {
	return ch.Language + "-" + ch.Session + "-" + strconv.Itoa(ch.Order) + "-" + ShortSlug(ch.SourcePath)
}

// ShortSlug derives a stable, filesystem- and XML-id-safe token from the
// last segment of p with its extension removed.
// "2016/10/eng/gc_2016_10_sat_am_2_Uchtdorf.text" → "gc-2016-10-sat-am-2-uchtdorf".
func ShortSlug(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	// Decompose accented characters, then drop what is left outside ASCII.
	s := norm.NFKD.String(base)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" || s == "." {
		return fallbackSlug
	}
	return s
}
