package confreport

import (
	"archive/zip"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChapterRecord is one converted talk, as produced by the conversion
// collaborator. Records are treated as read-only by every stage.
type ChapterRecord struct {
	// SourcePath is the path of the document the record was converted from.
	SourcePath string `json:"source_path"`

	// Author is the speaker's display name.
	Author string `json:"author"`

	// Title is the talk title as plain text (not yet escaped).
	Title string `json:"title"`

	// Language is the lowercase allow-list code (e.g., "eng", "hun").
	Language string `json:"language"`

	// Session is the session code (e.g., "sat_am"); see SessionTable.
	Session string `json:"session"`

	// Order is the 1-based speaking position within the session.
	Order int `json:"order"`

	// Body is the already-converted XHTML body fragment. It is inserted
	// into the chapter document verbatim.
	Body string `json:"body"`
}

// Key returns the (language, session, order) identity tuple of the record.
func (r ChapterRecord) Key() ChapterKey {
	return ChapterKey{Language: r.Language, Session: r.Session, Order: r.Order}
}

// ChapterKey identifies a chapter within one packaging run.
type ChapterKey struct {
	Language string
	Session  string
	Order    int
}

func (k ChapterKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Language, k.Session, k.Order)
}

// LanguagePart groups the chapters of one language in reading order.
type LanguagePart struct {
	Language    string
	DisplayName string
	Chapters    []ChapterRecord
}

// ManifestItem is one entry of the OPF <manifest>.
type ManifestItem struct {
	// ID is unique across the whole package.
	ID string

	// Href is relative to the package document (e.g., "xhtml/eng.xhtml").
	Href string

	// MediaType is the MIME type of the resource.
	MediaType string

	// Properties holds space-separated EPUB 3 properties (e.g., "nav").
	Properties string
}

// SpineEntry is one entry of the OPF <spine>.
type SpineEntry struct {
	ItemID string
	Linear bool
}

// NavTree is the two-level table of contents: language parts, then chapters.
// Every href equals the href of the corresponding ManifestItem.
type NavTree struct {
	Parts []NavPart
}

// NavPart is a top-level navigation entry for one language part page.
type NavPart struct {
	Language    string
	DisplayName string
	Href        string
	Chapters    []NavEntry
}

// NavEntry is a nested navigation entry for one chapter.
type NavEntry struct {
	ID     string
	Author string
	Title  string
	Href   string
}

// Method is the zip storage method of an archive entry.
type Method uint16

const (
	// Stored entries are written without compression.
	Stored Method = Method(zip.Store)
	// Deflated entries use standard deflate compression.
	Deflated Method = Method(zip.Deflate)
)

func (m Method) String() string {
	switch m {
	case Stored:
		return "stored"
	case Deflated:
		return "deflated"
	default:
		return fmt.Sprintf("method(%d)", uint16(m))
	}
}

// ArchiveEntry is a fully resolved, write-ready file of the archive.
type ArchiveEntry struct {
	Path   string
	Data   []byte
	Method Method
}

// Resource is a generated package file addressed relative to the package
// document directory.
type Resource struct {
	Href string
	Data []byte
}

// Metadata is the caller-supplied package metadata. The builder never
// infers any of these values.
type Metadata struct {
	// Title is the book title (e.g., "October 2016 Conference Report").
	Title string

	Creator     string
	Contributor string
	Publisher   string
	Rights      string

	// Notice is the legal notice printed on the title page. Optional.
	Notice string

	// PartTitleFormat formats a part page title from the language display
	// name. Defaults to DefaultPartTitleFormat.
	PartTitleFormat string

	// Date is the publication date; only the day is emitted.
	Date time.Time
}

// DefaultPartTitleFormat is used when Metadata.PartTitleFormat is empty.
const DefaultPartTitleFormat = "%s Conference Addresses"

// Identity carries the only values allowed to differ between two runs over
// identical inputs: the package UUID and the build timestamp.
type Identity struct {
	UUID     uuid.UUID
	Modified time.Time
}

// URN returns the dc:identifier value of the package.
func (id Identity) URN() string {
	return "urn:uuid:" + id.UUID.String()
}

// TOCItem represents a single entry in an inspected table of contents.
// TOC is a tree structure; each item may have nested children.
type TOCItem struct {
	// Title is the display text of the TOC entry.
	Title string

	// Href is the ZIP-internal path the entry points to (fragment kept).
	Href string

	// Children contains nested TOC entries under this item.
	Children []TOCItem

	// SpineIndex is the index into the spine that this TOC entry points to.
	// A value of -1 indicates no spine association was found.
	SpineIndex int
}

// BookInfo holds the Dublin Core metadata read back from a package document.
type BookInfo struct {
	// Version is the package version attribute (e.g., "3.0").
	Version string

	Titles      []string
	Creators    []string
	Languages   []string
	Identifiers []string
	Publisher   string
	Date        string
	Rights      string

	// Modified is the dcterms:modified meta value.
	Modified string
}

const (
	mediaTypeXHTML   = "application/xhtml+xml"
	mediaTypeOPF     = "application/oebps-package+xml"
	expectedMimetype = "application/epub+zip"
)
