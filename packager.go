package confreport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Options configures a Packager.
type Options struct {
	// Metadata is emitted into the package document and the title page.
	// Title and Date are required.
	Metadata Metadata

	// Languages is the allow-list of language codes, in book order.
	Languages []string

	// LanguageNames overrides display names per language code.
	LanguageNames map[string]string

	// Sessions ranks session codes. The zero value means DefaultSessions.
	Sessions SessionTable

	// Logger receives structured progress events. Nil discards them.
	Logger *slog.Logger

	// Now and NewUUID supply the package timestamp and identifier. They
	// default to time.Now and uuid.New; tests pin them for reproducible
	// archives.
	Now     func() time.Time
	NewUUID func() uuid.UUID

	// Verify re-reads the finished temporary archive with Inspect and
	// refuses to publish it unless Verify passes.
	Verify bool
}

// Packager turns chapter records into an EPUB archive. A Packager is
// immutable after New and safe for concurrent use.
type Packager struct {
	opts     Options
	renderer *Renderer
	logger   *slog.Logger
}

// New validates opts and returns a Packager.
func New(opts Options) (*Packager, error) {
	if len(opts.Languages) == 0 {
		return nil, ErrNoLanguages
	}
	seen := make(map[string]bool, len(opts.Languages))
	for _, code := range opts.Languages {
		if !languageCodePattern.MatchString(code) {
			return nil, fmt.Errorf("%w: language code %q", ErrInvalidOptions, code)
		}
		if seen[code] {
			return nil, fmt.Errorf("%w: language %q listed twice", ErrInvalidOptions, code)
		}
		seen[code] = true
	}
	if opts.Sessions.Len() == 0 {
		opts.Sessions = DefaultSessions()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewUUID == nil {
		opts.NewUUID = uuid.New
	}
	opts.Languages = append([]string(nil), opts.Languages...)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Packager{opts: opts, renderer: r, logger: logger}, nil
}

// Assembly is the in-memory result of Assemble: every intermediate view of
// the book plus the write-ready archive entries.
type Assembly struct {
	Parts    []LanguagePart
	IDs      IDMap
	Package  *Package
	Identity Identity
	Entries  []ArchiveEntry
}

// Result describes a written archive.
type Result struct {
	Path string

	// Identifier is the dc:identifier of the package (urn:uuid:...).
	Identifier string

	Entries int
	Size    int64
	Digest  string
}

// Assemble runs grouping, id assignment, package building and rendering,
// and lays out the archive entries. Nothing is written to disk.
func (p *Packager) Assemble(chapters []ChapterRecord) (*Assembly, error) {
	asm, err := p.assemble(chapters)
	if err != nil {
		p.logger.Error("packaging failed", "error", err)
		return nil, err
	}
	return asm, nil
}

func (p *Packager) assemble(chapters []ChapterRecord) (*Assembly, error) {
	parts, err := Group(chapters, p.opts.Languages, p.opts.Sessions, p.opts.LanguageNames)
	if err != nil {
		return nil, err
	}
	for _, part := range parts {
		p.logger.Info("talks grouped",
			"language", part.Language,
			"chapters", len(part.Chapters),
		)
	}
	if dropped := Dropped(chapters, p.opts.Languages); dropped > 0 {
		p.logger.Warn("talks grouped", "dropped", dropped)
	}

	ids := make(IDMap, len(chapters))
	owners := make(map[string]ChapterKey, len(chapters))
	for _, part := range parts {
		partIDs, err := AssignIDs(part)
		if err != nil {
			return nil, err
		}
		for key, id := range partIDs {
			if owner, taken := owners[id]; taken && owner != key {
				return nil, &IdCollisionError{ID: id, First: owner, Second: key}
			}
			owners[id] = key
			ids[key] = id
		}
	}
	p.logger.Info("identifiers assigned", "chapters", len(ids))

	pkg, err := BuildPackage(parts, ids)
	if err != nil {
		return nil, err
	}

	identity := Identity{UUID: p.opts.NewUUID(), Modified: p.opts.Now().UTC().Truncate(time.Second)}
	resources, err := p.render(parts, ids, pkg)
	if err != nil {
		return nil, err
	}
	p.logger.Info("documents rendered", "documents", len(resources))

	packageDoc, err := p.renderer.RenderPackage(p.opts.Metadata, identity, p.opts.Languages, pkg)
	if err != nil {
		return nil, err
	}
	container, err := p.renderer.RenderContainer(PackagePath)
	if err != nil {
		return nil, err
	}
	entries, err := Pack(container, packageDoc, resources)
	if err != nil {
		return nil, err
	}
	if err := checkEntries(entries); err != nil {
		return nil, err
	}
	p.logger.Info("package built",
		"identifier", identity.URN(),
		"manifest", len(pkg.Manifest),
		"entries", len(entries),
	)

	return &Assembly{
		Parts:    parts,
		IDs:      ids,
		Package:  pkg,
		Identity: identity,
		Entries:  entries,
	}, nil
}

// render produces the content documents in manifest order.
func (p *Packager) render(parts []LanguagePart, ids IDMap, pkg *Package) ([]Resource, error) {
	md := p.opts.Metadata
	bookLang := LanguageTag(p.opts.Languages[0])
	resources := make([]Resource, 0, len(pkg.Manifest))

	title, err := p.renderer.RenderTitle(md, bookLang)
	if err != nil {
		return nil, err
	}
	resources = append(resources, Resource{Href: TitleHref, Data: title})

	nav, err := p.renderer.RenderNav(md, pkg.Nav, bookLang)
	if err != nil {
		return nil, err
	}
	resources = append(resources, Resource{Href: NavHref, Data: nav})

	for _, part := range parts {
		page, err := p.renderer.RenderPart(part, md)
		if err != nil {
			return nil, err
		}
		resources = append(resources, Resource{Href: PartHref(part.Language), Data: page})

		for _, ch := range part.Chapters {
			doc, err := p.renderer.RenderChapter(ch)
			if err != nil {
				return nil, err
			}
			resources = append(resources, Resource{Href: ChapterHref(part.Language, ids[ch.Key()]), Data: doc})
		}
	}
	return resources, nil
}

// Package assembles chapters and writes the archive to dest atomically.
// On failure dest is left as it was.
func (p *Packager) Package(ctx context.Context, chapters []ChapterRecord, dest string) (*Result, error) {
	res, err := p.pack(ctx, chapters, dest)
	if err != nil {
		p.logger.Error("packaging failed", "path", dest, "error", err)
		return nil, err
	}
	return res, nil
}

func (p *Packager) pack(ctx context.Context, chapters []ChapterRecord, dest string) (*Result, error) {
	asm, err := p.assemble(chapters)
	if err != nil {
		return nil, err
	}

	wopts := WriteOptions{Modified: asm.Identity.Modified}
	if p.opts.Verify {
		wopts.Check = verifyArchive
	}
	wr, err := Write(ctx, asm.Entries, dest, wopts)
	if err != nil {
		return nil, err
	}
	p.logger.Info("archive written",
		"path", wr.Path,
		"entries", wr.Entries,
		"size", humanize.Bytes(uint64(wr.Size)),
		"digest", wr.Digest,
	)

	return &Result{
		Path:       wr.Path,
		Identifier: asm.Identity.URN(),
		Entries:    wr.Entries,
		Size:       wr.Size,
		Digest:     wr.Digest,
	}, nil
}

// verifyArchive inspects a finished archive file and runs Verify on it.
func verifyArchive(path string) error {
	in, err := Inspect(path)
	if err != nil {
		return err
	}
	defer in.Close()
	return in.Verify()
}
