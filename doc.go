// Package confreport packages converted conference talks into a
// multilingual EPUB 3 book.
//
// A book is a title page, a navigation document, and one part per
// configured language. Each part is a part page followed by that
// language's talks in session order: Saturday morning, Saturday afternoon,
// priesthood session, Sunday morning, Sunday afternoon, and by speaking
// order within a session.
//
// # Building a book
//
// Talks arrive as [ChapterRecord] values, usually produced by the markdown
// subpackage. [New] validates the packaging options and [Packager.Package]
// runs the whole pipeline:
//
//	p, err := confreport.New(confreport.Options{
//	    Metadata:  confreport.Metadata{Title: "October 2016 Conference Report", Date: date},
//	    Languages: []string{"eng", "hun"},
//	    Logger:    logger,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := p.Package(ctx, records, "cr_201610.epub")
//
// The stages are also exported for callers that need the intermediate
// views: [Group], [AssignIDs], [BuildPackage], [Renderer], [Pack] and
// [Write]. [Packager.Assemble] runs everything except the write.
//
// # Archive layout
//
// The archive always starts with an uncompressed "mimetype" entry holding
// "application/epub+zip", followed by META-INF/container.xml and
// EPUB/package.opf. Content documents live under EPUB/xhtml/. [Write]
// writes to a temporary file next to the destination and renames it into
// place, so a failed or cancelled run never leaves a partial archive.
//
// # Reading an archive back
//
// [Inspect] opens an EPUB and exposes its entry table, manifest, spine and
// toc nav. [Inspection.Verify] checks the layout rules above on the real
// bytes; with [Options].Verify set, the packager runs it before publishing.
//
// # Error Handling
//
// Every structured error unwraps to one category sentinel:
//   - [ErrInvalidInput] – bad upstream data: [DuplicateChapterError],
//     [UnknownSessionError], [TemplateDataMissingError], [InvalidChapterError]
//   - [ErrIntegrity] – a broken internal invariant: [ManifestIntegrityError],
//     [IdCollisionError], [DuplicateEntryPathError]
//   - [ErrArchiveWrite] – an I/O failure: [ArchiveWriteError]
//
// Failures are never retried. Every failure aborts the run.
package confreport
