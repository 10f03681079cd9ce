package confreport

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EntryInfo describes one archive entry as stored in the central directory.
type EntryInfo struct {
	Name     string
	Method   Method
	Flags    uint16
	ExtraLen int
	Size     uint64
}

// dataDescriptorFlag is general purpose bit 3: sizes follow the entry data.
const dataDescriptorFlag = 0x8

// Inspection is an EPUB archive read back from disk. It exposes what a
// reading system would see: the entry table, the package document, the
// manifest, the spine and the toc nav.
//
// An Inspection is not safe for concurrent use by multiple goroutines.
type Inspection struct {
	reader *zip.Reader
	zip    zipIndex
	closer io.Closer // non-nil only when created via Inspect
	opf    *opfPackage

	// PackagePath is the rootfile named by META-INF/container.xml.
	PackagePath string

	// Identifier is the dc:identifier referenced by unique-identifier.
	Identifier string

	Entries  []EntryInfo
	Info     BookInfo
	Manifest []ManifestItem
	Spine    []SpineEntry

	// NavPath is the ZIP-internal path of the nav document, empty when the
	// manifest declares none.
	NavPath string

	// TOC holds the toc nav entries with hrefs resolved to ZIP-internal paths.
	TOC []TOCItem

	// Encrypted lists the resources declared in META-INF/encryption.xml.
	Encrypted []EncryptedResource

	// Warnings collects non-fatal anomalies found while reading.
	Warnings []string
}

// Inspect opens the EPUB at path. The caller must call Close when done.
func Inspect(path string) (*Inspection, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("confreport: open %s: %w", path, err)
	}

	in, err := newInspection(&zrc.Reader, zrc)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return in, nil
}

// InspectReader reads an EPUB from r. The caller owns r; Close only
// releases internal state.
func InspectReader(r io.ReaderAt, size int64) (*Inspection, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("confreport: open zip: %w", err)
	}
	return newInspection(zr, nil)
}

func newInspection(zr *zip.Reader, closer io.Closer) (*Inspection, error) {
	in := &Inspection{
		reader: zr,
		zip:    newZipIndex(zr),
		closer: closer,
	}
	for _, f := range zr.File {
		in.Entries = append(in.Entries, EntryInfo{
			Name:     f.Name,
			Method:   Method(f.Method),
			Flags:    f.Flags,
			ExtraLen: len(f.Extra),
			Size:     f.UncompressedSize64,
		})
	}
	in.checkMimetype()
	if err := in.readEncryption(); err != nil {
		return nil, err
	}

	pkgPath, err := in.locatePackage()
	if err != nil {
		return nil, err
	}
	in.PackagePath = pkgPath

	f := in.zip.find(pkgPath)
	if f == nil {
		return nil, fmt.Errorf("confreport: package document not found in archive: %s: %w", pkgPath, ErrInvalidEPub)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, fmt.Errorf("confreport: read package document: %w", err)
	}
	opf, err := parseOPF(data)
	if err != nil {
		return nil, err
	}
	in.opf = opf
	in.Info = extractBookInfo(opf)
	in.Manifest = opf.manifestItems()
	in.Spine = opf.spineEntries()
	if id, ok := uniqueIdentifier(opf); ok {
		in.Identifier = id
	} else {
		in.warn("unique-identifier %q does not name a dc:identifier", opf.UniqueIdentifier)
	}

	// A missing or broken nav leaves TOC empty; Verify reports it.
	in.parseTOC()

	return in, nil
}

// checkMimetype records a warning when the first entry is not the
// mimetype file with the expected content.
func (in *Inspection) checkMimetype() {
	if len(in.reader.File) == 0 {
		in.warn("empty ZIP archive; mimetype entry missing")
		return
	}
	first := in.reader.File[0]
	if first.Name != MimetypePath {
		in.warn("first ZIP entry is %q, not %q", first.Name, MimetypePath)
		return
	}
	data, err := readZipFile(first)
	if err != nil {
		in.warn("cannot read mimetype entry: %v", err)
		return
	}
	if string(data) != expectedMimetype {
		in.warn("unexpected mimetype: %q", string(data))
	}
}

func (in *Inspection) parseTOC() {
	var navItem *ManifestItem
	for i := range in.Manifest {
		if hasProperty(in.Manifest[i].Properties, "nav") {
			navItem = &in.Manifest[i]
			break
		}
	}
	if navItem == nil {
		in.warn("manifest declares no nav document")
		return
	}
	in.NavPath = in.resolve(navItem.Href)

	data, err := in.ReadFile(in.NavPath)
	if err != nil {
		in.warn("cannot read nav document %s: %v", in.NavPath, err)
		return
	}
	toc, err := parseNavDocument(data, in.NavPath)
	if err != nil {
		in.warn("%v", err)
		return
	}

	spineMap := make(map[string]int, len(in.Spine))
	byID := in.manifestByID()
	for i, ref := range in.Spine {
		if item, ok := byID[ref.ItemID]; ok {
			spineMap[in.resolve(item.Href)] = i
		}
	}
	assignSpineIndices(toc, spineMap)
	in.TOC = toc
}

// Close releases resources held by the Inspection. When it was created via
// Inspect, Close closes the underlying file. Close is idempotent.
func (in *Inspection) Close() error {
	if in.closer != nil {
		err := in.closer.Close()
		in.closer = nil
		return err
	}
	return nil
}

// ReadFile reads an entry by its ZIP-internal path. The lookup falls back to
// a case-insensitive match.
func (in *Inspection) ReadFile(name string) ([]byte, error) {
	f := in.zip.find(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return readZipFile(f)
}

// Verify checks the archive against the layout this package writes:
//
//   - the first entry is mimetype, stored, without extra field or data
//     descriptor, holding exactly "application/epub+zip"
//   - every other entry is deflated
//   - the rootfile is EPUB/package.opf and has a unique identifier
//   - manifest ids and hrefs are unique and every manifest file exists
//   - every spine entry references a manifest item, once
//   - the nav document is in the manifest and non-linear in the spine
//   - every toc entry points at a manifest item
//   - no resource is encrypted and no rights descriptor is present
//
// Layout failures wrap ErrInvalidEPub; cross-reference failures are
// *ManifestIntegrityError. All failures are joined.
func (in *Inspection) Verify() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("confreport: %s: %w", fmt.Sprintf(format, args...), ErrInvalidEPub))
	}

	if len(in.reader.File) == 0 {
		invalid("archive is empty")
		return errors.Join(errs...)
	}
	first := in.reader.File[0]
	switch {
	case first.Name != MimetypePath:
		invalid("first entry is %q, want %q", first.Name, MimetypePath)
	case first.Method != zip.Store:
		invalid("mimetype is %s, want stored", Method(first.Method))
	case len(first.Extra) != 0:
		invalid("mimetype has a %d byte extra field", len(first.Extra))
	case first.Flags&dataDescriptorFlag != 0:
		invalid("mimetype uses a data descriptor")
	default:
		data, err := readZipFile(first)
		if err != nil {
			invalid("read mimetype: %v", err)
		} else if !bytes.Equal(data, []byte(expectedMimetype)) {
			invalid("mimetype content is %q", string(data))
		}
	}
	for _, f := range in.reader.File[1:] {
		if f.Method != zip.Deflate {
			invalid("entry %s is %s, want deflated", f.Name, Method(f.Method))
		}
	}

	for _, p := range []string{encryptionPath, rightsPath, sinfPath} {
		if in.zip.find(p) != nil {
			invalid("unexpected %s", p)
		}
	}

	if in.PackagePath != PackagePath {
		invalid("rootfile is %q, want %q", in.PackagePath, PackagePath)
	}
	if in.Identifier == "" {
		invalid("package has no unique identifier")
	}

	ids := make(map[string]bool, len(in.Manifest))
	hrefs := make(map[string]string, len(in.Manifest))
	for _, item := range in.Manifest {
		if item.ID == "" {
			errs = append(errs, &ManifestIntegrityError{Href: item.Href, Reason: "empty manifest id"})
			continue
		}
		if ids[item.ID] {
			errs = append(errs, &ManifestIntegrityError{ID: item.ID, Reason: "duplicate manifest id"})
		}
		ids[item.ID] = true

		full := in.resolve(item.Href)
		if other, dup := hrefs[full]; dup {
			errs = append(errs, &ManifestIntegrityError{ID: item.ID, Href: item.Href, Reason: "href also used by " + other})
		}
		hrefs[full] = item.ID
		if full == "" || in.zip.exact[full] == nil {
			errs = append(errs, &ManifestIntegrityError{ID: item.ID, Href: item.Href, Reason: "manifest file missing from archive"})
		}
	}

	byID := in.manifestByID()
	inSpine := make(map[string]bool, len(in.Spine))
	var navLinear, navInSpine bool
	for _, ref := range in.Spine {
		item, ok := byID[ref.ItemID]
		if !ok {
			errs = append(errs, &ManifestIntegrityError{ID: ref.ItemID, Reason: "spine references unknown manifest item"})
			continue
		}
		if inSpine[ref.ItemID] {
			errs = append(errs, &ManifestIntegrityError{ID: ref.ItemID, Reason: "spine references item twice"})
		}
		inSpine[ref.ItemID] = true
		if hasProperty(item.Properties, "nav") {
			navInSpine = true
			navLinear = ref.Linear
		}
	}

	switch {
	case in.NavPath == "":
		invalid("manifest declares no nav document")
	case !navInSpine:
		errs = append(errs, &ManifestIntegrityError{Href: in.NavPath, Reason: "nav document missing from spine"})
	case navLinear:
		errs = append(errs, &ManifestIntegrityError{Href: in.NavPath, Reason: "nav document must be non-linear"})
	}
	if in.NavPath != "" && len(in.TOC) == 0 {
		invalid("nav document has no toc entries")
	}

	var flat []*TOCItem
	flattenTOCItems(&flat, in.TOC)
	for _, item := range flat {
		target := hrefWithoutFragment(item.Href)
		if _, ok := hrefs[target]; !ok || target == "" {
			errs = append(errs, &ManifestIntegrityError{Href: item.Href, Reason: fmt.Sprintf("toc entry %q does not match a manifest href", item.Title)})
		}
	}

	return errors.Join(errs...)
}

// Chapters returns the spine documents in reading order as ZIP-internal
// paths, skipping non-linear entries.
func (in *Inspection) Chapters() []string {
	byID := in.manifestByID()
	var out []string
	for _, ref := range in.Spine {
		if !ref.Linear {
			continue
		}
		if item, ok := byID[ref.ItemID]; ok {
			out = append(out, in.resolve(item.Href))
		}
	}
	return out
}

func (in *Inspection) manifestByID() map[string]ManifestItem {
	m := make(map[string]ManifestItem, len(in.Manifest))
	for _, item := range in.Manifest {
		if _, exists := m[item.ID]; !exists {
			m[item.ID] = item
		}
	}
	return m
}

// resolve turns a package-relative href into a ZIP-internal path.
func (in *Inspection) resolve(href string) string {
	if href == "" {
		return ""
	}
	return resolveRelativePath(in.PackagePath, href)
}

func (in *Inspection) warn(format string, args ...any) {
	in.Warnings = append(in.Warnings, fmt.Sprintf(format, args...))
}

func hasProperty(props, name string) bool {
	for _, p := range strings.Fields(props) {
		if p == name {
			return true
		}
	}
	return false
}
