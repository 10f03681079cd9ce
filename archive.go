package confreport

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/hex"
	"hash/crc32"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/zeebo/blake3"
)

// Open Container Format layout.
const (
	MimetypePath  = "mimetype"
	ContainerPath = "META-INF/container.xml"
	PackageDir    = "EPUB"
	PackagePath   = PackageDir + "/package.opf"
)

const lockSuffix = ".lock"

// Pack lays out the package files on the OCF tree and returns the archive
// entries in write order: mimetype (stored), META-INF/container.xml,
// EPUB/package.opf, then resources in the order given. Everything after
// mimetype is deflated.
//
// Resource hrefs are relative to the package directory. Two hrefs that clean
// to the same path, or a href that lands on a reserved path, produce
// *DuplicateEntryPathError.
func Pack(container, packageDoc []byte, resources []Resource) ([]ArchiveEntry, error) {
	entries := make([]ArchiveEntry, 0, len(resources)+3)
	entries = append(entries,
		ArchiveEntry{Path: MimetypePath, Data: []byte(expectedMimetype), Method: Stored},
		ArchiveEntry{Path: ContainerPath, Data: container, Method: Deflated},
		ArchiveEntry{Path: PackagePath, Data: packageDoc, Method: Deflated},
	)

	seen := map[string]bool{
		MimetypePath:  true,
		ContainerPath: true,
		PackagePath:   true,
	}
	for _, res := range resources {
		if res.Href == "" {
			return nil, &DuplicateEntryPathError{Path: res.Href, Reason: "empty resource href"}
		}
		clean := path.Clean(res.Href)
		if clean == "." || !isSafePath(clean) {
			return nil, &DuplicateEntryPathError{Path: res.Href, Reason: "resource href escapes the package directory"}
		}
		full := path.Join(PackageDir, clean)
		if seen[full] {
			return nil, &DuplicateEntryPathError{Path: full}
		}
		seen[full] = true
		entries = append(entries, ArchiveEntry{Path: full, Data: res.Data, Method: Deflated})
	}
	return entries, nil
}

// checkEntries asserts the archive layout before anything touches disk.
func checkEntries(entries []ArchiveEntry) error {
	if len(entries) == 0 {
		return &DuplicateEntryPathError{Path: MimetypePath, Reason: "archive has no entries"}
	}
	first := entries[0]
	if first.Path != MimetypePath || first.Method != Stored || !bytes.Equal(first.Data, []byte(expectedMimetype)) {
		return &DuplicateEntryPathError{Path: first.Path, Reason: "first entry must be an uncompressed mimetype"}
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Path] {
			return &DuplicateEntryPathError{Path: e.Path}
		}
		seen[e.Path] = true
		if !isSafePath(e.Path) {
			return &DuplicateEntryPathError{Path: e.Path, Reason: "unsafe archive path"}
		}
		if e.Path != MimetypePath && e.Method != Deflated {
			return &DuplicateEntryPathError{Path: e.Path, Reason: "entry must be deflated"}
		}
	}
	return nil
}

// WriteOptions tunes Write.
type WriteOptions struct {
	// Modified is recorded on every entry except mimetype. Zero leaves
	// the timestamps unset.
	Modified time.Time

	// Check, when set, runs against the finished temporary archive before
	// it is renamed into place. A non-nil error aborts the write.
	Check func(tmpPath string) error
}

// WriteResult describes an archive written by Write.
type WriteResult struct {
	Path    string
	Entries int
	Size    int64

	// Digest is the hex BLAKE3-256 digest of the archive bytes.
	Digest string
}

// Write serialises entries into a zip archive at dest.
//
// The archive is written to a temporary file in dest's directory and
// renamed into place only after it is complete, so dest is never observed
// half-written. A lock file next to dest keeps two runs from writing the
// same destination at once. On any failure, including cancellation of ctx,
// the temporary file is removed and dest is left untouched.
func Write(ctx context.Context, entries []ArchiveEntry, dest string, opts WriteOptions) (*WriteResult, error) {
	if err := checkEntries(entries); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &ArchiveWriteError{Op: "write", Path: dest, Err: err}
	}

	lock := flock.New(dest + lockSuffix)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, &ArchiveWriteError{Op: "lock", Path: dest, Err: err}
	}
	if !locked {
		return nil, &ArchiveWriteError{Op: "lock", Path: dest, Err: ErrDestinationLocked}
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, &ArchiveWriteError{Op: "create", Path: dest, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	hasher := blake3.New()
	cw := &countingWriter{w: io.MultiWriter(tmp, hasher)}
	if err := writeZip(ctx, cw, entries, opts.Modified); err != nil {
		return nil, &ArchiveWriteError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return nil, &ArchiveWriteError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return nil, &ArchiveWriteError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &ArchiveWriteError{Op: "close", Path: tmpPath, Err: err}
	}

	if opts.Check != nil {
		if err := opts.Check(tmpPath); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ArchiveWriteError{Op: "write", Path: dest, Err: err}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, &ArchiveWriteError{Op: "rename", Path: dest, Err: err}
	}
	committed = true

	return &WriteResult{
		Path:    dest,
		Entries: len(entries),
		Size:    cw.n,
		Digest:  hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// writeZip writes entries in order. Stored entries are written raw with
// their CRC and sizes in the local header, so mimetype carries neither a
// data descriptor nor an extra field.
func writeZip(ctx context.Context, w io.Writer, entries []ArchiveEntry, modified time.Time) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr := &zip.FileHeader{Name: e.Path, Method: uint16(e.Method)}
		if e.Path != MimetypePath && !modified.IsZero() {
			hdr.Modified = modified.UTC()
		}

		var (
			fw  io.Writer
			err error
		)
		if e.Method == Stored {
			hdr.CRC32 = crc32.ChecksumIEEE(e.Data)
			hdr.CompressedSize64 = uint64(len(e.Data))
			hdr.UncompressedSize64 = uint64(len(e.Data))
			fw, err = zw.CreateRaw(hdr)
		} else {
			fw, err = zw.CreateHeader(hdr)
		}
		if err != nil {
			return err
		}
		if _, err := fw.Write(e.Data); err != nil {
			return err
		}
	}
	return zw.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
