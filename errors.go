package confreport

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the confreport package.
//
// Every structured error below unwraps to exactly one of the category
// sentinels ErrInvalidInput, ErrIntegrity or ErrArchiveWrite, so callers
// can branch on the class of failure with errors.Is.
var (
	// ErrInvalidInput marks failures caused by malformed upstream data
	// (duplicate chapters, unknown sessions, missing template fields).
	ErrInvalidInput = errors.New("confreport: invalid input")

	// ErrIntegrity marks failures of the builder's own invariants
	// (manifest consistency, id collisions, archive layout). These
	// indicate a defect and are never recoverable.
	ErrIntegrity = errors.New("confreport: integrity violation")

	// ErrArchiveWrite marks I/O failures while writing the archive.
	ErrArchiveWrite = errors.New("confreport: archive write failed")

	// ErrNoLanguages indicates an empty language allow-list.
	ErrNoLanguages = errors.New("confreport: no languages configured")

	// ErrInvalidOptions indicates a malformed packaging configuration
	// (duplicate language codes, unsafe resource paths).
	ErrInvalidOptions = errors.New("confreport: invalid options")

	// ErrDestinationLocked indicates another run holds the destination lock.
	ErrDestinationLocked = errors.New("confreport: destination is locked by another run")

	// ErrInvalidEPub indicates an inspected archive is not a valid ePub
	// (e.g., missing container.xml and no .opf file found).
	ErrInvalidEPub = errors.New("confreport: invalid ePub file")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("confreport: file not found in archive")
)

// DuplicateChapterError reports two chapters sharing (language, session, order).
type DuplicateChapterError struct {
	Key    ChapterKey
	First  string // source path of the chapter seen first
	Second string
}

func (e *DuplicateChapterError) Error() string {
	return fmt.Sprintf("confreport: duplicate chapter %s (%s and %s)", e.Key, e.First, e.Second)
}

func (e *DuplicateChapterError) Unwrap() error { return ErrInvalidInput }

// UnknownSessionError reports a session code missing from the session table.
type UnknownSessionError struct {
	Session    string
	Language   string
	Order      int
	SourcePath string
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("confreport: unknown session %q for %s order %d (%s)", e.Session, e.Language, e.Order, e.SourcePath)
}

func (e *UnknownSessionError) Unwrap() error { return ErrInvalidInput }

// TemplateDataMissingError reports a required document field that is empty.
type TemplateDataMissingError struct {
	Kind   DocumentKind
	Field  string
	Source string // source path or other locator, may be empty
}

func (e *TemplateDataMissingError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("confreport: %s document: missing %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("confreport: %s document: missing %s (%s)", e.Kind, e.Field, e.Source)
}

func (e *TemplateDataMissingError) Unwrap() error { return ErrInvalidInput }

// InvalidChapterError reports a chapter field that is present but malformed.
type InvalidChapterError struct {
	Field      string
	Reason     string
	SourcePath string
}

func (e *InvalidChapterError) Error() string {
	return fmt.Sprintf("confreport: invalid chapter %s: %s (%s)", e.Field, e.Reason, e.SourcePath)
}

func (e *InvalidChapterError) Unwrap() error { return ErrInvalidInput }

// IdCollisionError reports two distinct chapters resolving to the same id.
type IdCollisionError struct {
	ID     string
	First  ChapterKey
	Second ChapterKey
}

func (e *IdCollisionError) Error() string {
	return fmt.Sprintf("confreport: id %q assigned to both %s and %s", e.ID, e.First, e.Second)
}

func (e *IdCollisionError) Unwrap() error { return ErrIntegrity }

// ManifestIntegrityError reports a broken cross reference between the
// manifest, the spine and the navigation tree.
type ManifestIntegrityError struct {
	ID     string
	Href   string
	Reason string
}

func (e *ManifestIntegrityError) Error() string {
	var parts []string
	if e.ID != "" {
		parts = append(parts, "id "+e.ID)
	}
	if e.Href != "" {
		parts = append(parts, "href "+e.Href)
	}
	return fmt.Sprintf("confreport: manifest integrity: %s [%s]", e.Reason, strings.Join(parts, ", "))
}

func (e *ManifestIntegrityError) Unwrap() error { return ErrIntegrity }

// DuplicateEntryPathError reports two logical files mapped to one archive path,
// or a path that cannot be placed in the archive at all.
type DuplicateEntryPathError struct {
	Path   string
	Reason string
}

func (e *DuplicateEntryPathError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("confreport: duplicate archive entry %s", e.Path)
	}
	return fmt.Sprintf("confreport: archive entry %s: %s", e.Path, e.Reason)
}

func (e *DuplicateEntryPathError) Unwrap() error { return ErrIntegrity }

// ArchiveWriteError wraps an I/O failure while producing the archive file.
type ArchiveWriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArchiveWriteError) Error() string {
	return fmt.Sprintf("confreport: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the ErrArchiveWrite category and the underlying cause.
func (e *ArchiveWriteError) Unwrap() []error { return []error{ErrArchiveWrite, e.Err} }
