package confreport

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ChapterFields is the unvalidated input to NewChapterRecord.
type ChapterFields = ChapterRecord

var languageCodePattern = regexp.MustCompile(`^[a-z]{2,3}$`)

// textFields are the fields whose absence makes a document unrenderable;
// they are reported as TemplateDataMissingError rather than InvalidChapterError.
var textFields = map[string]bool{
	"source_path": true,
	"author":      true,
	"title":       true,
	"body":        true,
}

// NewChapterRecord validates f and returns it as a ChapterRecord.
//
// Surrounding whitespace is trimmed from every text field except Body.
// Session membership is not checked here; Group checks it against the
// session table in use.
func NewChapterRecord(f ChapterFields) (ChapterRecord, error) {
	r := ChapterRecord{
		SourcePath: strings.TrimSpace(f.SourcePath),
		Author:     strings.TrimSpace(f.Author),
		Title:      strings.TrimSpace(f.Title),
		Language:   strings.TrimSpace(f.Language),
		Session:    strings.TrimSpace(f.Session),
		Order:      f.Order,
		Body:       f.Body,
	}
	if strings.TrimSpace(r.Body) == "" {
		r.Body = ""
	}

	err := validation.ValidateStruct(&r,
		validation.Field(&r.SourcePath, validation.Required),
		validation.Field(&r.Author, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Body, validation.Required),
		validation.Field(&r.Language, validation.Required, validation.Match(languageCodePattern)),
		validation.Field(&r.Session, validation.Required),
		validation.Field(&r.Order, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return ChapterRecord{}, chapterValidationError(err, r.SourcePath)
	}
	return r, nil
}

// chapterValidationError converts ozzo validation errors into the package's
// error types. Fields are reported in a fixed order so the result is stable.
func chapterValidationError(err error, source string) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		// Missing text fields first, then alphabetical.
		if textFields[fields[i]] != textFields[fields[j]] {
			return textFields[fields[i]]
		}
		return fields[i] < fields[j]
	})

	field := fields[0]
	if textFields[field] {
		return &TemplateDataMissingError{Kind: KindChapter, Field: field, Source: source}
	}
	return &InvalidChapterError{Field: field, Reason: errs[field].Error(), SourcePath: source}
}

// validateForRender checks the fields the chapter template needs. Records
// built with NewChapterRecord always pass; literal records may not.
func (r ChapterRecord) validateForRender() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return &TemplateDataMissingError{Kind: KindChapter, Field: "title", Source: r.SourcePath}
	case strings.TrimSpace(r.Author) == "":
		return &TemplateDataMissingError{Kind: KindChapter, Field: "author", Source: r.SourcePath}
	case strings.TrimSpace(r.Body) == "":
		return &TemplateDataMissingError{Kind: KindChapter, Field: "body", Source: r.SourcePath}
	}
	return nil
}
