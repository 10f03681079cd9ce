package confreport

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// SourceName is the parsed base name of a converted talk file, laid out as
// gc_{year}_{month}_{day}_{period}_{order}_{name}.{ext}, for example
// "gc_2016_10_sat_am_2_Uchtdorf.text".
type SourceName struct {
	Year    int
	Month   int
	Session string // day and period joined, e.g. "sat_am"
	Order   int
	Name    string
}

const sourcePrefix = "gc"

// ParseSourcePath parses the base name of p. The name segment may itself
// contain underscores.
func ParseSourcePath(p string) (SourceName, error) {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	fields := strings.SplitN(base, "_", 7)
	if len(fields) != 7 || fields[0] != sourcePrefix {
		return SourceName{}, &InvalidChapterError{Field: "source_path", Reason: "not a gc_{year}_{month}_{session}_{order}_{name} file name", SourcePath: p}
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1 {
		return SourceName{}, &InvalidChapterError{Field: "source_path", Reason: fmt.Sprintf("bad year %q", fields[1]), SourcePath: p}
	}
	month, err := strconv.Atoi(fields[2])
	if err != nil || month < 1 || month > 12 {
		return SourceName{}, &InvalidChapterError{Field: "source_path", Reason: fmt.Sprintf("bad month %q", fields[2]), SourcePath: p}
	}
	switch fields[3] {
	case "sat", "sun":
	default:
		return SourceName{}, &InvalidChapterError{Field: "source_path", Reason: fmt.Sprintf("bad day %q", fields[3]), SourcePath: p}
	}
	switch fields[4] {
	case "am", "pm", "ps":
	default:
		return SourceName{}, &InvalidChapterError{Field: "source_path", Reason: fmt.Sprintf("bad period %q", fields[4]), SourcePath: p}
	}
	order, err := strconv.Atoi(fields[5])
	if err != nil || order < 1 {
		return SourceName{}, &InvalidChapterError{Field: "source_path", Reason: fmt.Sprintf("bad order %q", fields[5]), SourcePath: p}
	}
	if fields[6] == "" {
		return SourceName{}, &InvalidChapterError{Field: "source_path", Reason: "empty name", SourcePath: p}
	}

	return SourceName{
		Year:    year,
		Month:   month,
		Session: fields[3] + "_" + fields[4],
		Order:   order,
		Name:    fields[6],
	}, nil
}
