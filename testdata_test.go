package confreport

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
)

// buildTestZip creates an in-memory ZIP archive from the provided files map
// (path → content) and returns a *zip.Reader over the resulting bytes.
// Entry order follows map iteration and is therefore unspecified.
func buildTestZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildTestZip: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("buildTestZip: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestZip: close writer: %v", err)
	}

	data := buf.Bytes()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestZip: open reader: %v", err)
	}
	return r
}

// zipFile is one entry of an ordered test archive.
type zipFile struct {
	Name    string
	Content string
	Method  uint16
}

// buildOrderedZip writes files in order with the given methods and returns
// the archive bytes.
func buildOrderedZip(t *testing.T, files []zipFile) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
		if err != nil {
			t.Fatalf("buildOrderedZip: create %s: %v", f.Name, err)
		}
		if _, err := io.WriteString(fw, f.Content); err != nil {
			t.Fatalf("buildOrderedZip: write %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildOrderedZip: close writer: %v", err)
	}
	return buf.Bytes()
}

// inspectBytes opens archive bytes with InspectReader.
func inspectBytes(t *testing.T, data []byte) *Inspection {
	t.Helper()
	in, err := InspectReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("InspectReader: %v", err)
	}
	return in
}

var (
	testUUID = uuid.MustParse("6f1c7c2e-3a1b-4c55-9d0e-8a7b6c5d4e3f")
	testNow  = time.Date(2016, time.October, 3, 18, 30, 0, 0, time.UTC)
)

func testMetadata() Metadata {
	return Metadata{
		Title:     "October 2016 Conference Report",
		Creator:   "Greg Reeve",
		Publisher: "The Church of Jesus Christ of Latter-day Saints",
		Rights:    "Copyright © 2016 The Church of Jesus Christ of Latter-day Saints",
		Notice:    "All rights reserved.",
		Date:      time.Date(2016, time.October, 2, 0, 0, 0, 0, time.UTC),
	}
}

// testOptions returns packager options with a pinned identity.
func testOptions() Options {
	return Options{
		Metadata:  testMetadata(),
		Languages: []string{"eng", "hun"},
		LanguageNames: map[string]string{
			"eng": "English",
			"hun": "Magyar",
		},
		Now:     func() time.Time { return testNow },
		NewUUID: func() uuid.UUID { return testUUID },
		Verify:  true,
	}
}

func testChapter(lang, session string, order int, name, author, title string) ChapterRecord {
	return ChapterRecord{
		SourcePath: "2016/10/" + lang + "/gc_2016_10_" + session + "_" + strconv.Itoa(order) + "_" + name + ".text",
		Author:     author,
		Title:      title,
		Language:   lang,
		Session:    session,
		Order:      order,
		Body:       "<h1>" + author + "<br/>" + title + "</h1>\n<p>Talk text.</p>",
	}
}

// sampleChapters is a small two-language conference, deliberately unsorted.
func sampleChapters() []ChapterRecord {
	return []ChapterRecord{
		testChapter("eng", "sun_am", 1, "Monson", "Thomas S. Monson", "Constant Truths for Changing Times"),
		testChapter("hun", "sat_am", 1, "Eyring", "Henry B. Eyring", "Hazafelé"),
		testChapter("eng", "sat_am", 2, "Uchtdorf", "Dieter F. Uchtdorf", "Fourth Floor, Last Door"),
		testChapter("eng", "sat_am", 1, "Eyring", "Henry B. Eyring", "Walk in the Light"),
		testChapter("eng", "sat_pm", 1, "Oaks", "Dallin H. Oaks", "Opposition in All Things"),
	}
}

// dirEntries lists the names in dir.
func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func testDest(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "report.epub")
}
