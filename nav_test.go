package confreport

import (
	"errors"
	"testing"
)

func TestParseNavDocument_FlatTOC(t *testing.T) {
	navData := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Contents</title></head>
<body>
  <nav epub:type="toc">
    <ol>
      <li><a href="title.xhtml">Title Page</a></li>
      <li><a href="eng.xhtml">English</a></li>
      <li><a href="hun.xhtml">Magyar</a></li>
    </ol>
  </nav>
</body>
</html>`)

	items, err := parseNavDocument(navData, "EPUB/xhtml/nav.xhtml")
	if err != nil {
		t.Fatalf("parseNavDocument returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	tests := []struct {
		title string
		href  string
	}{
		{"Title Page", "EPUB/xhtml/title.xhtml"},
		{"English", "EPUB/xhtml/eng.xhtml"},
		{"Magyar", "EPUB/xhtml/hun.xhtml"},
	}
	for i, tt := range tests {
		if items[i].Title != tt.title {
			t.Errorf("item[%d].Title = %q, want %q", i, items[i].Title, tt.title)
		}
		if items[i].Href != tt.href {
			t.Errorf("item[%d].Href = %q, want %q", i, items[i].Href, tt.href)
		}
		if items[i].SpineIndex != -1 {
			t.Errorf("item[%d].SpineIndex = %d, want -1", i, items[i].SpineIndex)
		}
		if len(items[i].Children) != 0 {
			t.Errorf("item[%d].Children length = %d, want 0", i, len(items[i].Children))
		}
	}
}

func TestParseNavDocument_NestedTOC(t *testing.T) {
	navData := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body>
  <nav epub:type="toc">
    <ol>
      <li><a href="eng.xhtml">English</a>
        <ol>
          <li><a href="eng/eng-sat_am-1-Eyring.xhtml">Walk in the Light</a></li>
          <li><a href="eng/eng-sat_am-2-Uchtdorf.xhtml#p3">Fourth Floor, Last Door</a></li>
        </ol>
      </li>
      <li><span>Magyar</span>
        <ol>
          <li><a href="hun/hun-sat_am-1-Eyring.xhtml">Hazafelé</a></li>
        </ol>
      </li>
    </ol>
  </nav>
</body>
</html>`)

	items, err := parseNavDocument(navData, "EPUB/xhtml/nav.xhtml")
	if err != nil {
		t.Fatalf("parseNavDocument returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 top-level items, got %d", len(items))
	}

	eng := items[0]
	if eng.Title != "English" || eng.Href != "EPUB/xhtml/eng.xhtml" {
		t.Errorf("items[0] = %q -> %q", eng.Title, eng.Href)
	}
	if len(eng.Children) != 2 {
		t.Fatalf("expected 2 English children, got %d", len(eng.Children))
	}
	if got, want := eng.Children[1].Href, "EPUB/xhtml/eng/eng-sat_am-2-Uchtdorf.xhtml#p3"; got != want {
		t.Errorf("fragment href = %q, want %q", got, want)
	}

	hun := items[1]
	if hun.Title != "Magyar" {
		t.Errorf("span heading title = %q, want %q", hun.Title, "Magyar")
	}
	if hun.Href != "" {
		t.Errorf("span heading href = %q, want empty", hun.Href)
	}
	if len(hun.Children) != 1 || hun.Children[0].Title != "Hazafelé" {
		t.Errorf("Magyar children = %+v", hun.Children)
	}
}

func TestParseNavDocument_IgnoresOtherNavs(t *testing.T) {
	navData := []byte(`<html xmlns:epub="http://www.idpf.org/2007/ops"><body>
  <nav epub:type="landmarks"><ol><li><a href="title.xhtml">Start</a></li></ol></nav>
  <nav epub:type="toc"><ol><li><a href="eng.xhtml">English</a></li></ol></nav>
</body></html>`)

	items, err := parseNavDocument(navData, "EPUB/xhtml/nav.xhtml")
	if err != nil {
		t.Fatalf("parseNavDocument returned error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "English" {
		t.Errorf("items = %+v, want only the toc entry", items)
	}
}

func TestParseNavDocument_NoTOCNav(t *testing.T) {
	navData := []byte(`<html><body><nav><ol><li><a href="a.xhtml">A</a></li></ol></nav></body></html>`)

	_, err := parseNavDocument(navData, "EPUB/xhtml/nav.xhtml")
	if !errors.Is(err, ErrInvalidEPub) {
		t.Fatalf("error = %v, want wrapped ErrInvalidEPub", err)
	}
}

func TestAssignSpineIndices(t *testing.T) {
	items := []TOCItem{
		{Title: "Title", Href: "EPUB/xhtml/title.xhtml", SpineIndex: -1},
		{Title: "English", Href: "EPUB/xhtml/eng.xhtml", SpineIndex: -1, Children: []TOCItem{
			{Title: "Talk", Href: "EPUB/xhtml/eng/a.xhtml#x", SpineIndex: -1},
		}},
		{Title: "Heading", SpineIndex: -1},
	}
	spineMap := map[string]int{
		"EPUB/xhtml/title.xhtml": 0,
		"EPUB/xhtml/eng.xhtml":   2,
		"EPUB/xhtml/eng/a.xhtml": 3,
	}

	assignSpineIndices(items, spineMap)

	if items[0].SpineIndex != 0 {
		t.Errorf("title SpineIndex = %d, want 0", items[0].SpineIndex)
	}
	if items[1].SpineIndex != 2 {
		t.Errorf("part SpineIndex = %d, want 2", items[1].SpineIndex)
	}
	if items[1].Children[0].SpineIndex != 3 {
		t.Errorf("fragment child SpineIndex = %d, want 3", items[1].Children[0].SpineIndex)
	}
	if items[2].SpineIndex != -1 {
		t.Errorf("heading SpineIndex = %d, want -1", items[2].SpineIndex)
	}
}
