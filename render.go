package confreport

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
	"text/template"
	"time"
)

// DocumentKind names a generated document template.
type DocumentKind string

const (
	KindTitle        DocumentKind = "title"
	KindLanguagePart DocumentKind = "languagePart"
	KindNav          DocumentKind = "nav"
	KindChapter      DocumentKind = "chapter"
	KindPackage      DocumentKind = "package"
	KindContainer    DocumentKind = "container"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateNames = map[DocumentKind]string{
	KindTitle:        "title.xhtml.tmpl",
	KindLanguagePart: "part.xhtml.tmpl",
	KindNav:          "nav.xhtml.tmpl",
	KindChapter:      "chapter.xhtml.tmpl",
	KindPackage:      "package.opf.tmpl",
	KindContainer:    "container.xml.tmpl",
}

// Template data for each DocumentKind. Lang is a BCP 47 tag.
type (
	TitleData struct {
		Metadata Metadata
		Lang     string
	}

	PartData struct {
		Part     LanguagePart
		Metadata Metadata
	}

	NavData struct {
		Metadata Metadata
		Nav      NavTree
		Lang     string
	}

	ChapterData struct {
		Record ChapterRecord
	}

	PackageData struct {
		Metadata  Metadata
		Identity  Identity
		Languages []string // allow-list codes, in order
		Package   *Package
	}

	ContainerData struct {
		RootFile string
	}
)

// Renderer renders the package documents from the embedded templates.
// A Renderer is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("confreport").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"xml": escapeXML,
			"rel": func(href string) string { return relativeHref(NavHref, href) },
		}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("confreport: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render renders one document. data must be the *Data type matching kind
// (value or pointer). Required fields that are empty produce
// *TemplateDataMissingError and no output.
func (r *Renderer) Render(kind DocumentKind, data any) ([]byte, error) {
	switch kind {
	case KindTitle:
		d, ok := derefData[TitleData](data)
		if !ok {
			break
		}
		return r.RenderTitle(d.Metadata, d.Lang)
	case KindLanguagePart:
		d, ok := derefData[PartData](data)
		if !ok {
			break
		}
		return r.RenderPart(d.Part, d.Metadata)
	case KindNav:
		d, ok := derefData[NavData](data)
		if !ok {
			break
		}
		return r.RenderNav(d.Metadata, d.Nav, d.Lang)
	case KindChapter:
		d, ok := derefData[ChapterData](data)
		if !ok {
			break
		}
		return r.RenderChapter(d.Record)
	case KindPackage:
		d, ok := derefData[PackageData](data)
		if !ok {
			break
		}
		return r.RenderPackage(d.Metadata, d.Identity, d.Languages, d.Package)
	case KindContainer:
		d, ok := derefData[ContainerData](data)
		if !ok {
			break
		}
		return r.RenderContainer(d.RootFile)
	default:
		return nil, fmt.Errorf("confreport: unknown document kind %q", kind)
	}
	return nil, fmt.Errorf("confreport: %s document: unexpected data type %T", kind, data)
}

func derefData[T any](data any) (T, bool) {
	switch v := data.(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}

// RenderTitle renders the title page.
func (r *Renderer) RenderTitle(md Metadata, lang string) ([]byte, error) {
	if strings.TrimSpace(md.Title) == "" {
		return nil, &TemplateDataMissingError{Kind: KindTitle, Field: "title"}
	}
	return r.execute(KindTitle, TitleData{Metadata: md, Lang: lang})
}

// RenderPart renders the part page of one language.
func (r *Renderer) RenderPart(part LanguagePart, md Metadata) ([]byte, error) {
	if part.Language == "" {
		return nil, &TemplateDataMissingError{Kind: KindLanguagePart, Field: "language"}
	}
	if strings.TrimSpace(part.DisplayName) == "" {
		return nil, &TemplateDataMissingError{Kind: KindLanguagePart, Field: "display_name", Source: part.Language}
	}
	return r.execute(KindLanguagePart, struct {
		Lang  string
		Title string
	}{
		Lang:  LanguageTag(part.Language),
		Title: partTitle(md, part.DisplayName),
	})
}

type navPartView struct {
	Title    string
	Href     string
	Chapters []NavEntry
}

// RenderNav renders the navigation document. Parts appear in the order of
// nav.Parts and chapters in the order of each part; every link is the
// manifest href made relative to the nav document.
func (r *Renderer) RenderNav(md Metadata, nav NavTree, lang string) ([]byte, error) {
	if strings.TrimSpace(md.Title) == "" {
		return nil, &TemplateDataMissingError{Kind: KindNav, Field: "title"}
	}
	parts := make([]navPartView, 0, len(nav.Parts))
	for _, p := range nav.Parts {
		for _, ch := range p.Chapters {
			if strings.TrimSpace(ch.Title) == "" {
				return nil, &TemplateDataMissingError{Kind: KindNav, Field: "title", Source: ch.ID}
			}
		}
		parts = append(parts, navPartView{Title: partTitle(md, p.DisplayName), Href: p.Href, Chapters: p.Chapters})
	}
	return r.execute(KindNav, struct {
		Lang  string
		Title string
		Parts []navPartView
	}{Lang: lang, Title: md.Title, Parts: parts})
}

// RenderChapter wraps the record's converted body in a chapter document.
// The body is trusted and not re-parsed; the title is escaped.
func (r *Renderer) RenderChapter(rec ChapterRecord) ([]byte, error) {
	if err := rec.validateForRender(); err != nil {
		return nil, err
	}
	return r.execute(KindChapter, struct {
		Lang   string
		Record ChapterRecord
	}{Lang: LanguageTag(rec.Language), Record: rec})
}

// RenderPackage renders the OPF package document.
func (r *Renderer) RenderPackage(md Metadata, id Identity, languages []string, pkg *Package) ([]byte, error) {
	switch {
	case strings.TrimSpace(md.Title) == "":
		return nil, &TemplateDataMissingError{Kind: KindPackage, Field: "title"}
	case md.Date.IsZero():
		return nil, &TemplateDataMissingError{Kind: KindPackage, Field: "date"}
	case id.Modified.IsZero():
		return nil, &TemplateDataMissingError{Kind: KindPackage, Field: "modified"}
	case len(languages) == 0:
		return nil, &TemplateDataMissingError{Kind: KindPackage, Field: "language"}
	case pkg == nil:
		return nil, &TemplateDataMissingError{Kind: KindPackage, Field: "manifest"}
	}
	tags := make([]string, len(languages))
	for i, code := range languages {
		tags[i] = LanguageTag(code)
	}
	return r.execute(KindPackage, struct {
		Lang       string
		Identifier string
		Metadata   Metadata
		Languages  []string
		Date       string
		Modified   string
		Manifest   []ManifestItem
		Spine      []SpineEntry
	}{
		Lang:       tags[0],
		Identifier: id.URN(),
		Metadata:   md,
		Languages:  tags,
		Date:       md.Date.Format(time.DateOnly),
		Modified:   id.Modified.UTC().Format("2006-01-02T15:04:05Z"),
		Manifest:   pkg.Manifest,
		Spine:      pkg.Spine,
	})
}

// RenderContainer renders META-INF/container.xml pointing at rootFile.
func (r *Renderer) RenderContainer(rootFile string) ([]byte, error) {
	if rootFile == "" {
		return nil, &TemplateDataMissingError{Kind: KindContainer, Field: "rootfile"}
	}
	return r.execute(KindContainer, struct {
		RootFile  string
		MediaType string
	}{RootFile: rootFile, MediaType: mediaTypeOPF})
}

func (r *Renderer) execute(kind DocumentKind, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, templateNames[kind], data); err != nil {
		return nil, fmt.Errorf("confreport: render %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

func partTitle(md Metadata, displayName string) string {
	format := md.PartTitleFormat
	if format == "" {
		format = DefaultPartTitleFormat
	}
	return fmt.Sprintf(format, displayName)
}

// escapeXML escapes s for use in XML text content and quoted attributes.
func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does; strings.Builder never does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// relativeHref expresses target relative to the directory of from. Both are
// clean, slash-separated paths relative to the same root.
func relativeHref(from, target string) string {
	fromDir := strings.Split(path.Dir(from), "/")
	if len(fromDir) == 1 && fromDir[0] == "." {
		fromDir = nil
	}
	parts := strings.Split(target, "/")

	common := 0
	for common < len(fromDir) && common < len(parts)-1 && fromDir[common] == parts[common] {
		common++
	}
	rel := make([]string, 0, len(fromDir)-common+len(parts)-common)
	for i := common; i < len(fromDir); i++ {
		rel = append(rel, "..")
	}
	rel = append(rel, parts[common:]...)
	return strings.Join(rel, "/")
}
