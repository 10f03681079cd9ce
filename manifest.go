package confreport

import (
	"fmt"
	"path"
)

// Fixed package hrefs and ids.
const (
	TitleHref = "xhtml/title.xhtml"
	NavHref   = "xhtml/nav.xhtml"
	TitleID   = "title"
	NavID     = "nav"
)

// PartHref returns the href of a language part page.
func PartHref(lang string) string { return "xhtml/" + lang + ".xhtml" }

// PartID returns the manifest id of a language part page.
func PartID(lang string) string { return "part-" + lang }

// ChapterHref returns the href of a chapter document.
func ChapterHref(lang, id string) string { return "xhtml/" + lang + "/" + id + ".xhtml" }

// Package is the manifest, spine and navigation tree of one book. The three
// views are built together so their ids and hrefs cannot drift apart.
type Package struct {
	Manifest []ManifestItem
	Spine    []SpineEntry
	Nav      NavTree
}

// BuildPackage derives the manifest, spine and nav tree from parts and the
// chapter ids assigned to them.
//
// Manifest order: title, nav, then for each part its page followed by its
// chapters. Spine order is the same, with nav marked non-linear. The
// returned package has passed Validate.
func BuildPackage(parts []LanguagePart, ids IDMap) (*Package, error) {
	pkg := &Package{
		Manifest: []ManifestItem{
			{ID: TitleID, Href: TitleHref, MediaType: mediaTypeXHTML},
			{ID: NavID, Href: NavHref, MediaType: mediaTypeXHTML, Properties: "nav"},
		},
		Spine: []SpineEntry{
			{ItemID: TitleID, Linear: true},
			{ItemID: NavID, Linear: false},
		},
	}

	for _, part := range parts {
		partID := PartID(part.Language)
		partHref := PartHref(part.Language)
		pkg.Manifest = append(pkg.Manifest, ManifestItem{ID: partID, Href: partHref, MediaType: mediaTypeXHTML})
		pkg.Spine = append(pkg.Spine, SpineEntry{ItemID: partID, Linear: true})

		np := NavPart{Language: part.Language, DisplayName: part.DisplayName, Href: partHref}
		for _, ch := range part.Chapters {
			id, ok := ids[ch.Key()]
			if !ok {
				return nil, &ManifestIntegrityError{Reason: fmt.Sprintf("no id assigned to chapter %s", ch.Key())}
			}
			href := ChapterHref(part.Language, id)
			pkg.Manifest = append(pkg.Manifest, ManifestItem{ID: id, Href: href, MediaType: mediaTypeXHTML})
			pkg.Spine = append(pkg.Spine, SpineEntry{ItemID: id, Linear: true})
			np.Chapters = append(np.Chapters, NavEntry{ID: id, Author: ch.Author, Title: ch.Title, Href: href})
		}
		pkg.Nav.Parts = append(pkg.Nav.Parts, np)
	}

	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Validate checks the package invariants: manifest ids and hrefs are unique,
// every spine entry references a manifest item, and every nav href is the
// href of the manifest item with the same id.
func (p *Package) Validate() error {
	byID := make(map[string]ManifestItem, len(p.Manifest))
	hrefs := make(map[string]string, len(p.Manifest))
	for _, item := range p.Manifest {
		if item.ID == "" {
			return &ManifestIntegrityError{Href: item.Href, Reason: "empty manifest id"}
		}
		if _, dup := byID[item.ID]; dup {
			return &ManifestIntegrityError{ID: item.ID, Href: item.Href, Reason: "duplicate manifest id"}
		}
		if item.Href == "" || path.Clean(item.Href) != item.Href || !isSafePath(item.Href) {
			return &ManifestIntegrityError{ID: item.ID, Href: item.Href, Reason: "malformed manifest href"}
		}
		if other, dup := hrefs[item.Href]; dup {
			return &ManifestIntegrityError{ID: item.ID, Href: item.Href, Reason: "href already used by " + other}
		}
		byID[item.ID] = item
		hrefs[item.Href] = item.ID
	}

	inSpine := make(map[string]bool, len(p.Spine))
	for _, ref := range p.Spine {
		if _, ok := byID[ref.ItemID]; !ok {
			return &ManifestIntegrityError{ID: ref.ItemID, Reason: "spine references unknown manifest item"}
		}
		if inSpine[ref.ItemID] {
			return &ManifestIntegrityError{ID: ref.ItemID, Reason: "manifest item listed twice in spine"}
		}
		inSpine[ref.ItemID] = true
	}

	for _, part := range p.Nav.Parts {
		if id, ok := hrefs[part.Href]; !ok || id != PartID(part.Language) {
			return &ManifestIntegrityError{ID: PartID(part.Language), Href: part.Href, Reason: "nav part href does not match manifest"}
		}
		for _, ch := range part.Chapters {
			item, ok := byID[ch.ID]
			if !ok {
				return &ManifestIntegrityError{ID: ch.ID, Href: ch.Href, Reason: "nav entry references unknown manifest item"}
			}
			if item.Href != ch.Href {
				return &ManifestIntegrityError{ID: ch.ID, Href: ch.Href, Reason: "nav href differs from manifest href " + item.Href}
			}
		}
	}
	return nil
}

// Item returns the manifest item with the given id.
func (p *Package) Item(id string) (ManifestItem, bool) {
	for _, item := range p.Manifest {
		if item.ID == id {
			return item, true
		}
	}
	return ManifestItem{}, false
}
