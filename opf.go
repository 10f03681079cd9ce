package confreport

import (
	"encoding/xml"
	"fmt"
)

// opfPackage is the root <package> element of a package document, decoded
// during inspection. Writing goes through the package template instead.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Titles      []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators    []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages   []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifiers []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publishers  []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Dates       []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ date"`
	Rights      []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ rights"`
	Metas       []opfMeta      `xml:"meta"`
}

type opfDCElement struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr"`
}

// opfMeta is an EPUB 3 <meta property="..."> element.
type opfMeta struct {
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// parseOPF decodes a package document.
func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(data), &pkg); err != nil {
		return nil, fmt.Errorf("confreport: parse package document: %w", err)
	}
	return &pkg, nil
}

// manifestItems converts the decoded manifest, preserving document order.
func (pkg *opfPackage) manifestItems() []ManifestItem {
	items := make([]ManifestItem, 0, len(pkg.Manifest.Items))
	for _, it := range pkg.Manifest.Items {
		items = append(items, ManifestItem{
			ID:         it.ID,
			Href:       it.Href,
			MediaType:  it.MediaType,
			Properties: it.Properties,
		})
	}
	return items
}

// spineEntries converts the decoded spine. A missing linear attribute
// means linear.
func (pkg *opfPackage) spineEntries() []SpineEntry {
	refs := make([]SpineEntry, 0, len(pkg.Spine.ItemRefs))
	for _, ref := range pkg.Spine.ItemRefs {
		refs = append(refs, SpineEntry{ItemID: ref.IDRef, Linear: ref.Linear != "no"})
	}
	return refs
}
