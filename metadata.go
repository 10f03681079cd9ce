package confreport

import "strings"

// extractBookInfo converts decoded OPF metadata into a BookInfo. Blank
// values are skipped; single-valued fields take the first non-empty value.
func extractBookInfo(opf *opfPackage) BookInfo {
	om := &opf.Metadata
	info := BookInfo{
		Version:     opf.Version,
		Titles:      nonEmptyValues(om.Titles),
		Creators:    nonEmptyValues(om.Creators),
		Languages:   nonEmptyValues(om.Languages),
		Identifiers: nonEmptyValues(om.Identifiers),
		Publisher:   firstValue(om.Publishers),
		Date:        firstValue(om.Dates),
		Rights:      firstValue(om.Rights),
	}

	for _, m := range om.Metas {
		// Refining metas describe another element, not the publication.
		if m.Property == "dcterms:modified" && m.Refines == "" {
			if v := strings.TrimSpace(m.Value); v != "" {
				info.Modified = v
				break
			}
		}
	}
	return info
}

// uniqueIdentifier returns the dc:identifier referenced by the package's
// unique-identifier attribute.
func uniqueIdentifier(opf *opfPackage) (string, bool) {
	for _, id := range opf.Metadata.Identifiers {
		if id.ID != "" && id.ID == opf.UniqueIdentifier {
			v := strings.TrimSpace(id.Value)
			return v, v != ""
		}
	}
	return "", false
}

func nonEmptyValues(elems []opfDCElement) []string {
	var out []string
	for _, e := range elems {
		if v := strings.TrimSpace(e.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstValue(elems []opfDCElement) string {
	for _, e := range elems {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}
