package confreport

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// containerXML models META-INF/container.xml as read back during inspection.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// locatePackage finds the package document of an archive.
//
// It reads META-INF/container.xml and prefers the rootfile declared with
// the OPF media type. Without a container it falls back to the first
// ".opf" entry and records a warning, since a conforming archive always
// has one.
func (in *Inspection) locatePackage() (string, error) {
	if f := in.zip.find(ContainerPath); f != nil {
		if f.Name != ContainerPath {
			in.warn("container.xml found under non-canonical name %q", f.Name)
		}
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("confreport: read container.xml: %w", err)
		}
		return parseContainerXML(data)
	}

	in.warn("META-INF/container.xml missing")
	for _, f := range in.reader.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("confreport: no package document found in archive: %w", ErrInvalidEPub)
}

// parseContainerXML returns the full-path of the package rootfile.
func parseContainerXML(data []byte) (string, error) {
	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("confreport: parse container.xml: %w", err)
	}
	if len(c.RootFiles) == 0 {
		return "", fmt.Errorf("confreport: container.xml has no rootfile entries: %w", ErrInvalidEPub)
	}

	var fallback string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), mediaTypeOPF) {
			return fullPath, nil
		}
		if fallback == "" {
			fallback = fullPath
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("confreport: container.xml rootfile has empty full-path: %w", ErrInvalidEPub)
	}
	return fallback, nil
}
