package confreport

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// OCF descriptors that announce encrypted or rights-managed resources.
const (
	encryptionPath = "META-INF/encryption.xml"
	rightsPath     = "META-INF/rights.xml"
	sinfPath       = "META-INF/sinf.xml"
)

// fontObfuscationAlgorithms are the obfuscation methods allowed by OCF for
// embedded fonts. They are not encryption in the rights-management sense.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

type xmlEncryption struct {
	XMLName       xml.Name           `xml:"encryption"`
	EncryptedData []xmlEncryptedData `xml:"EncryptedData"`
}

type xmlEncryptedData struct {
	EncryptionMethod struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"EncryptionMethod"`
	CipherData struct {
		CipherReference struct {
			URI string `xml:"URI,attr"`
		} `xml:"CipherReference"`
	} `xml:"CipherData"`
}

// EncryptedResource is one entry of META-INF/encryption.xml.
type EncryptedResource struct {
	URI       string
	Algorithm string

	// Obfuscated is true for font obfuscation, which does not prevent reading.
	Obfuscated bool
}

// readEncryption lists the encrypted resources declared by the archive and
// warns about rights-management descriptors.
func (in *Inspection) readEncryption() error {
	for _, p := range []string{rightsPath, sinfPath} {
		if in.zip.find(p) != nil {
			in.warn("rights management descriptor %s present", p)
		}
	}

	f := in.zip.find(encryptionPath)
	if f == nil {
		return nil
	}
	data, err := readZipFile(f)
	if err != nil {
		return fmt.Errorf("confreport: read encryption.xml: %w", err)
	}

	var enc xmlEncryption
	if err := xml.Unmarshal(stripBOM(data), &enc); err != nil {
		return fmt.Errorf("confreport: parse encryption.xml: %w", err)
	}
	for _, ed := range enc.EncryptedData {
		algo := strings.TrimSpace(ed.EncryptionMethod.Algorithm)
		in.Encrypted = append(in.Encrypted, EncryptedResource{
			URI:        strings.TrimSpace(ed.CipherData.CipherReference.URI),
			Algorithm:  algo,
			Obfuscated: fontObfuscationAlgorithms[algo],
		})
	}
	return nil
}
