package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/lu4p/cat"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// docxDocumentXMLPath is the path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// wtTag matches <w:t>text</w:t> including attribute variants like
// <w:t xml:space="preserve">.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractWordDoc builds a single-unit Document from .docx bytes. DOCX is a
// ZIP containing word/document.xml (OOXML); all <w:t>...</w:t> text nodes are
// collected regardless of paragraph/run attributes. Word documents have no
// page structure at this level, so the whole body is one unit.
func extractWordDoc(content []byte) (*models.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		docXML, err = readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return nil, fmt.Errorf("extract DOCX: %s not found", docxDocumentXMLPath)
	}
	var b strings.Builder
	for _, p := range wtTag.FindAllStringSubmatch(string(docXML), -1) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
	text := strings.TrimSpace(b.String())
	return singleUnitDocument(text), nil
}

// extractWithCat handles the formats delegated to lu4p/cat (.odt, .rtf),
// which works from a file path rather than bytes.
func extractWithCat(path string) (*models.Document, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return singleUnitDocument(text), nil
}

func singleUnitDocument(text string) *models.Document {
	return &models.Document{
		Text:  text,
		Units: []models.DocumentUnit{{Index: 1, Text: text}},
	}
}
