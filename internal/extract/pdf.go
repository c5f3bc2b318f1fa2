package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// extractPDF builds a Document from PDF bytes: one unit per page, plus title
// and author from the document info dictionary when present.
func extractPDF(content []byte) (*models.Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	doc := &models.Document{}
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		doc.Title = info.Key("Title").Text()
		doc.Author = info.Key("Author").Text()
	}

	var full strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		doc.Units = append(doc.Units, models.DocumentUnit{
			Index:     i,
			Text:      text,
			HasImages: pageHasImages(page),
		})
		full.WriteString(text)
		full.WriteByte('\n')
	}
	doc.Text = full.String()
	return doc, nil
}

// pageHasImages reports whether the page declares image XObjects. The images
// themselves are not decoded; the flag is enough for downstream metadata.
func pageHasImages(page pdf.Page) bool {
	xobj := page.V.Key("Resources").Key("XObject")
	if xobj.IsNull() {
		return false
	}
	for _, name := range xobj.Keys() {
		if xobj.Key(name).Key("Subtype").Name() == "Image" {
			return true
		}
	}
	return false
}
