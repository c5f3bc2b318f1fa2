package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// extractPlain returns content as a single-unit document, replacing invalid
// UTF-8 sequences with the replacement character.
func extractPlain(content []byte) (*models.Document, error) {
	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}
	return singleUnitDocument(text), nil
}
