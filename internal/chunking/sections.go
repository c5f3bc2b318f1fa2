// Package chunking splits document text into medically-meaningful sections
// and bounded, overlapping chunks.
package chunking

import (
	"regexp"
	"strings"
)

// maxSectionTitleLen bounds section titles taken from header lines.
const maxSectionTitleLen = 100

// GenericSectionTitle is used when no header line matches.
const GenericSectionTitle = "Document Content"

// sectionHeaderPatterns is the ordered, data-driven table of header-line
// patterns that start a new section. New section types are added here, not
// in the splitting loop.
var sectionHeaderPatterns = []*regexp.Regexp{
	// Medical report structure
	regexp.MustCompile(`(?i)^(anatomy|pathology|clinical features|imaging findings|differential diagnosis|treatment|management)\b`),
	// Case and patient markers
	regexp.MustCompile(`(?i)^(case \d+|patient \d+)\b`),
	// Manuscript structure
	regexp.MustCompile(`(?i)^(introduction|conclusion|discussion|references|summary)\b`),
	// Radiology technique sections
	regexp.MustCompile(`(?i)^(technique|protocol|indications|contraindications|complications)\b`),
	// Modality-specific findings
	regexp.MustCompile(`(?i)^(ct findings|mri findings|x-ray findings|ultrasound findings)\b`),
	// Physics and safety
	regexp.MustCompile(`(?i)^(radiation safety|dose|image quality|artifacts)\b`),
}

// Section is a titled span of document text.
type Section struct {
	Title string
	Text  string
}

// SplitSections partitions text into ordered (title, text) sections on
// header-line matches. A matching line starts a new section and becomes its
// title (truncated); following lines accumulate until the next header. Blank
// lines are preserved within a section but never start one. If no header
// matches, the whole text is one generically-titled section.
func SplitSections(text string) []Section {
	var sections []Section
	current := Section{Title: GenericSectionTitle}

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			current.Text += "\n"
			continue
		}

		if isSectionHeader(stripped) {
			if strings.TrimSpace(current.Text) != "" {
				sections = append(sections, current)
			}
			title := stripped
			if len(title) > maxSectionTitleLen {
				title = title[:maxSectionTitleLen]
			}
			current = Section{Title: title}
			continue
		}

		current.Text += line + "\n"
	}
	if strings.TrimSpace(current.Text) != "" {
		sections = append(sections, current)
	}

	if len(sections) == 0 {
		return []Section{{Title: GenericSectionTitle, Text: text}}
	}
	return sections
}

func isSectionHeader(line string) bool {
	for _, p := range sectionHeaderPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
