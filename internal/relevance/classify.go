package relevance

import (
	"sort"
	"strings"
)

// GeneralSection is the fallback exam section when no vocabulary matches.
const GeneralSection = "General"

// sectionRule maps trigger keywords to an exam section label. Rules are
// evaluated in order and the first hit wins, so physics vocabulary is checked
// before anatomic vocabulary.
type sectionRule struct {
	Section  string
	Keywords []string
}

var sectionRules = []sectionRule{
	{"Physics & Safety", []string{
		"physics", "dose", "radiation", "kvp", "mas", "tesla",
		"artifact", "alara", "shielding",
	}},
	{"Cardiothoracic", []string{
		"chest", "lung", "cardiac", "heart", "thorax", "mediastinum", "pleura",
	}},
	{"Neuroradiology", []string{
		"brain", "neuro", "spine", "head", "stroke", "skull",
	}},
	{"Musculoskeletal", []string{
		"bone", "joint", "fracture", "musculoskeletal", "msk", "tendon",
	}},
	{"Abdominal & Pelvic", []string{
		"abdomen", "abdominal", "liver", "renal", "bowel", "pelvis", "pancreas",
	}},
	{"Breast Imaging", []string{
		"breast", "mammography", "mammogram", "bi-rads",
	}},
	{"Pediatric Radiology", []string{
		"pediatric", "child", "infant", "neonatal", "congenital",
	}},
	{"Nuclear Medicine", []string{
		"nuclear", "pet", "spect", "radiotracer", "scintigraphy", "radionuclide",
	}},
}

// ClassifySection assigns text to a CORE exam section. The first rule with a
// keyword hit wins; unmatched text falls into GeneralSection.
func ClassifySection(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range sectionRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Section
			}
		}
	}
	return GeneralSection
}

// HighYieldTags returns one "group:term" tag per high-yield phrase hit in
// text, for chunk metadata. Tags are sorted so repeated runs over the same
// text produce the same metadata.
func (s *Scorer) HighYieldTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for name, group := range s.cfg.HighYield {
		for _, term := range group.Terms {
			if strings.Contains(lower, term) {
				tags = append(tags, name+":"+term)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// modalityTerms cover the imaging modalities tagged as entities.
var modalityTerms = []string{
	"ct", "mri", "ultrasound", "x-ray", "radiograph", "fluoroscopy",
	"mammography", "pet", "spect", "nuclear",
}

// pathologyTerms cover common finding vocabulary tagged as entities.
var pathologyTerms = []string{
	"tumor", "mass", "lesion", "nodule", "cyst", "inflammation",
	"infection", "hemorrhage", "infarct", "edema", "stenosis",
}

// Entities extracts coarse medical entities (anatomy keywords, pathology
// vocabulary, and modality mentions) from text for chunk metadata.
func (s *Scorer) Entities(text string) []string {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var entities []string
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			entities = append(entities, term)
		}
	}
	for _, region := range s.cfg.Anatomy {
		for _, kw := range region.Keywords {
			if strings.Contains(lower, kw) {
				add(kw)
			}
		}
	}
	for _, p := range pathologyTerms {
		if containsWord(lower, p) {
			add(p)
		}
	}
	for _, m := range modalityTerms {
		if containsWord(lower, m) {
			add(m)
		}
	}
	return entities
}

// containsWord reports whether term appears in text bounded by non-letter
// characters, so "ct" does not match inside "fracture".
func containsWord(text, term string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || !isLetter(text[start-1])
		afterOK := end == len(text) || !isLetter(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
