// Package relevance scores chunk text for board-exam value and classifies it
// into exam sections. All term dictionaries live in a Config so deployments
// can tune vocabulary without code changes.
package relevance

import (
	"strings"
)

// TermGroup is a weighted set of high-yield phrases for one physics or
// safety topic.
type TermGroup struct {
	Weight float64
	Terms  []string
}

// AnatomyGroup carries the keyword and modality vocabulary for one anatomic
// region plus that region's exam-weight multiplier.
type AnatomyGroup struct {
	Multiplier float64
	Keywords   []string
	Modalities []string
}

// Config holds the scoring dictionaries. DefaultConfig reflects the CORE
// exam weighting; callers may supply their own.
type Config struct {
	HighYield map[string]TermGroup
	Anatomy   map[string]AnatomyGroup
}

// DefaultConfig returns the built-in scoring vocabulary.
func DefaultConfig() Config {
	return Config{
		HighYield: map[string]TermGroup{
			"radiation_safety": {
				Weight: 5.0,
				Terms: []string{
					"alara", "dose limit", "dosimetry", "radiation protection",
					"effective dose", "absorbed dose", "deterministic", "stochastic",
					"fluoroscopy time", "pregnancy", "pediatric dose",
				},
			},
			"imaging_physics": {
				Weight: 4.0,
				Terms: []string{
					"kvp", "mas", "attenuation", "hounsfield", "tesla",
					"gradient echo", "spin echo", "t1 weighted", "t2 weighted",
					"echo time", "repetition time", "piezoelectric", "transducer",
				},
			},
			"critical_findings": {
				Weight: 4.5,
				Terms: []string{
					"tension pneumothorax", "aortic dissection", "pulmonary embolism",
					"intracranial hemorrhage", "free air", "bowel obstruction",
					"epidural hematoma", "subdural hematoma",
				},
			},
			"structured_reporting": {
				Weight: 3.5,
				Terms: []string{
					"bi-rads", "lung-rads", "li-rads", "ti-rads", "pi-rads",
					"acr appropriateness",
				},
			},
			"differentials": {
				Weight: 3.0,
				Terms: []string{
					"differential diagnosis", "differential includes",
					"consider", "versus", "distinguish",
				},
			},
		},
		Anatomy: map[string]AnatomyGroup{
			"chest": {
				Multiplier: 1.2,
				Keywords: []string{
					"lung", "mediastinum", "pleura", "pneumonia", "nodule",
					"consolidation", "effusion",
				},
				Modalities: []string{"chest x-ray", "chest ct", "hrct"},
			},
			"neuro": {
				Multiplier: 1.3,
				Keywords: []string{
					"brain", "spine", "stroke", "hemorrhage", "white matter",
					"ventricle", "cord",
				},
				Modalities: []string{"head ct", "brain mri", "mr angiography"},
			},
			"cardiac": {
				Multiplier: 1.1,
				Keywords: []string{
					"heart", "coronary", "myocardium", "pericardium",
					"valve", "aorta",
				},
				Modalities: []string{"cardiac ct", "cardiac mri", "echocardiography"},
			},
			"abdomen": {
				Multiplier: 1.0,
				Keywords: []string{
					"liver", "pancreas", "kidney", "bowel", "spleen",
					"gallbladder", "appendix",
				},
				Modalities: []string{"abdominal ct", "ultrasound", "mrcp"},
			},
		},
	}
}

// boardSourceMarkers flag source paths whose material targets the exam
// directly.
var boardSourceMarkers = []string{"board", "exam", "core", "review"}

// boostedChunkTypes are metadata chunk types that earn the content boost.
var boostedChunkTypes = map[string]bool{"case": true, "physics": true, "finding": true}

// Scorer computes board relevance from the configured vocabulary.
type Scorer struct {
	cfg Config
}

// NewScorer returns a scorer using cfg. A zero-value cfg falls back to
// DefaultConfig.
func NewScorer(cfg Config) *Scorer {
	if cfg.HighYield == nil && cfg.Anatomy == nil {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg}
}

// Score rates the chunk text on a 0-100 scale. High-yield phrases add their
// group weight once per occurrence, anatomy keyword hits add the region
// multiplier per keyword, modality hits add half as much. A board-oriented
// source path multiplies the total by 1.5, and case/physics/finding chunk
// types by 1.3.
func (s *Scorer) Score(text, sourcePath, chunkType string) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	for _, group := range s.cfg.HighYield {
		for _, term := range group.Terms {
			score += group.Weight * float64(strings.Count(lower, term))
		}
	}

	for _, region := range s.cfg.Anatomy {
		for _, kw := range region.Keywords {
			if strings.Contains(lower, kw) {
				score += region.Multiplier
			}
		}
		for _, m := range region.Modalities {
			if strings.Contains(lower, m) {
				score += region.Multiplier * 0.5
			}
		}
	}

	lowerSource := strings.ToLower(sourcePath)
	for _, marker := range boardSourceMarkers {
		if strings.Contains(lowerSource, marker) {
			score *= 1.5
			break
		}
	}
	if boostedChunkTypes[strings.ToLower(chunkType)] {
		score *= 1.3
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
