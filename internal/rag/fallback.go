package rag

import "strings"

// fallbackEntry pairs trigger keywords with a prepared teaching answer.
type fallbackEntry struct {
	keywords []string
	answer   string
}

// fallbackKnowledge covers the highest-yield chest and physics topics so a
// downed LLM backend still yields a usable study answer.
var fallbackKnowledge = []fallbackEntry{
	{
		keywords: []string{"pneumonia", "consolidation", "air bronchogram"},
		answer: "Pneumonia appears as airspace consolidation, often lobar or segmental, " +
			"with air bronchograms. Look for silhouette signs to localize: loss of the right " +
			"heart border suggests right middle lobe disease, loss of the diaphragm suggests " +
			"lower lobe disease. Round pneumonia is more common in children. Follow-up imaging " +
			"confirms resolution and excludes an underlying mass in at-risk adults.",
	},
	{
		keywords: []string{"pulmonary edema", "edema", "kerley", "cephalization"},
		answer: "Pulmonary edema progresses from cephalization of vessels to interstitial " +
			"edema (Kerley B lines, peribronchial cuffing) to alveolar edema with perihilar " +
			"bat-wing opacities. Cardiogenic edema typically shows cardiomegaly and pleural " +
			"effusions; non-cardiogenic causes (ARDS) show a normal heart size and more " +
			"peripheral distribution.",
	},
	{
		keywords: []string{"pulmonary embolism", "embolism", "pe", "filling defect"},
		answer: "Pulmonary embolism on CT angiography shows intraluminal filling defects. " +
			"A central saddle embolus straddles the main pulmonary artery bifurcation. Signs " +
			"of right heart strain include RV/LV ratio above 1 and septal bowing. The classic " +
			"but uncommon radiographic findings are Westermark sign (oligemia) and Hampton " +
			"hump (peripheral wedge infarct).",
	},
	{
		keywords: []string{"copd", "emphysema", "hyperinflation"},
		answer: "COPD shows hyperinflation with flattened diaphragms, increased retrosternal " +
			"clear space, and a narrow cardiac silhouette. Emphysema on CT is low-attenuation " +
			"lung destruction: centrilobular (smoking, upper lobes), panlobular " +
			"(alpha-1 antitrypsin deficiency, lower lobes), or paraseptal (subpleural, " +
			"associated with spontaneous pneumothorax).",
	},
	{
		keywords: []string{"radiation dose", "dose", "alara", "msv", "effective dose"},
		answer: "Radiation dose management follows ALARA. Typical effective doses: chest " +
			"radiograph about 0.1 mSv, chest CT 5-7 mSv, abdominal CT about 8-10 mSv. " +
			"Deterministic effects (skin injury, cataracts) have thresholds; stochastic " +
			"effects (cancer induction) are modeled without a threshold. Dose reduction " +
			"levers include tube current modulation, lower kVp, iterative reconstruction, " +
			"and, above all, not scanning when imaging is not indicated.",
	},
}

const fallbackDefault = "The language model backend is currently unavailable and this " +
	"topic is outside the built-in quick-reference notes. Core high-yield areas to review: " +
	"radiation safety and dose, imaging physics, critical findings such as tension " +
	"pneumothorax and aortic dissection, and structured reporting systems (BI-RADS, " +
	"LI-RADS, Lung-RADS). Try again once the backend is reachable for a full answer."

// Fallback answers questions from the built-in knowledge table. It always
// produces an answer.
type Fallback struct{}

// Answer returns the prepared answer for the first entry whose keyword
// appears in the question, or a generic study pointer otherwise.
func (f *Fallback) Answer(question string) string {
	lower := strings.ToLower(question)
	for _, entry := range fallbackKnowledge {
		for _, kw := range entry.keywords {
			if containsTerm(lower, kw) {
				return entry.answer
			}
		}
	}
	return fallbackDefault
}

// containsTerm matches kw as a whole word when it is short, to keep "pe"
// from matching inside other words, and as a substring otherwise.
func containsTerm(text, kw string) bool {
	if len(kw) > 3 {
		return strings.Contains(text, kw)
	}
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if field == kw {
			return true
		}
	}
	return false
}
