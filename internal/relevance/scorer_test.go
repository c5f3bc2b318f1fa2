package relevance

import (
	"testing"
)

func TestScoreHighYieldTerms(t *testing.T) {
	s := NewScorer(Config{})

	safety := s.Score("ALARA and dose limit rules govern fluoroscopy.", "notes.pdf", "text")
	plain := s.Score("The meeting is scheduled for Tuesday afternoon.", "notes.pdf", "text")
	if safety <= plain {
		t.Errorf("safety text scored %.1f, plain text %.1f; want safety higher", safety, plain)
	}
	if plain != 0 {
		t.Errorf("non-medical text scored %.1f, want 0", plain)
	}
}

func TestScoreCountsRepeatedTerms(t *testing.T) {
	s := NewScorer(Config{})

	single := s.Score("alara", "notes.pdf", "text")
	triple := s.Score("alara alara alara", "notes.pdf", "text")
	if single == 0 {
		t.Fatal("single high-yield term scored 0")
	}
	want := single * 3
	if diff := triple - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("triple occurrence scored %.1f, want %.1f", triple, want)
	}
}

func TestScoreBoardSourceBoost(t *testing.T) {
	s := NewScorer(Config{})
	text := "Tension pneumothorax requires immediate decompression."

	base := s.Score(text, "lecture_notes.pdf", "text")
	boosted := s.Score(text, "core_exam_review.pdf", "text")
	if base == 0 {
		t.Fatal("critical finding text scored 0")
	}
	want := base * 1.5
	if diff := boosted - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("board source score = %.2f, want %.2f", boosted, want)
	}
}

func TestScoreChunkTypeBoost(t *testing.T) {
	s := NewScorer(Config{})
	text := "Attenuation values in Hounsfield units define tissue density."

	base := s.Score(text, "x.pdf", "text")
	boosted := s.Score(text, "x.pdf", "physics")
	want := base * 1.3
	if diff := boosted - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("physics chunk score = %.2f, want %.2f", boosted, want)
	}
}

func TestScoreClampedTo100(t *testing.T) {
	s := NewScorer(Config{})
	var text string
	for _, group := range DefaultConfig().HighYield {
		for _, term := range group.Terms {
			text += term + " "
		}
	}
	for _, region := range DefaultConfig().Anatomy {
		for _, kw := range region.Keywords {
			text += kw + " "
		}
	}
	got := s.Score(text, "core_board_review.pdf", "physics")
	if got != 100 {
		t.Errorf("saturated score = %.1f, want clamp at 100", got)
	}
}

func TestClassifySectionFirstMatchWins(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Radiation dose to the chest during CT.", "Physics & Safety"},
		{"Lung nodule follow-up on chest CT.", "Cardiothoracic"},
		{"Acute stroke protocol with head CT.", "Neuroradiology"},
		{"Distal radius fracture alignment.", "Musculoskeletal"},
		{"Liver lesion characterization.", "Abdominal & Pelvic"},
		{"Screening mammography recall rates.", "Breast Imaging"},
		{"Neonatal bowel obstruction workup.", "Pediatric Radiology"},
		{"PET radiotracer uptake patterns.", "Nuclear Medicine"},
		{"Staff scheduling and vacation policy.", GeneralSection},
	}
	for _, tc := range cases {
		if got := ClassifySection(tc.text); got != tc.want {
			t.Errorf("ClassifySection(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestHighYieldTags(t *testing.T) {
	s := NewScorer(Config{})
	tags := s.HighYieldTags("BI-RADS categories and ALARA both matter here.")
	want := []string{"radiation_safety:alara", "structured_reporting:bi-rads"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i, tag := range tags {
		if tag != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tag, want[i])
		}
	}
}

func TestEntitiesIncludePathology(t *testing.T) {
	s := NewScorer(Config{})
	entities := s.Entities("A hepatic tumor causing biliary stenosis.")
	seen := map[string]bool{}
	for _, e := range entities {
		seen[e] = true
	}
	for _, want := range []string{"tumor", "stenosis"} {
		if !seen[want] {
			t.Errorf("entities %v missing pathology term %q", entities, want)
		}
	}
}

func TestEntitiesWordBoundaries(t *testing.T) {
	s := NewScorer(Config{})
	entities := s.Entities("The fracture was evaluated without CT.")
	hasCT := false
	for _, e := range entities {
		if e == "ct" {
			hasCT = true
		}
	}
	if !hasCT {
		t.Errorf("entities %v missing standalone ct mention", entities)
	}

	entities = s.Entities("The fracture healed well.")
	for _, e := range entities {
		if e == "ct" {
			t.Errorf("ct matched inside fracture: %v", entities)
		}
	}
}
