package chunking

import (
	"strings"
	"testing"
)

func TestSplitSectionsHeaders(t *testing.T) {
	text := "Introduction\nThis course covers chest imaging.\n\nCT Findings\nGround glass opacities are seen.\nConsolidation in the right lower lobe.\n\nRadiation Safety\nALARA principles apply to all studies.\n"

	sections := SplitSections(text)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(sections), sections)
	}

	wantTitles := []string{"Introduction", "CT Findings", "Radiation Safety"}
	for i, want := range wantTitles {
		if sections[i].Title != want {
			t.Errorf("section %d title = %q, want %q", i, sections[i].Title, want)
		}
	}
	if !strings.Contains(sections[1].Text, "Ground glass") {
		t.Errorf("CT Findings section missing body text: %q", sections[1].Text)
	}
}

func TestSplitSectionsCaseInsensitive(t *testing.T) {
	text := "DIFFERENTIAL DIAGNOSIS\nPneumonia versus edema.\n\ncase 3\nA 54 year old presents with dyspnea.\n"
	sections := SplitSections(text)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "DIFFERENTIAL DIAGNOSIS" {
		t.Errorf("title = %q", sections[0].Title)
	}
	if sections[1].Title != "case 3" {
		t.Errorf("title = %q", sections[1].Title)
	}
}

func TestSplitSectionsNoHeaders(t *testing.T) {
	text := "Some unstructured lecture notes about imaging.\nMore notes follow here."
	sections := SplitSections(text)
	if len(sections) != 1 {
		t.Fatalf("expected single generic section, got %d", len(sections))
	}
	if sections[0].Title != GenericSectionTitle {
		t.Errorf("title = %q, want %q", sections[0].Title, GenericSectionTitle)
	}
	if sections[0].Text != text {
		t.Errorf("generic section should carry the full text")
	}
}

func TestSplitSectionsTitleTruncated(t *testing.T) {
	long := "Technique " + strings.Repeat("x", 200)
	sections := SplitSections(long + "\nbody text here\n")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if len(sections[0].Title) != maxSectionTitleLen {
		t.Errorf("title length = %d, want %d", len(sections[0].Title), maxSectionTitleLen)
	}
}

func TestSplitSectionsCoversAllText(t *testing.T) {
	text := "Anatomy\nThe mediastinum contains the heart.\n\nPathology\nMasses may arise in any compartment.\n"
	sections := SplitSections(text)

	var joined strings.Builder
	for _, s := range sections {
		joined.WriteString(s.Text)
	}
	for _, phrase := range []string{"mediastinum contains", "Masses may arise"} {
		if !strings.Contains(joined.String(), phrase) {
			t.Errorf("section split lost text %q", phrase)
		}
	}
}
