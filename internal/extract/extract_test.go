package extract

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("ALARA and dose limits.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Text, "ALARA") {
		t.Errorf("text = %q", doc.Text)
	}
	if doc.Title != "notes" {
		t.Errorf("title = %q, want file stem fallback", doc.Title)
	}
	if doc.UnitCount != 1 {
		t.Errorf("unit count = %d, want 1", doc.UnitCount)
	}
	if len(doc.ContentHash) != 64 || !strings.HasPrefix(doc.ID, "doc:") {
		t.Errorf("id/hash = %q / %q", doc.ID, doc.ContentHash)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewExtractor().Extract(filepath.Join(t.TempDir(), "absent.txt"))
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("error = %v, want ExtractionError", err)
	}
	if xerr.Path == "" {
		t.Error("ExtractionError must carry the path")
	}
}

func TestExtractPPTX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physics_lecture.pptx")

	png := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	writeZip(t, path, map[string][]byte{
		"docProps/core.xml": []byte(`<coreProperties><dc:title>CT Physics</dc:title><dc:creator>Dr. Example</dc:creator></coreProperties>`),
		"ppt/slides/slide1.xml": []byte(`<sld><a:t>Dose Metrics</a:t><a:t xml:space="preserve">CTDIvol and DLP quantify scanner output.</a:t></sld>`),
		"ppt/slides/slide2.xml": []byte(`<sld><a:t>Image Quality</a:t><a:t>Noise scales inversely with dose.</a:t></sld>`),
		"ppt/notesSlides/notesSlide1.xml": []byte(`<notes><a:t>Mention size-specific dose estimates.</a:t></notes>`),
		"ppt/slides/_rels/slide2.xml.rels": []byte(`<Relationships><Relationship Target="../media/image1.png"/></Relationships>`),
		"ppt/media/image1.png": png,
	})

	doc, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "CT Physics" || doc.Author != "Dr. Example" {
		t.Errorf("title/author = %q/%q", doc.Title, doc.Author)
	}
	if len(doc.Units) != 2 {
		t.Fatalf("units = %d, want 2", len(doc.Units))
	}

	s1 := doc.Units[0]
	if s1.Index != 1 || s1.Title != "Dose Metrics" {
		t.Errorf("slide 1 = %+v", s1)
	}
	if !strings.Contains(s1.Text, "CTDIvol") {
		t.Errorf("slide 1 text = %q", s1.Text)
	}
	if !strings.Contains(s1.Notes, "size-specific") {
		t.Errorf("slide 1 notes = %q", s1.Notes)
	}
	if s1.HasImages {
		t.Error("slide 1 has no images")
	}

	s2 := doc.Units[1]
	if !s2.HasImages || len(s2.Images) != 1 {
		t.Fatalf("slide 2 images = %+v", s2.Images)
	}
	img := s2.Images[0]
	if img.Format != "png" || img.SlideIndex != 2 {
		t.Errorf("image = %+v", img)
	}
	decoded, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil || !bytes.Equal(decoded, png) {
		t.Errorf("image payload corrupted: %v", err)
	}
}

func TestExtractPPTXSlideOrdering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	files := map[string][]byte{}
	// slide10 must sort after slide2.
	files["ppt/slides/slide10.xml"] = []byte(`<sld><a:t>tenth</a:t></sld>`)
	files["ppt/slides/slide2.xml"] = []byte(`<sld><a:t>second</a:t></sld>`)
	writeZip(t, path, files)

	doc, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Units) != 2 || doc.Units[0].Index != 2 || doc.Units[1].Index != 10 {
		t.Errorf("slide order = %+v", doc.Units)
	}
}

func TestExtractDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.docx")
	writeZip(t, path, map[string][]byte{
		"word/document.xml": []byte(`<w:document><w:t>Chest radiograph</w:t><w:t xml:space="preserve">shows consolidation.</w:t></w:document>`),
	})

	doc, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Text != "Chest radiograph shows consolidation." {
		t.Errorf("text = %q", doc.Text)
	}
	if len(doc.Units) != 1 {
		t.Errorf("units = %d, want 1", len(doc.Units))
	}
}

func TestExtractDocxMissingBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	writeZip(t, path, map[string][]byte{"other.xml": []byte("<x/>")})

	_, err := NewExtractor().Extract(path)
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Errorf("error = %v, want ExtractionError", err)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.txt")
	if err := os.WriteFile(path, []byte{'o', 'k', 0xff, 0xfe, '!'}, 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.Text, "ok") || !strings.HasSuffix(doc.Text, "!") {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".PPTX", ".docx", ".odt", ".rtf", ".txt", ".md"} {
		if !Supported(ext) {
			t.Errorf("Supported(%s) = false", ext)
		}
	}
	for _, ext := range []string{".exe", ".png", ""} {
		if Supported(ext) {
			t.Errorf("Supported(%s) = true", ext)
		}
	}
}
