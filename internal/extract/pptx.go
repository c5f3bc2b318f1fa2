package extract

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

const (
	pptxSlidePathPrefix = "ppt/slides/slide"
	pptxNotesPathPrefix = "ppt/notesSlides/notesSlide"
)

// atTag matches <a:t>text</a:t> including attribute variants like
// <a:t xml:space="preserve">.
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// relTarget matches Relationship entries in a slide's .rels file that embed
// media, capturing the target path.
var relTarget = regexp.MustCompile(`Target="(\.\./media/[^"]+)"`)

var corePropTitle = regexp.MustCompile(`<dc:title>([^<]*)</dc:title>`)
var corePropCreator = regexp.MustCompile(`<dc:creator>([^<]*)</dc:creator>`)

// extractPPTX builds a Document from .pptx bytes. PPTX is a ZIP of Office
// Open XML parts: ppt/slides/slideN.xml holds the text runs, the sidecar
// ppt/notesSlides part holds speaker notes, and embedded pictures live under
// ppt/media referenced from each slide's relationship part.
func extractPPTX(content []byte) (*models.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract PPTX: not a zip: %w", err)
	}

	parts := make(map[string][]byte)
	for _, f := range zr.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("extract PPTX: read %s: %w", f.Name, err)
		}
		parts[f.Name] = data
	}

	doc := &models.Document{}
	if core, ok := parts["docProps/core.xml"]; ok {
		if m := corePropTitle.FindSubmatch(core); m != nil {
			doc.Title = string(m[1])
		}
		if m := corePropCreator.FindSubmatch(core); m != nil {
			doc.Author = string(m[1])
		}
	}

	var full strings.Builder
	for _, n := range slideNumbers(parts) {
		unit := models.DocumentUnit{Index: n}

		slideXML := parts[fmt.Sprintf("%s%d.xml", pptxSlidePathPrefix, n)]
		var texts []string
		for _, m := range atTag.FindAllSubmatch(slideXML, -1) {
			if t := strings.TrimSpace(string(m[1])); t != "" {
				texts = append(texts, t)
			}
		}
		// First short text run on the slide is treated as its title.
		if len(texts) > 0 && len(texts[0]) < 100 {
			unit.Title = texts[0]
		}
		unit.Text = strings.Join(texts, "\n")

		if notesXML, ok := parts[fmt.Sprintf("%s%d.xml", pptxNotesPathPrefix, n)]; ok {
			var notes []string
			for _, m := range atTag.FindAllSubmatch(notesXML, -1) {
				if t := strings.TrimSpace(string(m[1])); t != "" {
					notes = append(notes, t)
				}
			}
			unit.Notes = strings.Join(notes, "\n")
		}

		unit.Images = slideImages(parts, n)
		unit.HasImages = len(unit.Images) > 0

		doc.Units = append(doc.Units, unit)
		full.WriteString(unit.Text)
		full.WriteByte('\n')
	}
	doc.Text = full.String()
	return doc, nil
}

// slideNumbers returns the slide indices present in the archive, sorted
// numerically (slide10 sorts after slide2).
func slideNumbers(parts map[string][]byte) []int {
	var nums []int
	for name := range parts {
		if !strings.HasPrefix(name, pptxSlidePathPrefix) || !strings.HasSuffix(name, ".xml") {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, pptxSlidePathPrefix), ".xml")
		if n, err := strconv.Atoi(numStr); err == nil {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

// slideImages resolves the media relationships of slide n into base64 payloads.
func slideImages(parts map[string][]byte, n int) []models.SlideImage {
	rels, ok := parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)]
	if !ok {
		return nil
	}
	var images []models.SlideImage
	for _, m := range relTarget.FindAllSubmatch(rels, -1) {
		target := path.Join("ppt", strings.TrimPrefix(string(m[1]), "../"))
		data, ok := parts[target]
		if !ok {
			continue
		}
		images = append(images, models.SlideImage{
			Data:       base64.StdEncoding.EncodeToString(data),
			Format:     strings.TrimPrefix(path.Ext(target), "."),
			SlideIndex: n,
		})
	}
	return images
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
