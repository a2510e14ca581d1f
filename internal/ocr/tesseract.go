// tesseract.go implements the Fallback OCR engine using Tesseract via
// gosseract, generalized from the teacher's internal/processor/
// tesseract_ocr.go into the Ocr capability interface (C2). Line-level
// bounding boxes come from gosseract's RIL_TEXTLINE iterator level, which
// the teacher's flat Process(text)-only implementation did not use (its
// Words field was left empty with a "requires HOCR parsing" comment) — C2
// requires per-line polygons, so this is where the adaptation adds real
// behavior rather than a line-for-line port.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/nexus-talent/resume-match/internal/model"
)

// TesseractEngine is the Fallback OCR engine (always available once the
// tesseract binary is installed).
type TesseractEngine struct {
	tesseractPath string
	languages     []string
}

// NewTesseractEngine builds the Fallback engine. tesseractPath is recorded
// but not passed to gosseract, which resolves Tesseract on its own.
func NewTesseractEngine(tesseractPath string, languages ...string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{tesseractPath: tesseractPath, languages: languages}
}

func (t *TesseractEngine) Info() EngineInfo {
	return EngineInfo{Name: "tesseract"}
}

// ExtractLines runs Tesseract over page and returns one OcrLine per
// detected text line, with per-line confidence and bounding polygon.
func (t *TesseractEngine) ExtractLines(ctx context.Context, page image.Image, pageIndex uint32) ([]model.OcrLine, error) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, page); err != nil {
		return nil, fmt.Errorf("encode page for tesseract: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(t.languages) > 0 {
		_ = client.SetLanguage(t.languages...)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set tesseract image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		// Fall back to whole-text extraction (teacher's original path) when
		// bounding-box iteration is unavailable (e.g. stripped training
		// data); confidence uses the teacher's heuristic.
		text, terr := client.Text()
		if terr != nil {
			return nil, fmt.Errorf("tesseract OCR failed: %w", terr)
		}
		conf := calculateTesseractConfidence(text)
		return linesFromWholeText(text, conf, pageIndex, page.Bounds()), nil
	}

	lines := make([]model.OcrLine, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		r := box.Box
		lines = append(lines, model.OcrLine{
			Text:       text,
			Confidence: box.Confidence,
			Page:       pageIndex,
			BBox: [4]model.Point{
				{X: r.Min.X, Y: r.Min.Y},
				{X: r.Max.X, Y: r.Min.Y},
				{X: r.Max.X, Y: r.Max.Y},
				{X: r.Min.X, Y: r.Max.Y},
			},
		})
	}
	return lines, nil
}

func linesFromWholeText(text string, confidence float64, pageIndex uint32, bounds image.Rectangle) []model.OcrLine {
	raw := strings.Split(text, "\n")
	lines := make([]model.OcrLine, 0, len(raw))
	y := bounds.Min.Y
	lineHeight := 20
	for _, l := range raw {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			y += lineHeight
			continue
		}
		lines = append(lines, model.OcrLine{
			Text:       trimmed,
			Confidence: confidence * 100,
			Page:       pageIndex,
			BBox: [4]model.Point{
				{X: bounds.Min.X, Y: y},
				{X: bounds.Max.X, Y: y},
				{X: bounds.Max.X, Y: y + lineHeight},
				{X: bounds.Min.X, Y: y + lineHeight},
			},
		})
		y += lineHeight
	}
	return lines
}

// calculateTesseractConfidence is the teacher's text-quality heuristic
// (processor/tesseract_ocr.go), used verbatim as the whole-text-fallback
// confidence estimate; returns a fraction [0,1] the caller scales to
// percent.
func calculateTesseractConfidence(text string) float64 {
	confidence := 0.5

	if len(text) > 1000 {
		confidence += 0.1
	}
	if len(text) > 5000 {
		confidence += 0.1
	}

	words := strings.Fields(text)
	if len(words) > 100 {
		confidence += 0.1
	}

	alphaCount := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alphaCount++
		}
	}
	if len(text) > 0 {
		alphaRatio := float64(alphaCount) / float64(len(text))
		if alphaRatio > 0.5 && alphaRatio < 0.9 {
			confidence += 0.1
		}
	}

	if confidence > 0.85 {
		confidence = 0.85
	}
	return confidence
}
