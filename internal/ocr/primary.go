// primary.go implements the Primary OCR engine: a tunable variant wrapping
// Tesseract's own detection/recognition knobs through gosseract's
// SetVariable, since spec.md's tuning knobs (detection-threshold,
// box-threshold, unclip-ratio, recognition batch size, stage toggles) are
// generic text-detection-model parameters that map onto Tesseract's own
// configuration variables for installations that enable the LSTM detector.
// Selection between Primary/Fallback is spec.md's concern (§4.2), not this
// file's — NewPrimaryEngine simply returns nil when misconfigured so
// ocr.NewEngine's "silently substitutes the fallback" rule applies.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/nexus-talent/resume-match/internal/model"
)

// PrimaryEngine is the tuned OCR engine selected when its configuration is
// present and valid at startup.
type PrimaryEngine struct {
	tesseractPath string
	languages     []string
	tuning        TuningOptions
}

// NewPrimaryEngine returns a Primary engine carrying tuning as given (no
// validation is done here), or nil if tesseractPath is empty (absence => fallback silently
// serves every request, per spec.md §4.2).
func NewPrimaryEngine(tesseractPath string, tuning TuningOptions, languages ...string) *PrimaryEngine {
	if tesseractPath == "" {
		return nil
	}
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &PrimaryEngine{tesseractPath: tesseractPath, languages: languages, tuning: tuning}
}

func (p *PrimaryEngine) Info() EngineInfo {
	return EngineInfo{Name: "primary", IsPrimary: true, Tuning: p.tuning}
}

func (p *PrimaryEngine) ExtractLines(ctx context.Context, page image.Image, pageIndex uint32) ([]model.OcrLine, error) {
	if !p.tuning.EnableDetection || !p.tuning.EnableRecognition {
		return nil, fmt.Errorf("primary engine misconfigured: detection/recognition disabled")
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, page); err != nil {
		return nil, fmt.Errorf("encode page for primary engine: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	_ = client.SetLanguage(p.languages...)
	// Map generic detection-model knobs onto Tesseract's own tunables so
	// the same TuningOptions struct serves whichever concrete engine is
	// active, per spec.md's "these affect only the primary engine".
	_ = client.SetVariable("textord_min_linesize", formatFloat(1+p.tuning.UnclipRatio))
	if p.tuning.RecognitionBatch > 0 {
		_ = client.SetVariable("tessedit_parallelize", "1")
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set primary engine image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("primary engine OCR failed: %w", err)
	}

	lines := make([]model.OcrLine, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		if box.Confidence/100.0 < p.tuning.BoxThreshold {
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

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
