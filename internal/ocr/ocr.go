// Package ocr implements C2: the OCR Engine capability interface and its
// Primary/Fallback selection, polymorphic over {extract-lines(page) ->
// OcrLine[]} per spec.md §4.2/§9.
package ocr

import (
	"context"
	"image"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/model"
)

// EngineInfo describes which engine is actually serving requests, exposed
// per spec.md §4.2 ("state is exposed via engine_info").
type EngineInfo struct {
	Name      string
	IsPrimary bool
	Tuning    TuningOptions
}

// TuningOptions are the knobs spec.md §4.2 names; they affect only the
// primary engine.
type TuningOptions struct {
	DetectionThreshold float64
	BoxThreshold       float64
	UnclipRatio        float64
	RecognitionBatch   int
	EnableDetection    bool
	EnableClassification bool
	EnableRecognition  bool
}

// DefaultTuning returns permissive defaults (all stages enabled).
func DefaultTuning() TuningOptions {
	return TuningOptions{
		DetectionThreshold:   0.3,
		BoxThreshold:         0.5,
		UnclipRatio:          1.5,
		RecognitionBatch:     8,
		EnableDetection:      true,
		EnableClassification: true,
		EnableRecognition:    true,
	}
}

// Ocr is the capability interface both engines implement.
type Ocr interface {
	ExtractLines(ctx context.Context, page image.Image, pageIndex uint32) ([]model.OcrLine, error)
	Info() EngineInfo
}

// Engine selects between a configured Primary and a Fallback, silently
// substituting the fallback when the primary is absent or failed to
// initialize, per spec.md §4.2.
type Engine struct {
	primary  Ocr
	fallback Ocr
	active   Ocr
}

// NewEngine builds the selection engine. primary may be nil (e.g. when its
// binary/tuning config is absent at startup) in which case fallback serves
// every request; fallback must not be nil.
func NewEngine(primary, fallback Ocr) (*Engine, error) {
	if fallback == nil && primary == nil {
		return nil, apperr.EngineUnavailable(nil)
	}
	active := primary
	if active == nil {
		active = fallback
	}
	return &Engine{primary: primary, fallback: fallback, active: active}, nil
}

// ExtractLines runs the active engine; on a primary failure it falls back
// once and permanently switches to the fallback for subsequent calls,
// mirroring "on initialisation failure or absence the system silently
// substitutes the fallback".
func (e *Engine) ExtractLines(ctx context.Context, page image.Image, pageIndex uint32) ([]model.OcrLine, error) {
	if e.active == nil {
		return nil, apperr.EngineUnavailable(nil)
	}
	lines, err := e.active.ExtractLines(ctx, page, pageIndex)
	if err != nil && e.active == e.primary && e.fallback != nil {
		e.active = e.fallback
		return e.active.ExtractLines(ctx, page, pageIndex)
	}
	return lines, err
}

// Info reports the currently active engine.
func (e *Engine) Info() EngineInfo {
	if e.active == nil {
		return EngineInfo{Name: "none"}
	}
	info := e.active.Info()
	info.IsPrimary = e.active == e.primary
	return info
}
