// Package pipeline orchestrates the components into the operations
// spec.md §6.1 names — ExtractStructured (C1/C2/C3/C4/{C5,C6,C7}/C8)
// and the embedding-generation flow (C9) — the way the teacher's
// processor.go's ProcessDocument sequences OCR -> layout -> embedding ->
// storage into one per-job call, generalized from one "document DNA"
// output to a StructuredCandidate / EmbeddingRecord pair.
package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/education"
	"github.com/nexus-talent/resume-match/internal/embedding"
	"github.com/nexus-talent/resume-match/internal/imageprep"
	"github.com/nexus-talent/resume-match/internal/layout"
	"github.com/nexus-talent/resume-match/internal/logging"
	"github.com/nexus-talent/resume-match/internal/model"
	"github.com/nexus-talent/resume-match/internal/ocr"
	"github.com/nexus-talent/resume-match/internal/section"
	"github.com/nexus-talent/resume-match/internal/skills"
	"github.com/nexus-talent/resume-match/internal/table"
	"github.com/nexus-talent/resume-match/internal/tier1"
	"github.com/nexus-talent/resume-match/internal/workhistory"
)

// ColumnSplitThresholdPx is C3's default left-x column boundary.
const ColumnSplitThresholdPx = 500

// Extractor runs the full document -> StructuredCandidate pipeline.
type Extractor struct {
	rasterizer imageprep.PageRasterizer
	ocrEngine  *ocr.Engine
	enhanceOpt imageprep.EnhanceOptions
	columnSplitPx int
	log        *logging.Logger
}

// NewExtractor wires the already-constructed C1/C2 collaborators.
func NewExtractor(rasterizer imageprep.PageRasterizer, ocrEngine *ocr.Engine, columnSplitPx int, log *logging.Logger) *Extractor {
	if columnSplitPx <= 0 {
		columnSplitPx = ColumnSplitThresholdPx
	}
	return &Extractor{
		rasterizer:    rasterizer,
		ocrEngine:     ocrEngine,
		enhanceOpt:    imageprep.TesseractTunedOptions(),
		columnSplitPx: columnSplitPx,
		log:           log,
	}
}

// ExtractFromDocument runs C1 (decode/rasterize/enhance) through C2 (OCR)
// and hands the resulting lines to ExtractStructured.
func (e *Extractor) ExtractFromDocument(ctx context.Context, fileBytes []byte, declaredMime string) (model.StructuredCandidate, []table.Table, error) {
	kind := imageprep.FileKindFromMime(declaredMime, fileBytes)
	if kind == imageprep.KindUnknown {
		return model.StructuredCandidate{}, nil, apperr.BadInput("unrecognized document type", nil)
	}

	pages, err := e.decodeToImages(ctx, fileBytes, kind)
	if err != nil {
		return model.StructuredCandidate{}, nil, err
	}

	var allLines []model.OcrLine
	var detectedTables []table.Table
	for pageIndex, img := range pages {
		lines, err := e.ocrEngine.ExtractLines(ctx, img, uint32(pageIndex))
		if err != nil {
			return model.StructuredCandidate{}, nil, err
		}
		allLines = append(allLines, lines...)
		detectedTables = append(detectedTables, table.Detect(lines)...)
	}

	candidate, err := e.ExtractStructured(allLines)
	return candidate, detectedTables, err
}

func (e *Extractor) decodeToImages(ctx context.Context, fileBytes []byte, kind imageprep.FileKind) ([]image.Image, error) {
	if kind == imageprep.KindPDF {
		rasterPages, err := e.rasterizer.RasterizePDF(ctx, fileBytes)
		if err != nil {
			return nil, err
		}
		imgs := make([]image.Image, 0, len(rasterPages))
		for _, rp := range rasterPages {
			img, err := imageprep.DecodeImage(rp.Image, imageprep.KindPNG)
			if err != nil {
				return nil, apperr.Internal("failed to decode rasterized PDF page", err)
			}
			imgs = append(imgs, imageprep.Enhance(img, e.enhanceOpt))
		}
		return imgs, nil
	}

	img, err := imageprep.DecodeImage(fileBytes, kind)
	if err != nil {
		return nil, apperr.BadInput(fmt.Sprintf("failed to decode %s image", kind), err)
	}
	return []image.Image{imageprep.Enhance(img, e.enhanceOpt)}, nil
}

// ExtractStructured runs C3 (column split, column-aware when geometry is
// present) through C8 over already-OCR'd lines; this is the entry point
// `POST /api/ocr/extract-structured` names directly for text-in callers.
func (e *Extractor) ExtractStructured(lines []model.OcrLine) (model.StructuredCandidate, error) {
	text := joinLines(lines)
	if len(lines) > 0 {
		left, right := layout.SplitOrRaw(lines, e.columnSplitPx)
		text = left + "\n" + right
	}

	spans := section.FindSectionSpans(text)
	raw := model.RawSections{}

	var workHistory []model.JobRecord
	var educationRecords []model.EducationRecord
	var skillTokens []model.SkillToken

	for _, span := range spans {
		segment := text[span.Start:span.End]
		switch span.Name {
		case model.SectionWorkExperience:
			s := segment
			raw.Experience = &s
			workHistory = workhistory.Parse(segment)
		case model.SectionEducation:
			s := segment
			raw.Education = &s
			educationRecords = education.Parse(segment)
		case model.SectionSkills:
			skillTokens = skills.Parse(segment)
		}
	}

	tier1Profile := tier1.Extract(text)
	if tier1Profile.IsEmpty() {
		return model.StructuredCandidate{}, apperr.NoPersonalInfo("")
	}

	candidate := model.StructuredCandidate{
		Tier1:       tier1Profile,
		WorkHistory: workHistory,
		Education:   educationRecords,
		Skills:      skillTokens,
		RawSections: raw,
	}
	candidate.OverallConfidence = candidate.Tier1.OverallConfidence()
	return candidate, nil
}

func joinLines(lines []model.OcrLine) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l.Text
	}
	return out
}

// GenerateCandidateEmbedding composes and returns the combined embedding
// for a candidate's parsed content, per spec.md §4.9 weights.
func GenerateCandidateEmbedding(ctx context.Context, embedder embedding.Embedder, candidate model.StructuredCandidate) (model.EmbeddingVector, string, error) {
	skillsText := joinSkillNames(candidate.Skills)
	parts := model.EmbeddingParts{
		CV:         raw(candidate.RawSections.Experience),
		Skills:     nonEmpty(skillsText),
		Experience: candidate.RawSections.Experience,
	}
	return embedding.ComposeCandidate(ctx, embedder, parts)
}

// GenerateJobEmbedding composes the combined embedding for a job posting's
// description and requirements text.
func GenerateJobEmbedding(ctx context.Context, embedder embedding.Embedder, description, requirements string) (model.EmbeddingVector, string, error) {
	parts := model.EmbeddingParts{
		Description:  nonEmpty(description),
		Requirements: nonEmpty(requirements),
	}
	return embedding.ComposeJob(ctx, embedder, parts)
}

func joinSkillNames(skillTokens []model.SkillToken) string {
	out := ""
	for i, s := range skillTokens {
		if i > 0 {
			out += ", "
		}
		out += s.Name.Value
	}
	return out
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func raw(s *string) *string { return s }
