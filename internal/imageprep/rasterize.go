// rasterize.go implements C1's PDF path: rasterize every page at the
// spec.md §4.1 DPI ladder (200 -> 150 -> 100, three attempts, fail after
// the third). PDF rendering is delegated to an external renderer binary —
// the same "bridge a path-only binding" pattern the teacher uses for
// Tesseract (internal/processor/tesseract_ocr.go) and for its MageAgent
// HTTP delegation, generalized here to a local subprocess since PDF
// decoding is in this spec's local scope (§1) rather than delegated to a
// network service. Temp-file lifecycle follows SPEC_FULL.md §9's
// scoped-acquire/guaranteed-release discipline.
package imageprep

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/nexus-talent/resume-match/internal/apperr"
)

// PageRasterizer renders a PDF's pages to RGB images, mirroring C2's Ocr
// capability-interface pattern (SPEC_FULL.md §4.1).
type PageRasterizer interface {
	RasterizePDF(ctx context.Context, pdfBytes []byte) ([]RasterPage, error)
}

// RasterPage is one decoded page image plus its pixel dimensions.
type RasterPage struct {
	Index  int
	Width  int
	Height int
	Image  []byte // PNG-encoded
}

// ExternalRasterizer shells out to a configurable renderer binary
// (default: poppler's pdftoppm) at decreasing DPI until one attempt
// succeeds.
type ExternalRasterizer struct {
	BinaryPath string
	DPILadder  []int // default [200, 150, 100]
	TempDir    string
}

// NewExternalRasterizer builds a rasterizer using spec.md §4.1's default
// DPI ladder unless overridden.
func NewExternalRasterizer(binaryPath, tempDir string, dpiLadder []int) *ExternalRasterizer {
	if len(dpiLadder) == 0 {
		dpiLadder = []int{200, 150, 100}
	}
	return &ExternalRasterizer{BinaryPath: binaryPath, DPILadder: dpiLadder, TempDir: tempDir}
}

// RasterizePDF attempts rendering at each DPI in the ladder in order,
// returning the first success. It fails with apperr.Internal after
// exhausting every rung (spec.md: "fail after the third attempt").
func (r *ExternalRasterizer) RasterizePDF(ctx context.Context, pdfBytes []byte) ([]RasterPage, error) {
	var lastErr error
	for _, dpi := range r.DPILadder {
		pages, err := r.rasterizeAtDPI(ctx, pdfBytes, dpi)
		if err == nil {
			return pages, nil
		}
		lastErr = err
	}
	return nil, apperr.Internal("pdf rasterization failed at every DPI in the ladder", lastErr)
}

func (r *ExternalRasterizer) rasterizeAtDPI(ctx context.Context, pdfBytes []byte, dpi int) ([]RasterPage, error) {
	workDir, err := os.MkdirTemp(r.TempDir, "rasterize-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	srcPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(srcPath, pdfBytes, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	outPrefix := filepath.Join(workDir, "page")
	// pdftoppm -r <dpi> -png input.pdf <outPrefix>
	cmd := exec.CommandContext(ctx, r.BinaryPath, "-r", strconv.Itoa(dpi), "-png", srcPath, outPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("rasterizer exec at %d dpi: %w: %s", dpi, err, string(out))
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("read rasterizer output dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".png" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("rasterizer produced no pages at %d dpi", dpi)
	}

	pages := make([]RasterPage, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(workDir, name))
		if err != nil {
			return nil, fmt.Errorf("read rasterized page %s: %w", name, err)
		}
		img, decErr := DecodeImage(data, KindPNG)
		w, h := 0, 0
		if decErr == nil {
			b := img.Bounds()
			w, h = b.Dx(), b.Dy()
		}
		pages = append(pages, RasterPage{Index: i, Width: w, Height: h, Image: data})
	}
	return pages, nil
}
