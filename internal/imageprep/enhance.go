// enhance.go implements C1's enhancement pipeline (spec.md §4.1): EXIF
// auto-orient, RGB conversion, upscale to a minimum dimension with a
// high-quality resampler, contrast/sharpness adjustment, and an unsharp
// mask, plus the Tesseract-tuned grayscale variant.
//
// Raster decode uses stdlib image/{jpeg,png,gif} plus golang.org/x/image's
// bmp/tiff/webp decoders and draw.CatmullRom resampler — the pack carries
// no raster image codec or resampler of its own, so x/image (the Go team's
// own extended image library) is the natural ecosystem choice rather than
// a hand-rolled decoder. Contrast/sharpness/unsharp-mask, by contrast, have
// no library in the pack or in x/image either; those are implemented
// directly over image buffers below and that stdlib-only choice is
// recorded in DESIGN.md.
package imageprep

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// EnhanceOptions configures the enhancement pipeline. The zero value is not
// the default set; the defaults noted per field are what
// DefaultEnhanceOptions fills in.
type EnhanceOptions struct {
	Enabled           bool
	MinDimension      int     // default 1000
	Contrast          float64 // default 1.3
	Sharpness         float64 // default 1.2
	UnsharpRadius     float64 // default 1
	UnsharpPercent    float64 // default 50
	UnsharpThreshold  int     // default 3
	TesseractTuned    bool    // selects the grayscale/contrast-2.0/sharpen variant
}

// DefaultEnhanceOptions returns spec.md §4.1's primary-variant defaults.
func DefaultEnhanceOptions() EnhanceOptions {
	return EnhanceOptions{
		Enabled:          true,
		MinDimension:     1000,
		Contrast:         1.3,
		Sharpness:        1.2,
		UnsharpRadius:    1,
		UnsharpPercent:   50,
		UnsharpThreshold: 3,
	}
}

// TesseractTunedOptions returns the second, Tesseract-tuned variant:
// grayscale, contrast x2.0, sharpen filter (no unsharp mask stage).
func TesseractTunedOptions() EnhanceOptions {
	return EnhanceOptions{
		Enabled:        true,
		MinDimension:   1000,
		Contrast:       2.0,
		Sharpness:      1.2,
		TesseractTuned: true,
	}
}

// DecodeImage decodes a raster image of any of spec.md §4.1's supported
// kinds into an RGB image.Image, applying EXIF auto-orientation for JPEG
// input.
func DecodeImage(data []byte, kind FileKind) (image.Image, error) {
	var img image.Image
	var err error

	switch kind {
	case KindPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case KindJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
		if err == nil {
			if o := readJPEGOrientation(data); o > 1 {
				img = applyOrientation(img, o)
			}
		}
	case KindGIF:
		img, err = gif.Decode(bytes.NewReader(data))
	case KindBMP:
		img, err = bmp.Decode(bytes.NewReader(data))
	case KindTIFF:
		img, err = tiff.Decode(bytes.NewReader(data))
	case KindWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported raster kind: %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return toRGBA(img), nil
}

// Enhance runs the full pipeline over img per opts, returning a new image.
func Enhance(img image.Image, opts EnhanceOptions) image.Image {
	if !opts.Enabled {
		return img
	}

	out := toRGBA(img)
	out = upscaleToMinDimension(out, opts.MinDimension)

	if opts.TesseractTuned {
		out = grayscale(out)
		out = adjustContrast(out, opts.Contrast)
		out = sharpen(out, opts.Sharpness)
		return out
	}

	out = adjustContrast(out, opts.Contrast)
	out = sharpen(out, opts.Sharpness)
	if opts.UnsharpPercent > 0 {
		out = unsharpMask(out, opts.UnsharpRadius, opts.UnsharpPercent, opts.UnsharpThreshold)
	}
	return out
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// upscaleToMinDimension scales img up (never down) so its smaller dimension
// reaches target, using a high-quality (Catmull-Rom) resampler per
// spec.md §4.1.
func upscaleToMinDimension(img *image.RGBA, target int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	minDim := w
	if h < minDim {
		minDim = h
	}
	if minDim <= 0 || minDim >= target {
		return img
	}

	scale := float64(target) / float64(minDim)
	newW := int(math.Round(float64(w) * scale))
	newH := int(math.Round(float64(h) * scale))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func grayscale(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			out.Set(x, y, color.RGBA{g.Y, g.Y, g.Y, 255})
		}
	}
	return out
}

// adjustContrast scales each channel's distance from the mid-point (128) by
// factor.
func adjustContrast(img *image.RGBA, factor float64) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out.Set(x, y, color.RGBA{
				R: clampContrast(uint8(r>>8), factor),
				G: clampContrast(uint8(g>>8), factor),
				B: clampContrast(uint8(bl>>8), factor),
				A: uint8(a >> 8),
			})
		}
	}
	return out
}

func clampContrast(v uint8, factor float64) uint8 {
	c := (float64(v)-128)*factor + 128
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return uint8(c)
}

// sharpen applies a simple 3x3 unsharp-like kernel scaled by strength, a
// stand-in for a generic "sharpness" filter.
func sharpen(img *image.RGBA, strength float64) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	kernelCenter := 1 + 4*strength
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if x == b.Min.X || y == b.Min.Y || x == b.Max.X-1 || y == b.Max.Y-1 {
				out.Set(x, y, img.At(x, y))
				continue
			}
			out.Set(x, y, convolveAt(img, x, y, kernelCenter, strength))
		}
	}
	return out
}

func convolveAt(img *image.RGBA, x, y int, center, edge float64) color.RGBA {
	get := func(dx, dy int) (float64, float64, float64) {
		r, g, b, _ := img.At(x+dx, y+dy).RGBA()
		return float64(r >> 8), float64(g >> 8), float64(b >> 8)
	}
	cr, cg, cb := get(0, 0)
	nr, ng, nb := get(0, -1)
	sr, sg, sb := get(0, 1)
	er, eg, eb := get(1, 0)
	wr, wg, wb := get(-1, 0)

	mix := func(c, n, s, e, w float64) uint8 {
		v := c*center - edge*(n+s+e+w)
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	_, _, a := 0.0, 0.0, img.RGBAAt(x, y).A
	return color.RGBA{
		R: mix(cr, nr, sr, er, wr),
		G: mix(cg, ng, sg, eg, wg),
		B: mix(cb, nb, sb, eb, wb),
		A: a,
	}
}

// unsharpMask blurs a copy of img (box blur approximating the radius),
// then adds back percent% of (original - blurred) wherever the difference
// exceeds threshold.
func unsharpMask(img *image.RGBA, radius, percent float64, threshold int) *image.RGBA {
	blurred := boxBlur(img, int(math.Max(1, math.Round(radius))))
	b := img.Bounds()
	out := image.NewRGBA(b)
	amount := percent / 100.0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			or, og, ob, oa := img.At(x, y).RGBA()
			br, bg, bb, _ := blurred.At(x, y).RGBA()

			apply := func(o, bl uint32) uint8 {
				diff := int(o>>8) - int(bl>>8)
				if abs(diff) < threshold {
					return uint8(o >> 8)
				}
				v := float64(o>>8) + amount*float64(diff)
				if v < 0 {
					v = 0
				}
				if v > 255 {
					v = 255
				}
				return uint8(v)
			}
			out.Set(x, y, color.RGBA{apply(or, br), apply(og, bg), apply(ob, bb), uint8(oa >> 8)})
		}
	}
	return out
}

func boxBlur(img *image.RGBA, radius int) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var rs, gs, bs, as, n uint32
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					r, g, bl, a := img.At(px, py).RGBA()
					rs += r >> 8
					gs += g >> 8
					bs += bl >> 8
					as += a >> 8
					n++
				}
			}
			if n == 0 {
				n = 1
			}
			out.Set(x, y, color.RGBA{uint8(rs / n), uint8(gs / n), uint8(bs / n), uint8(as / n)})
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// readJPEGOrientation extracts the EXIF orientation tag (1-8) from a JPEG's
// APP1 segment, returning 1 (no-op) if absent or malformed. No pack library
// parses EXIF, so this is a minimal, justified hand-rolled reader limited
// to the single tag the enhancement pipeline needs.
func readJPEGOrientation(data []byte) int {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 1
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			break
		}
		marker := data[pos+1]
		if marker == 0xD8 || marker == 0xD9 {
			pos += 2
			continue
		}
		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if marker == 0xE1 && pos+4+6 <= len(data) && bytes.HasPrefix(data[pos+4:], []byte("Exif\x00\x00")) {
			return parseExifOrientation(data[pos+4+6 : min(len(data), pos+2+segLen)])
		}
		if marker == 0xDA { // start of scan: no more APPn segments follow
			break
		}
		pos += 2 + segLen
	}
	return 1
}

func parseExifOrientation(tiffData []byte) int {
	if len(tiffData) < 8 {
		return 1
	}
	var bo binary.ByteOrder
	switch string(tiffData[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return 1
	}
	ifdOffset := bo.Uint32(tiffData[4:8])
	if int(ifdOffset)+2 > len(tiffData) {
		return 1
	}
	numEntries := int(bo.Uint16(tiffData[ifdOffset : ifdOffset+2]))
	entryStart := int(ifdOffset) + 2
	for i := 0; i < numEntries; i++ {
		off := entryStart + i*12
		if off+12 > len(tiffData) {
			break
		}
		tag := bo.Uint16(tiffData[off : off+2])
		if tag == 0x0112 { // Orientation
			val := bo.Uint16(tiffData[off+8 : off+10])
			if val >= 1 && val <= 8 {
				return int(val)
			}
		}
	}
	return 1
}

// applyOrientation rotates img for EXIF orientations 3 (180°), 6 (90°
// clockwise) and 8 (90° counter-clockwise). The mirrored orientations 2, 4,
// 5 and 7 are not flipped; those images, like orientation 1, are returned
// unrotated.
func applyOrientation(img image.Image, orientation int) image.Image {
	rgba := toRGBA(img)
	switch orientation {
	case 3:
		return rotate180(rgba)
	case 6:
		return rotate90CW(rgba)
	case 8:
		return rotate90CCW(rgba)
	default:
		return rgba
	}
}

func rotate180(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.X-1-(x-b.Min.X), b.Max.Y-1-(y-b.Min.Y), img.At(x, y))
		}
	}
	return out
}

func rotate90CW(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.Y-1-(y-b.Min.Y), x-b.Min.X, img.At(x, y))
		}
	}
	return out
}

func rotate90CCW(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(y-b.Min.Y, b.Max.X-1-(x-b.Min.X), img.At(x, y))
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
