// Package imageprep implements C1: document decoding and image
// preprocessing. mime.go's magic-byte sniffing is a direct generalization
// of the teacher's detectMimeTypeFromMagicBytes in processor.go, trimmed to
// the file kinds spec.md §4.1 names: pdf, png, jpg/jpeg, tiff, bmp, gif,
// webp.
package imageprep

import "bytes"

// FileKind is the declared/detected document kind, a tagged-variant
// replacement for the source's dynamic MIME string.
type FileKind string

const (
	KindPDF     FileKind = "pdf"
	KindPNG     FileKind = "png"
	KindJPEG    FileKind = "jpeg"
	KindTIFF    FileKind = "tiff"
	KindBMP     FileKind = "bmp"
	KindGIF     FileKind = "gif"
	KindWebP    FileKind = "webp"
	KindUnknown FileKind = ""
)

// DetectFileKind sniffs magic bytes, used to correct a declared/absent MIME
// type the way the teacher does for uploads with a generic
// application/octet-stream MIME.
func DetectFileKind(data []byte) FileKind {
	if len(data) < 4 {
		return KindUnknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return KindPDF
	case len(data) >= 8 && bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return KindPNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return KindJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return KindGIF
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return KindWebP
	case len(data) >= 4 && (bytes.HasPrefix(data, []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.HasPrefix(data, []byte{0x4D, 0x4D, 0x00, 0x2A})):
		return KindTIFF
	case bytes.HasPrefix(data, []byte("BM")):
		return KindBMP
	default:
		return KindUnknown
	}
}

// FileKindFromMime maps a declared MIME string to a FileKind, falling back
// to magic-byte detection when the declared type is absent or generic.
func FileKindFromMime(mime string, data []byte) FileKind {
	switch mime {
	case "application/pdf":
		return KindPDF
	case "image/png":
		return KindPNG
	case "image/jpeg", "image/jpg":
		return KindJPEG
	case "image/tiff":
		return KindTIFF
	case "image/bmp":
		return KindBMP
	case "image/gif":
		return KindGIF
	case "image/webp":
		return KindWebP
	default:
		return DetectFileKind(data)
	}
}
