package imageprep

import "testing"

func TestDetectFileKind(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want FileKind
	}{
		{"pdf", []byte("%PDF-1.7 rest"), KindPDF},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, KindPNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, KindJPEG},
		{"gif87", []byte("GIF87a...."), KindGIF},
		{"gif89", []byte("GIF89a...."), KindGIF},
		{"bmp", []byte("BM....."), KindBMP},
		{"tiff-le", []byte{0x49, 0x49, 0x2A, 0x00, 0, 0, 0, 0}, KindTIFF},
		{"tiff-be", []byte{0x4D, 0x4D, 0x00, 0x2A, 0, 0, 0, 0}, KindTIFF},
		{"webp", append([]byte("RIFF"), append([]byte{0, 0, 0, 0}, []byte("WEBP")...)...), KindWebP},
		{"too-short", []byte{0x01}, KindUnknown},
		{"unknown", []byte("plain text content"), KindUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DetectFileKind(c.data); got != c.want {
				t.Fatalf("DetectFileKind(%q) = %q, want %q", c.name, got, c.want)
			}
		})
	}
}

func TestFileKindFromMimeFallsBackToMagicBytes(t *testing.T) {
	data := []byte("%PDF-1.4")
	if got := FileKindFromMime("application/octet-stream", data); got != KindPDF {
		t.Fatalf("expected fallback detection to find pdf, got %q", got)
	}
	if got := FileKindFromMime("image/png", data); got != KindPNG {
		t.Fatalf("expected declared mime to win over content, got %q", got)
	}
}
