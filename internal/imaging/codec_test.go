package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// pngBytes renders a small solid-color PNG for decode tests.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 80, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeValidImage(t *testing.T) {
	var codec Codec

	img, err := codec.Decode(pngBytes(t, 32, 24))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer img.Close()

	if img.Cols() != 32 || img.Rows() != 24 {
		t.Errorf("expected 32x24, got %dx%d", img.Cols(), img.Rows())
	}
}

func TestDecodeGarbageReturnsErrNotAnImage(t *testing.T) {
	var codec Codec

	_, err := codec.Decode([]byte("definitely not an image"))
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}

func TestDecodeEmptyPayloadReturnsErrNotAnImage(t *testing.T) {
	var codec Codec

	_, err := codec.Decode(nil)
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var codec Codec

	img, err := codec.Decode(pngBytes(t, 16, 16))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	defer img.Close()

	for _, format := range []Format{FormatJPEG, FormatPNG} {
		data, err := codec.Encode(img, format)
		if err != nil {
			t.Fatalf("encode as %s failed: %v", format, err)
		}
		if len(data) == 0 {
			t.Fatalf("encode as %s produced empty payload", format)
		}

		decoded, err := codec.Decode(data)
		if err != nil {
			t.Fatalf("re-decode of %s payload failed: %v", format, err)
		}
		if decoded.Cols() != 16 || decoded.Rows() != 16 {
			t.Errorf("%s round trip changed dimensions: %dx%d", format, decoded.Cols(), decoded.Rows())
		}
		decoded.Close()
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJPEG, false},
		{"jpg", FormatJPEG, false},
		{"jpeg", FormatJPEG, false},
		{"png", FormatPNG, false},
		{"webp", "", true},
	}

	for _, c := range cases {
		got, err := ParseFormat(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
