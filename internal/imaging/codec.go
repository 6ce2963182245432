// Package imaging converts between transport bytes and in-memory
// pixel buffers. No implicit resizing and no color-space conversion
// beyond OpenCV's native BGR decode; model-specific conversion
// happens explicitly in the pipeline stages.
package imaging

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrNotAnImage marks payloads that cannot be decoded as an image.
var ErrNotAnImage = errors.New("data is not a decodable image")

// Format is an output encoding.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
)

// ParseFormat maps a user-supplied format name onto a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

func (f Format) fileExt() gocv.FileExt {
	if f == FormatPNG {
		return gocv.PNGFileExt
	}
	return gocv.JPEGFileExt
}

// Codec decodes request payloads into BGR Mats and encodes result Mats
// back to bytes. The zero value is ready to use.
type Codec struct{}

// Decode turns raw bytes into an 8-bit BGR Mat. The caller owns the
// returned Mat and must Close it. Undecodable or empty payloads yield
// ErrNotAnImage.
func (Codec) Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("empty payload: %w", ErrNotAnImage)
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%v: %w", err, ErrNotAnImage)
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), ErrNotAnImage
	}

	return img, nil
}

// Encode serializes a Mat in the given format. It does not fail for
// validly constructed Mats.
func (Codec) Encode(img gocv.Mat, format Format) ([]byte, error) {
	buf, err := gocv.IMEncode(format.fileExt(), img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image as %s: %w", format, err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
