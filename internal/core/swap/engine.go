// Package swap coordinates a single face-swap request:
// decode -> detect -> select -> swap -> encode. Each call is stateless
// apart from the shared model handle; no partial results are cached or
// reused across requests.
package swap

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"faceswap-go/internal/faces"
	"faceswap-go/internal/imaging"
)

// Codec decodes payloads and encodes results.
type Codec interface {
	Decode(data []byte) (gocv.Mat, error)
	Encode(img gocv.Mat, format imaging.Format) ([]byte, error)
}

// Locator finds faces in a decoded image, ordered by descending
// detector confidence. An empty slice means "no face", not an error.
type Locator interface {
	Locate(img gocv.Mat) ([]faces.Descriptor, error)
}

// Swapper renders the source identity onto the destination face. The
// returned Mat is a new image owned by the caller.
type Swapper interface {
	Apply(dst gocv.Mat, dstFace, srcFace faces.Descriptor) (gocv.Mat, error)
}

// Options carries per-request settings.
type Options struct {
	Format imaging.Format // output encoding; empty means JPEG
}

// Timing holds per-stage durations for one request.
type Timing struct {
	Decode time.Duration
	Detect time.Duration
	Swap   time.Duration
	Encode time.Duration
	Total  time.Duration
}

// Result is the outcome of a successful swap. It is owned by the
// engine until returned to the caller.
type Result struct {
	Data       []byte
	Format     imaging.Format
	Width      int
	Height     int
	SourceFace faces.Descriptor
	DestFace   faces.Descriptor
	Timing     Timing
}

// Engine is the swap orchestrator.
type Engine struct {
	codec   Codec
	locator Locator
	swapper Swapper
}

// NewEngine wires the orchestrator. The swapper must be fully
// initialized before the first Swap call.
func NewEngine(codec Codec, locator Locator, swapper Swapper) *Engine {
	return &Engine{
		codec:   codec,
		locator: locator,
		swapper: swapper,
	}
}

// Swap replaces the destination image's face with the source image's
// face and returns the encoded result.
//
// The highest-confidence detection on each image is the authoritative
// face; additional faces are ignored (single best-match swap only).
// The swap model is invoked at most once per request, with validated
// inputs.
func (e *Engine) Swap(ctx context.Context, sourceBytes, destBytes []byte, opts Options) (*Result, error) {
	start := time.Now()
	var timing Timing

	srcImg, err := e.codec.Decode(sourceBytes)
	if err != nil {
		return nil, &InvalidImageError{Role: RoleSource, Err: err}
	}
	defer srcImg.Close()

	dstImg, err := e.codec.Decode(destBytes)
	if err != nil {
		return nil, &InvalidImageError{Role: RoleDestination, Err: err}
	}
	defer dstImg.Close()
	timing.Decode = time.Since(start)

	detectStart := time.Now()
	srcFaces, err := e.locator.Locate(srcImg)
	if err != nil {
		return nil, &SwapExecutionError{Stage: "detect", Err: err}
	}
	if len(srcFaces) == 0 {
		return nil, &NoFaceDetectedError{Role: RoleSource}
	}

	dstFaces, err := e.locator.Locate(dstImg)
	if err != nil {
		return nil, &SwapExecutionError{Stage: "detect", Err: err}
	}
	if len(dstFaces) == 0 {
		return nil, &NoFaceDetectedError{Role: RoleDestination}
	}
	timing.Detect = time.Since(detectStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	swapStart := time.Now()
	out, err := e.swapper.Apply(dstImg, dstFaces[0], srcFaces[0])
	if err != nil {
		return nil, &SwapExecutionError{Stage: "swap", Err: err}
	}
	defer out.Close()
	timing.Swap = time.Since(swapStart)

	format := opts.Format
	if format == "" {
		format = imaging.FormatJPEG
	}

	encodeStart := time.Now()
	data, err := e.codec.Encode(out, format)
	if err != nil {
		return nil, &SwapExecutionError{Stage: "encode", Err: err}
	}
	timing.Encode = time.Since(encodeStart)
	timing.Total = time.Since(start)

	return &Result{
		Data:       data,
		Format:     format,
		Width:      out.Cols(),
		Height:     out.Rows(),
		SourceFace: srcFaces[0],
		DestFace:   dstFaces[0],
		Timing:     timing,
	}, nil
}
