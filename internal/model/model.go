// Package model owns the pretrained face-swap artifacts: it loads them
// once per process and exposes the swap capability to the orchestrator.
package model

import (
	"gocv.io/x/gocv"

	"faceswap-go/internal/config"
	"faceswap-go/internal/core/swap"
	"faceswap-go/internal/faces"
	"faceswap-go/internal/inference"
)

// SwapModel is the process-wide, read-only handle to the loaded
// pipeline: detector + encoder (the locator), the inswapper generator,
// its latent projection, and the paste-back blender. It is shared by
// all in-flight requests and never mutated after load; per-model
// inference calls are serialized inside inference.Session.
type SwapModel struct {
	locator   *faces.Locator
	generator *generator
	emap      *emap
	blender   *blender
}

// load builds a SwapModel from the configured artifacts. Every failure
// is reported as a ModelLoadError carrying the path of the artifact
// that is missing or corrupt.
func load(cfg config.ModelConfig) (*SwapModel, error) {
	if err := inference.Initialize(cfg.RuntimeLib); err != nil {
		return nil, &swap.ModelLoadError{Path: cfg.RuntimeLib, Err: err}
	}

	locator, err := faces.NewLocator(faces.Config{
		DetectorPath:  cfg.DetectorPath,
		EncoderPath:   cfg.EncoderPath,
		DetectionSize: cfg.DetectionSize,
		ConfThreshold: float32(cfg.ConfThreshold),
		NMSThreshold:  float32(cfg.NMSThreshold),
	})
	if err != nil {
		return nil, &swap.ModelLoadError{Path: cfg.DetectorPath, Err: err}
	}

	gen, err := newGenerator(cfg.SwapperPath)
	if err != nil {
		locator.Close()
		return nil, &swap.ModelLoadError{Path: cfg.SwapperPath, Err: err}
	}

	em, err := loadEmap(cfg.EmapPath)
	if err != nil {
		locator.Close()
		gen.close()
		return nil, &swap.ModelLoadError{Path: cfg.EmapPath, Err: err}
	}

	return &SwapModel{
		locator:   locator,
		generator: gen,
		emap:      em,
		blender:   newBlender(cfg.BlurSize),
	}, nil
}

// Locator returns the face locator backed by this model's detection
// and embedding sessions.
func (m *SwapModel) Locator() *faces.Locator {
	return m.locator
}

// Apply renders srcFace's identity onto dstFace within dst and returns
// the composite as a new Mat owned by the caller. dst itself is not
// modified.
func (m *SwapModel) Apply(dst gocv.Mat, dstFace, srcFace faces.Descriptor) (gocv.Mat, error) {
	aligned := m.locator.Aligner().AlignForSwap(dst, dstFace.Landmarks)
	defer aligned.Close()

	latent := m.emap.project(&srcFace.Embedding)

	swapped, err := m.generator.generate(aligned.Crop, latent)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer swapped.Close()

	out := dst.Clone()
	m.blender.paste(swapped, &out, aligned.Transform, dstFace.Landmarks)

	return out, nil
}

// Close releases all model resources. Only called on shutdown; the
// handle lives for the process lifetime otherwise.
func (m *SwapModel) Close() error {
	firstErr := m.locator.Close()
	if err := m.generator.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := inference.Shutdown(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var _ swap.Swapper = (*SwapModel)(nil)
