package faces

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Config tunes the locator's detection stage.
type Config struct {
	DetectorPath  string
	EncoderPath   string
	DetectionSize int
	ConfThreshold float32
	NMSThreshold  float32
}

// Locator runs detection and embedding extraction on decoded images.
// Locate is deterministic for a given image and model version, never
// mutates its input, and reports "no face" as an empty slice rather
// than an error.
type Locator struct {
	detector *scrfd
	encoder  *arcFace
	aligner  *Aligner
}

// NewLocator loads the detection and embedding sessions.
func NewLocator(cfg Config) (*Locator, error) {
	det, err := newSCRFD(cfg.DetectorPath, cfg.DetectionSize, cfg.ConfThreshold, cfg.NMSThreshold)
	if err != nil {
		return nil, err
	}

	enc, err := newArcFace(cfg.EncoderPath)
	if err != nil {
		det.close()
		return nil, err
	}

	return &Locator{
		detector: det,
		encoder:  enc,
		aligner:  NewAligner(),
	}, nil
}

// Locate returns the faces found in img, ordered by descending
// detector confidence, each with its identity embedding filled in.
func (l *Locator) Locate(img gocv.Mat) ([]Descriptor, error) {
	dets, err := l.detector.detect(img)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	for i := range dets {
		aligned := l.aligner.AlignForEmbedding(img, dets[i].Landmarks)
		emb, err := l.encoder.extract(aligned.Crop)
		aligned.Close()
		if err != nil {
			return nil, fmt.Errorf("embedding extraction failed for face %d: %w", i, err)
		}
		dets[i].Embedding = emb
	}

	return dets, nil
}

// Aligner exposes the shared alignment templates to the swap model.
func (l *Locator) Aligner() *Aligner {
	return l.aligner
}

// Close releases all locator resources.
func (l *Locator) Close() error {
	var firstErr error
	if err := l.detector.close(); err != nil {
		firstErr = err
	}
	if err := l.encoder.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	l.aligner.Close()
	return firstErr
}
