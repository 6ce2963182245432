package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"faceswap-go/internal/faces"
)

// emap is the 512x512 projection the inswapper generator uses to map
// ArcFace embeddings into its latent space.
type emap [512][512]float32

// loadEmap reads the projection matrix from its little-endian float32
// binary dump.
func loadEmap(path string) (*emap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emap file: %w", err)
	}

	expectedSize := 512 * 512 * 4
	if len(data) != expectedSize {
		return nil, fmt.Errorf("emap file size mismatch: expected %d, got %d", expectedSize, len(data))
	}

	var e emap
	for i := 0; i < 512; i++ {
		for j := 0; j < 512; j++ {
			offset := (i*512 + j) * 4
			bits := binary.LittleEndian.Uint32(data[offset : offset+4])
			e[i][j] = math.Float32frombits(bits)
		}
	}

	return &e, nil
}

// project maps an embedding into the generator's latent space:
// latent = normalize(embedding @ emap).
func (e *emap) project(embedding *faces.Embedding) *faces.Embedding {
	var latent faces.Embedding

	for j := 0; j < 512; j++ {
		var sum float32
		for i := 0; i < 512; i++ {
			sum += embedding[i] * e[i][j]
		}
		latent[j] = sum
	}

	var norm float64
	for _, v := range latent {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)

	if norm < 1e-10 {
		norm = 1
	}

	for i := range latent {
		latent[i] = latent[i] / float32(norm)
	}

	return &latent
}
