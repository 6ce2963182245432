package model

import (
	"fmt"
	"image"
	"math"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"faceswap-go/internal/faces"
	"faceswap-go/internal/inference"
)

// generator runs the inswapper network: a 128x128 aligned destination
// crop plus a projected source latent in, a 128x128 swapped crop out.
type generator struct {
	session *inference.Session
}

func newGenerator(modelPath string) (*generator, error) {
	inputNames := []string{"target", "source"}
	outputNames := []string{"output"}

	session, err := inference.NewSession(modelPath, inputNames, outputNames)
	if err != nil {
		return nil, fmt.Errorf("failed to create swapper session: %w", err)
	}

	return &generator{session: session}, nil
}

// generate renders the source identity onto the aligned destination
// crop. The returned Mat is owned by the caller.
func (g *generator) generate(alignedCrop gocv.Mat, latent *faces.Embedding) (gocv.Mat, error) {
	if alignedCrop.Rows() != 128 || alignedCrop.Cols() != 128 {
		return gocv.NewMat(), fmt.Errorf("expected 128x128 crop, got %dx%d", alignedCrop.Cols(), alignedCrop.Rows())
	}

	targetData := g.preprocess(alignedCrop)

	targetTensor, err := ort.NewTensor(ort.NewShape(1, 3, 128, 128), targetData)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create target tensor: %w", err)
	}
	defer targetTensor.Destroy()

	sourceTensor, err := ort.NewTensor(ort.NewShape(1, 512), latent[:])
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create source tensor: %w", err)
	}
	defer sourceTensor.Destroy()

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 3, 128, 128})
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	err = g.session.Run(
		[]ort.Value{targetTensor, sourceTensor},
		[]ort.Value{outputTensor},
	)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("swap inference failed: %w", err)
	}

	return g.postprocess(outputTensor.GetData()), nil
}

// preprocess matches the insightface input convention:
// blobFromImage(crop, 1/255, (128,128), (0,0,0), swapRB=true).
func (g *generator) preprocess(img gocv.Mat) []float32 {
	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(128, 128),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	data := blob.ToBytes()
	result := make([]float32, len(data)/4)
	for i := range result {
		bits := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		result[i] = math.Float32frombits(bits)
	}
	return result
}

// postprocess converts NCHW RGB [0,1] output to an 8-bit BGR Mat.
func (g *generator) postprocess(data []float32) gocv.Mat {
	const size = 128
	result := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			rIdx := 0*size*size + y*size + x
			gIdx := 1*size*size + y*size + x
			bIdx := 2*size*size + y*size + x

			result.SetUCharAt(y, x*3+0, clampByte(data[bIdx]*255.0))
			result.SetUCharAt(y, x*3+1, clampByte(data[gIdx]*255.0))
			result.SetUCharAt(y, x*3+2, clampByte(data[rIdx]*255.0))
		}
	}

	return result
}

func (g *generator) close() error {
	return g.session.Destroy()
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
