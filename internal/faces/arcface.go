package faces

import (
	"fmt"
	"image"
	"math"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"faceswap-go/internal/inference"
)

// arcFace extracts identity embeddings from aligned 112x112 crops.
type arcFace struct {
	session *inference.Session
}

func newArcFace(modelPath string) (*arcFace, error) {
	inputNames := []string{"input.1"}
	outputNames := []string{"683"} // output node name in the insightface export

	session, err := inference.NewSession(modelPath, inputNames, outputNames)
	if err != nil {
		return nil, fmt.Errorf("failed to create ArcFace session: %w", err)
	}

	return &arcFace{session: session}, nil
}

// extract computes the L2-normalized embedding of an aligned face.
func (e *arcFace) extract(alignedCrop gocv.Mat) (Embedding, error) {
	var emb Embedding

	if alignedCrop.Rows() != 112 || alignedCrop.Cols() != 112 {
		return emb, fmt.Errorf("expected 112x112 input, got %dx%d", alignedCrop.Cols(), alignedCrop.Rows())
	}

	inputData := e.preprocess(alignedCrop)

	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, 112, 112), inputData)
	if err != nil {
		return emb, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 512})
	if err != nil {
		return emb, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := e.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return emb, fmt.Errorf("embedding inference failed: %w", err)
	}

	return normalizeEmbedding(outputTensor.GetData()), nil
}

func (e *arcFace) preprocess(img gocv.Mat) []float32 {
	rgb := gocv.NewMat()
	gocv.CvtColor(img, &rgb, gocv.ColorBGRToRGB)
	defer rgb.Close()

	floatImg := gocv.NewMat()
	rgb.ConvertTo(&floatImg, gocv.MatTypeCV32FC3)
	defer floatImg.Close()

	blob := gocv.BlobFromImage(floatImg, 1.0/255.0, image.Pt(112, 112),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	return floatsFromBytes(blob.ToBytes())
}

func (e *arcFace) close() error {
	return e.session.Destroy()
}

func normalizeEmbedding(data []float32) Embedding {
	var emb Embedding

	var norm float64
	for _, v := range data[:512] {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)

	if norm < 1e-10 {
		norm = 1
	}

	for i := 0; i < 512; i++ {
		emb[i] = data[i] / float32(norm)
	}

	return emb
}

func floatsFromBytes(data []byte) []float32 {
	result := make([]float32, len(data)/4)
	for i := range result {
		bits := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		result[i] = math.Float32frombits(bits)
	}
	return result
}
