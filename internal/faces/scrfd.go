package faces

import (
	"fmt"
	"image"
	"math"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"faceswap-go/internal/inference"
)

// scrfd runs the SCRFD face detection network. It emits raw detections
// (box, five landmarks, score); embeddings are filled in by the
// locator afterwards.
type scrfd struct {
	session        *inference.Session
	inputSize      int
	confThreshold  float32
	nmsThreshold   float32
	featureStrides []int
	numAnchors     int
}

func newSCRFD(modelPath string, inputSize int, confThreshold, nmsThreshold float32) (*scrfd, error) {
	// SCRFD has 1 input and 9 outputs (3 strides x score/bbox/kps)
	inputNames := []string{"input.1"}
	outputNames := []string{
		"score_8", "score_16", "score_32",
		"bbox_8", "bbox_16", "bbox_32",
		"kps_8", "kps_16", "kps_32",
	}

	session, err := inference.NewSession(modelPath, inputNames, outputNames)
	if err != nil {
		return nil, fmt.Errorf("failed to create SCRFD session: %w", err)
	}

	return &scrfd{
		session:        session,
		inputSize:      inputSize,
		confThreshold:  confThreshold,
		nmsThreshold:   nmsThreshold,
		featureStrides: []int{8, 16, 32},
		numAnchors:     2,
	}, nil
}

// detect finds faces in a BGR image. The input Mat is not modified.
func (s *scrfd) detect(img gocv.Mat) ([]Descriptor, error) {
	origHeight := img.Rows()
	origWidth := img.Cols()

	inputBlob, scale := s.preprocess(img)
	defer inputBlob.Close()

	floatData := floatsFromBytes(inputBlob.ToBytes())

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(s.inputSize), int64(s.inputSize)),
		floatData,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := make([]ort.Value, 9)
	outputTensors := make([]*ort.Tensor[float32], 9)

	for i, stride := range s.featureStrides {
		fm := s.inputSize / stride
		numAnchors := int64(fm * fm * s.numAnchors)

		scoreTensor, err := inference.CreateEmptyTensor[float32]([]int64{numAnchors, 1})
		if err != nil {
			return nil, fmt.Errorf("failed to create score tensor: %w", err)
		}
		outputs[i] = scoreTensor
		outputTensors[i] = scoreTensor

		bboxTensor, err := inference.CreateEmptyTensor[float32]([]int64{numAnchors, 4})
		if err != nil {
			return nil, fmt.Errorf("failed to create bbox tensor: %w", err)
		}
		outputs[i+3] = bboxTensor
		outputTensors[i+3] = bboxTensor

		kpsTensor, err := inference.CreateEmptyTensor[float32]([]int64{numAnchors, 10})
		if err != nil {
			return nil, fmt.Errorf("failed to create keypoint tensor: %w", err)
		}
		outputs[i+6] = kpsTensor
		outputTensors[i+6] = kpsTensor
	}
	defer func() {
		for _, t := range outputTensors {
			if t != nil {
				t.Destroy()
			}
		}
	}()

	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("detector inference failed: %w", err)
	}

	dets := s.postprocess(outputTensors, scale, origWidth, origHeight)

	return suppress(dets, s.nmsThreshold), nil
}

// preprocess letterboxes the image into the detector's square input
// and normalizes pixels to (x - 127.5) / 128.
func (s *scrfd) preprocess(img gocv.Mat) (gocv.Mat, float32) {
	height := img.Rows()
	width := img.Cols()

	longest := width
	if height > longest {
		longest = height
	}
	scale := float32(s.inputSize) / float32(longest)

	newWidth := int(float32(width) * scale)
	newHeight := int(float32(height) * scale)

	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Pt(newWidth, newHeight), 0, 0, gocv.InterpolationLinear)

	padded := gocv.NewMatWithSize(s.inputSize, s.inputSize, gocv.MatTypeCV8UC3)
	padded.SetTo(gocv.NewScalar(0, 0, 0, 0))

	roi := padded.Region(image.Rect(0, 0, newWidth, newHeight))
	resized.CopyTo(&roi)
	roi.Close()
	resized.Close()

	rgb := gocv.NewMat()
	gocv.CvtColor(padded, &rgb, gocv.ColorBGRToRGB)
	padded.Close()

	blob := gocv.NewMat()
	rgb.ConvertTo(&blob, gocv.MatTypeCV32FC3)
	rgb.Close()

	gocv.AddWeighted(blob, 1.0/128.0, blob, 0, -127.5/128.0, &blob)

	// HWC to NCHW
	blobNCHW := gocv.BlobFromImage(blob, 1.0, image.Pt(s.inputSize, s.inputSize),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	blob.Close()

	return blobNCHW, scale
}

// postprocess decodes anchor-relative outputs into image-space
// detections.
func (s *scrfd) postprocess(outputs []*ort.Tensor[float32], scale float32, origWidth, origHeight int) []Descriptor {
	var dets []Descriptor

	for level, stride := range s.featureStrides {
		fm := s.inputSize / stride

		scoreData := outputs[level].GetData()
		bboxData := outputs[level+3].GetData()
		kpsData := outputs[level+6].GetData()

		anchorIdx := 0
		for y := 0; y < fm; y++ {
			for x := 0; x < fm; x++ {
				for a := 0; a < s.numAnchors; a++ {
					score := sigmoid(scoreData[anchorIdx])

					if score > s.confThreshold {
						cx := (float32(x) + 0.5) * float32(stride)
						cy := (float32(y) + 0.5) * float32(stride)

						// bbox outputs are distances to the box edges
						bi := anchorIdx * 4
						x1 := clampf((cx-bboxData[bi]*float32(stride))/scale, 0, float32(origWidth))
						y1 := clampf((cy-bboxData[bi+1]*float32(stride))/scale, 0, float32(origHeight))
						x2 := clampf((cx+bboxData[bi+2]*float32(stride))/scale, 0, float32(origWidth))
						y2 := clampf((cy+bboxData[bi+3]*float32(stride))/scale, 0, float32(origHeight))

						ki := anchorIdx * 10
						kp := func(n int) Point {
							return Point{
								X: (cx + kpsData[ki+n*2]*float32(stride)) / scale,
								Y: (cy + kpsData[ki+n*2+1]*float32(stride)) / scale,
							}
						}

						dets = append(dets, Descriptor{
							Box: BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
							Landmarks: Landmarks{
								LeftEye:    kp(0),
								RightEye:   kp(1),
								Nose:       kp(2),
								LeftMouth:  kp(3),
								RightMouth: kp(4),
							},
							Score: score,
						})
					}
					anchorIdx++
				}
			}
		}
	}

	return dets
}

func (s *scrfd) close() error {
	return s.session.Destroy()
}

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
