package faces

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// ArcFace reference landmarks for a 112x112 aligned crop. The 128x128
// generator template is the same set scaled by 128/112.
var arcfaceTemplate = []Point{
	{X: 38.2946, Y: 51.6963}, // left eye
	{X: 73.5318, Y: 51.5014}, // right eye
	{X: 56.0252, Y: 71.7366}, // nose
	{X: 41.5493, Y: 92.3655}, // left mouth
	{X: 70.7299, Y: 92.2041}, // right mouth
}

// Aligner warps detected faces onto the fixed landmark templates the
// embedding and swap networks expect.
type Aligner struct {
	embedSize   int
	swapSize    int
	embedDstMat gocv.Mat
	swapDstMat  gocv.Mat
}

// NewAligner creates an aligner with the 112 (embedding) and 128
// (generator) templates precomputed.
func NewAligner() *Aligner {
	embedDstMat := gocv.NewMatWithSize(5, 2, gocv.MatTypeCV32F)
	for i, pt := range arcfaceTemplate {
		embedDstMat.SetFloatAt(i, 0, pt.X)
		embedDstMat.SetFloatAt(i, 1, pt.Y)
	}

	scale := float32(128) / float32(112)
	swapDstMat := gocv.NewMatWithSize(5, 2, gocv.MatTypeCV32F)
	for i, pt := range arcfaceTemplate {
		swapDstMat.SetFloatAt(i, 0, pt.X*scale)
		swapDstMat.SetFloatAt(i, 1, pt.Y*scale)
	}

	return &Aligner{
		embedSize:   112,
		swapSize:    128,
		embedDstMat: embedDstMat,
		swapDstMat:  swapDstMat,
	}
}

// Aligned holds a warped face crop together with the transform that
// produced it. The caller owns both Mats.
type Aligned struct {
	Crop      gocv.Mat // warped face image
	Transform gocv.Mat // 2x3 affine matrix
}

// Close releases the crop and transform.
func (a *Aligned) Close() {
	a.Crop.Close()
	a.Transform.Close()
}

// AlignForEmbedding warps a face to the 112x112 ArcFace template.
func (a *Aligner) AlignForEmbedding(img gocv.Mat, lm Landmarks) *Aligned {
	return a.align(img, lm, a.embedDstMat, a.embedSize)
}

// AlignForSwap warps a face to the 128x128 generator template.
func (a *Aligner) AlignForSwap(img gocv.Mat, lm Landmarks) *Aligned {
	return a.align(img, lm, a.swapDstMat, a.swapSize)
}

func (a *Aligner) align(img gocv.Mat, lm Landmarks, dstPts gocv.Mat, size int) *Aligned {
	srcPts := gocv.NewMatWithSize(5, 2, gocv.MatTypeCV32F)
	defer srcPts.Close()

	for i, pt := range []Point{lm.LeftEye, lm.RightEye, lm.Nose, lm.LeftMouth, lm.RightMouth} {
		srcPts.SetFloatAt(i, 0, pt.X)
		srcPts.SetFloatAt(i, 1, pt.Y)
	}

	transform := estimateSimilarityTransform(srcPts, dstPts)

	crop := gocv.NewMat()
	gocv.WarpAffine(img, &crop, transform, image.Pt(size, size))

	return &Aligned{Crop: crop, Transform: transform}
}

// Close releases aligner resources.
func (a *Aligner) Close() {
	a.embedDstMat.Close()
	a.swapDstMat.Close()
}

// estimateSimilarityTransform computes the least-squares 2D similarity
// transform (rotation, uniform scale, translation) mapping src points
// onto dst points, as a 2x3 CV64F matrix.
func estimateSimilarityTransform(src, dst gocv.Mat) gocv.Mat {
	n := src.Rows()

	var srcCx, srcCy, dstCx, dstCy float32
	for i := 0; i < n; i++ {
		srcCx += src.GetFloatAt(i, 0)
		srcCy += src.GetFloatAt(i, 1)
		dstCx += dst.GetFloatAt(i, 0)
		dstCy += dst.GetFloatAt(i, 1)
	}
	srcCx /= float32(n)
	srcCy /= float32(n)
	dstCx /= float32(n)
	dstCy /= float32(n)

	var srcNorm, dstNorm float64
	srcCentered := make([]float32, n*2)
	dstCentered := make([]float32, n*2)

	for i := 0; i < n; i++ {
		srcCentered[i*2] = src.GetFloatAt(i, 0) - srcCx
		srcCentered[i*2+1] = src.GetFloatAt(i, 1) - srcCy
		dstCentered[i*2] = dst.GetFloatAt(i, 0) - dstCx
		dstCentered[i*2+1] = dst.GetFloatAt(i, 1) - dstCy

		srcNorm += float64(srcCentered[i*2]*srcCentered[i*2] + srcCentered[i*2+1]*srcCentered[i*2+1])
		dstNorm += float64(dstCentered[i*2]*dstCentered[i*2] + dstCentered[i*2+1]*dstCentered[i*2+1])
	}

	srcNorm = math.Sqrt(srcNorm)
	dstNorm = math.Sqrt(dstNorm)

	var a11, a12, a21, a22 float64
	for i := 0; i < n; i++ {
		sx := float64(srcCentered[i*2])
		sy := float64(srcCentered[i*2+1])
		dx := float64(dstCentered[i*2])
		dy := float64(dstCentered[i*2+1])

		a11 += sx * dx
		a12 += sx * dy
		a21 += sy * dx
		a22 += sy * dy
	}

	// cos(theta) is proportional to a11+a22, sin(theta) to a12-a21
	norm := math.Sqrt((a11+a22)*(a11+a22) + (a12-a21)*(a12-a21))
	if norm < 1e-10 {
		norm = 1
	}

	cosTheta := (a11 + a22) / norm
	sinTheta := (a12 - a21) / norm

	scale := 1.0
	if srcNorm > 1e-10 {
		scale = dstNorm / srcNorm
	}

	transform := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	transform.SetDoubleAt(0, 0, scale*cosTheta)
	transform.SetDoubleAt(0, 1, -scale*sinTheta)
	transform.SetDoubleAt(1, 0, scale*sinTheta)
	transform.SetDoubleAt(1, 1, scale*cosTheta)

	tx := float64(dstCx) - scale*(cosTheta*float64(srcCx)-sinTheta*float64(srcCy))
	ty := float64(dstCy) - scale*(sinTheta*float64(srcCx)+cosTheta*float64(srcCy))
	transform.SetDoubleAt(0, 2, tx)
	transform.SetDoubleAt(1, 2, ty)

	return transform
}
