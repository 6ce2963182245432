package model

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"faceswap-go/internal/faces"
)

// blender pastes a swapped crop back onto the destination frame. The
// blend is mask-scoped: pixels outside the feathered face ellipse stay
// untouched, which keeps the destination background intact.
type blender struct {
	blurSize int
}

func newBlender(blurSize int) *blender {
	if blurSize%2 == 0 {
		blurSize++
	}
	return &blender{blurSize: blurSize}
}

// paste inverse-warps the 128x128 swapped crop into frame coordinates
// and alpha-blends it inside a feathered elliptical mask built from
// the destination face landmarks. frame is modified in place.
func (b *blender) paste(swappedCrop gocv.Mat, frame *gocv.Mat, transform gocv.Mat, lm faces.Landmarks) {
	invTransform := gocv.NewMat()
	gocv.InvertAffineTransform(transform, &invTransform)
	defer invTransform.Close()

	frameSize := image.Pt(frame.Cols(), frame.Rows())

	warped := gocv.NewMat()
	gocv.WarpAffine(swappedCrop, &warped, invTransform, frameSize)
	defer warped.Close()

	mask := b.faceMask(frame.Rows(), frame.Cols(), lm)
	defer mask.Close()

	blurredMask := gocv.NewMat()
	gocv.GaussianBlur(mask, &blurredMask, image.Pt(b.blurSize, b.blurSize), 0, 0, gocv.BorderDefault)
	defer blurredMask.Close()

	warped.CopyToWithMask(frame, blurredMask)
}

// faceMask draws a filled ellipse sized from the eye distance, the
// same heuristic footprint insightface's paste-back covers.
func (b *blender) faceMask(height, width int, lm faces.Landmarks) gocv.Mat {
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8U)

	centerX := (lm.LeftEye.X + lm.RightEye.X + lm.Nose.X + lm.LeftMouth.X + lm.RightMouth.X) / 5
	centerY := (lm.LeftEye.Y + lm.RightEye.Y + lm.Nose.Y + lm.LeftMouth.Y + lm.RightMouth.Y) / 5

	eyeDist := lm.RightEye.X - lm.LeftEye.X
	faceWidth := eyeDist * 2.5
	faceHeight := eyeDist * 3.0

	gocv.Ellipse(&mask,
		image.Pt(int(centerX), int(centerY)),
		image.Pt(int(faceWidth/2), int(faceHeight/2)),
		0, 0, 360,
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
		-1,
	)

	return mask
}
