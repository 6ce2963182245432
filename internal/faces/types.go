// Package faces locates faces in decoded images and describes them in
// the form the swap model consumes: bounding box, five landmark points
// and a 512-dim identity embedding.
package faces

// Point is a 2D image coordinate.
type Point struct {
	X, Y float32
}

// BoundingBox is an axis-aligned face region.
type BoundingBox struct {
	X1, Y1 float32 // top-left
	X2, Y2 float32 // bottom-right
}

// Width returns the box width.
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the box height.
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Area returns the box area.
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// Landmarks are the five facial points the alignment templates use.
type Landmarks struct {
	LeftEye    Point
	RightEye   Point
	Nose       Point
	LeftMouth  Point
	RightMouth Point
}

// Embedding is an L2-normalized 512-dim ArcFace identity vector.
type Embedding [512]float32

// Descriptor is one detected face. It is immutable once produced and
// must not outlive the image it was extracted from; the request that
// decoded the image owns both.
type Descriptor struct {
	Box       BoundingBox
	Landmarks Landmarks
	Embedding Embedding
	Score     float32 // detector confidence
}
