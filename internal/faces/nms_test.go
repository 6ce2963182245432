package faces

import (
	"math"
	"testing"
)

func box(x1, y1, x2, y2 float32) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestSuppressRemovesOverlappingDetections(t *testing.T) {
	dets := []Descriptor{
		{Box: box(0, 0, 100, 100), Score: 0.9},
		{Box: box(5, 5, 105, 105), Score: 0.8}, // heavy overlap with the first
		{Box: box(200, 200, 300, 300), Score: 0.7},
	}

	kept := suppress(dets, 0.4)

	if len(kept) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(kept))
	}
	if kept[0].Score != 0.9 {
		t.Errorf("expected the stronger overlapping box to survive, got score %.2f", kept[0].Score)
	}
	if kept[1].Score != 0.7 {
		t.Errorf("expected the distant box to survive, got score %.2f", kept[1].Score)
	}
}

func TestSuppressOrdersByDescendingScore(t *testing.T) {
	dets := []Descriptor{
		{Box: box(0, 0, 50, 50), Score: 0.3},
		{Box: box(100, 0, 150, 50), Score: 0.9},
		{Box: box(0, 100, 50, 150), Score: 0.6},
	}

	kept := suppress(dets, 0.4)

	if len(kept) != 3 {
		t.Fatalf("expected all 3 disjoint boxes to survive, got %d", len(kept))
	}
	for i := 1; i < len(kept); i++ {
		if kept[i].Score > kept[i-1].Score {
			t.Fatalf("results not ordered by descending score: %.2f before %.2f",
				kept[i-1].Score, kept[i].Score)
		}
	}
}

func TestSuppressEmptyInput(t *testing.T) {
	if kept := suppress(nil, 0.4); len(kept) != 0 {
		t.Fatalf("expected empty result, got %d", len(kept))
	}
}

func TestIoU(t *testing.T) {
	cases := []struct {
		name string
		a, b BoundingBox
		want float32
	}{
		{"identical", box(0, 0, 10, 10), box(0, 0, 10, 10), 1.0},
		{"disjoint", box(0, 0, 10, 10), box(20, 20, 30, 30), 0.0},
		{"half overlap", box(0, 0, 10, 10), box(5, 0, 15, 10), 1.0 / 3.0},
	}

	for _, c := range cases {
		got := iou(c.a, c.b)
		if math.Abs(float64(got-c.want)) > 1e-5 {
			t.Errorf("%s: iou = %f, want %f", c.name, got, c.want)
		}
	}
}
