package faces

import "sort"

// suppress performs non-maximum suppression on raw detections. The
// survivors come back ordered by descending score, which is also the
// order Locate promises its callers.
func suppress(dets []Descriptor, iouThreshold float32) []Descriptor {
	if len(dets) == 0 {
		return dets
	}

	sort.Slice(dets, func(i, j int) bool {
		return dets[i].Score > dets[j].Score
	})

	keep := make([]bool, len(dets))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(dets); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(dets); j++ {
			if !keep[j] {
				continue
			}
			if iou(dets[i].Box, dets[j].Box) > iouThreshold {
				keep[j] = false
			}
		}
	}

	result := make([]Descriptor, 0, len(dets))
	for i, d := range dets {
		if keep[i] {
			result = append(result, d)
		}
	}

	return result
}

// iou computes Intersection over Union of two boxes.
func iou(a, b BoundingBox) float32 {
	x1 := max32(a.X1, b.X1)
	y1 := max32(a.Y1, b.Y1)
	x2 := min32(a.X2, b.X2)
	y2 := min32(a.Y2, b.Y2)

	if x1 >= x2 || y1 >= y2 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
