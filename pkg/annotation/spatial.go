package annotation

import (
	"math"
	"slices"

	flatbush "github.com/bmharper/flatbush-go"
)

// HitTest returns the indices (into r.Annotations) of the annotations whose box contains
// the point (x,y), in the order that they appear in the record.
func (r *Record) HitTest(x, y float64) []int {
	if len(r.Annotations) == 0 {
		return nil
	}

	// The spatial index is integer, so we round boxes outwards, and then do an exact test
	// on the candidates.
	fb := flatbush.NewFlatbush[int32]()
	fb.Reserve(len(r.Annotations))
	for _, a := range r.Annotations {
		x1, x2 := math.Min(a.X, a.X+a.Width), math.Max(a.X, a.X+a.Width)
		y1, y2 := math.Min(a.Y, a.Y+a.Height), math.Max(a.Y, a.Y+a.Height)
		fb.Add(floorInt32(x1), floorInt32(y1), ceilInt32(x2), ceilInt32(y2))
	}
	fb.Finish()

	px := floorInt32(x)
	py := floorInt32(y)
	candidates := fb.Search(px, py, px+1, py+1)
	// Record order is the stacking order that the user sees
	slices.Sort(candidates)

	hits := make([]int, 0, len(candidates))
	for _, i := range candidates {
		if r.Annotations[i].Contains(x, y) {
			hits = append(hits, i)
		}
	}
	return hits
}

func floorInt32(v float64) int32 {
	return clampInt32(math.Floor(v))
}

func ceilInt32(v float64) int32 {
	return clampInt32(math.Ceil(v))
}

func clampInt32(v float64) int32 {
	if v < math.MinInt32+1 {
		return math.MinInt32 + 1
	}
	if v > math.MaxInt32-1 {
		return math.MaxInt32 - 1
	}
	return int32(v)
}
