package video

// Rect describes a video surface size in physical pixels. The origin is
// always zero; this is a size descriptor, not a placement. The zero Rect
// marks a surface in transition between sizes.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the rect has no renderable area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}
