package video

// unsetDimension marks a pending width or height as not yet observed since
// the last emitted rect. Zero is not usable as the sentinel because the
// engine legitimately reports zero while no video track is selected.
const unsetDimension = -1

// pendingSize accumulates the most recent unmatched width/height pair.
// The engine reports width and height as two independent property events;
// a rect may only be produced once both halves of the same change have
// arrived. Consuming a completed pair resets both halves so a later single
// dimension event cannot re-emit stale data.
type pendingSize struct {
	width  int64
	height int64
}

func newPendingSize() pendingSize {
	return pendingSize{width: unsetDimension, height: unsetDimension}
}

func (p *pendingSize) setWidth(w int64) {
	p.width = w
}

func (p *pendingSize) setHeight(h int64) {
	p.height = h
}

// take returns the completed rect, scaled by the display scale, and resets
// the accumulator. It reports false while either dimension is missing or
// non-positive.
func (p *pendingSize) take(scale float64) (Rect, bool) {
	if p.width <= 0 || p.height <= 0 {
		return Rect{}, false
	}
	rect := Rect{
		Width:  float64(p.width) * scale,
		Height: float64(p.height) * scale,
	}
	p.width = unsetDimension
	p.height = unsetDimension
	return rect, true
}
