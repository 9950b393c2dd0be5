package geom

// Tag is a display-only colour hint carried by a segment.
// It never affects intersection results.
type Tag uint8

const (
	TagClear Tag = iota
	TagBlocked
)

// Segment is a line segment between two world positions.
type Segment struct {
	Start Vec
	End   Vec
	Tag   Tag
}

// Seg is a convenience constructor for Segment.
func Seg(start, end Vec) Segment {
	return Segment{Start: start, End: end}
}

// Delta returns End - Start.
func (s Segment) Delta() Vec {
	return s.End.Sub(s.Start)
}

// Len returns the segment length.
func (s Segment) Len() float64 {
	return s.Delta().Len()
}

// Hit describes where two segments cross.
type Hit struct {
	UA    float64 // parameter along the receiver, 0 at Start and 1 at End
	UB    float64 // parameter along the other segment
	Point Vec     // intersection point
	Push  Vec     // -(1-UA) * (End-Start): moves the receiver's End back to Point
}

// Intersect tests s against o using the parametric line formula.
//
// Parallel, coincident and anti-parallel segments have a zero denominator and
// never report a hit; the same holds for zero-length segments.
func (s Segment) Intersect(o Segment) (Hit, bool) {
	d := s.Delta()
	od := o.Delta()

	den := od.Y*d.X - od.X*d.Y
	if den == 0 {
		return Hit{}, false
	}

	numA := od.X*(s.Start.Y-o.Start.Y) - od.Y*(s.Start.X-o.Start.X)
	numB := d.X*(s.Start.Y-o.Start.Y) - d.Y*(s.Start.X-o.Start.X)
	uA := numA / den
	uB := numB / den

	if uA < 0 || uA > 1 || uB < 0 || uB > 1 {
		return Hit{}, false
	}

	return Hit{
		UA:    uA,
		UB:    uB,
		Point: s.Start.Add(d.Scale(uA)),
		Push:  d.Scale(-(1 - uA)),
	}, true
}

// Intersects reports whether s crosses o.
func (s Segment) Intersects(o Segment) bool {
	_, ok := s.Intersect(o)
	return ok
}

// IntersectsRect tests s against the four edges of r (top, right, bottom,
// left). It returns true when any edge is crossed, together with the push-out
// vector of every crossed edge in edge order.
//
// A segment lying entirely inside r crosses no edge and reports false.
func (s Segment) IntersectsRect(r Rect) (bool, []Vec) {
	var pushes []Vec
	for _, e := range r.Edges() {
		if h, ok := s.Intersect(e); ok {
			pushes = append(pushes, h.Push)
		}
	}
	return len(pushes) > 0, pushes
}

// BlockedBy reports whether s crosses any of the rectangles.
func (s Segment) BlockedBy(rects []Rect) bool {
	for _, r := range rects {
		if hit, _ := s.IntersectsRect(r); hit {
			return true
		}
	}
	return false
}
