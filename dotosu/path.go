package dotosu

import (
	"sort"
)

type PathType uint8

const (
	PathBezier PathType = iota
	PathLinear
	PathCatmull
	PathPerfect
)

func (p PathType) String() string {
	switch p {
	case PathLinear:
		return "linear"
	case PathCatmull:
		return "catmull"
	case PathPerfect:
		return "perfect"
	default:
		return "bezier"
	}
}

// SliderPath is the flattened curve of a slider, fitted so that it is
// exactly as long as the slider's declared pixel length. It is immutable;
// accessors return copies.
type SliderPath struct {
	kind        PathType
	points      []Vec2
	cumulative  []float64 // cumulative[i] is the arc length at points[i]
	segmentEnds []float64
}

// NewSliderPath flattens the control points (object position first) of a
// slider. A non-positive expectedLength keeps the natural length of the curve.
func NewSliderPath(kind PathType, controlPoints []Vec2, expectedLength float64) *SliderPath {
	return buildSliderPath(kind, controlPoints, expectedLength, false)
}

func buildSliderPath(kind PathType, controlPoints []Vec2, expectedLength float64, splitCatmull bool) *SliderPath {
	if kind == PathPerfect && len(controlPoints) != 3 {
		kind = PathBezier
	}

	p := &SliderPath{kind: kind}
	for _, seg := range pathSegments(kind, controlPoints, splitCatmull) {
		var flat []Vec2
		switch kind {
		case PathLinear:
			flat = seg
		case PathCatmull:
			flat = approximateCatmull(seg)
		case PathPerfect:
			arc, ok := approximateCircularArc(seg[0], seg[1], seg[2])
			if !ok {
				p.kind = PathLinear
				arc = []Vec2{seg[0], seg[2]}
			}
			flat = arc
		default:
			flat = approximateBezier(seg)
		}
		for _, v := range flat {
			p.appendPoint(v)
		}
		p.segmentEnds = append(p.segmentEnds, p.cumulative[len(p.cumulative)-1])
	}
	if len(p.points) == 0 && len(controlPoints) > 0 {
		p.appendPoint(controlPoints[0])
	}
	if expectedLength > 0 {
		p.fitLength(expectedLength)
	}
	return p
}

// pathSegments splits control points into independently flattened runs. A
// point repeated twice in a row ends one Bezier segment and starts the next.
func pathSegments(kind PathType, pts []Vec2, splitCatmull bool) [][]Vec2 {
	split := kind == PathBezier || (kind == PathCatmull && splitCatmull)
	if !split {
		if len(pts) < 2 {
			return nil
		}
		return [][]Vec2{pts}
	}

	var segs [][]Vec2
	cur := []Vec2{pts[0]}
	for _, v := range pts[1:] {
		if v.Equal(cur[len(cur)-1]) {
			if len(cur) >= 2 {
				segs = append(segs, cur)
			}
			cur = []Vec2{v}
			continue
		}
		cur = append(cur, v)
	}
	if len(cur) >= 2 {
		segs = append(segs, cur)
	}
	return segs
}

func (p *SliderPath) appendPoint(v Vec2) {
	n := len(p.points)
	if n > 0 && almostEq(p.points[n-1], v) {
		return
	}
	d := 0.0
	if n > 0 {
		d = p.cumulative[n-1] + p.points[n-1].Dist(v)
	}
	p.points = append(p.points, v)
	p.cumulative = append(p.cumulative, d)
}

// fitLength truncates or extends the polyline to the given arc length.
func (p *SliderPath) fitLength(length float64) {
	natural := p.Length()
	switch {
	case length < natural:
		i := sort.SearchFloat64s(p.cumulative, length)
		prev := p.cumulative[i-1]
		t := (length - prev) / (p.cumulative[i] - prev)
		end := p.points[i-1].Lerp(p.points[i], t)
		p.points = append(p.points[:i], end)
		p.cumulative = append(p.cumulative[:i], length)
	case length > natural:
		dir := Vec2{1, 0}
		for i := len(p.points) - 1; i > 0; i-- {
			if d := p.points[i].Sub(p.points[i-1]); d.Len() > 0 {
				dir = d.Normalize()
				break
			}
		}
		last := p.points[len(p.points)-1]
		p.points = append(p.points, last.Add(dir.Scale(length-natural)))
		p.cumulative = append(p.cumulative, length)
	}

	ends := p.segmentEnds[:0]
	for _, e := range p.segmentEnds {
		if e < length {
			ends = append(ends, e)
		}
	}
	p.segmentEnds = append(ends, length)
}

func (p *SliderPath) Type() PathType { return p.kind }

// Length is the arc length of the fitted path.
func (p *SliderPath) Length() float64 {
	if len(p.cumulative) == 0 {
		return 0
	}
	return p.cumulative[len(p.cumulative)-1]
}

// Points returns the flattened polyline.
func (p *SliderPath) Points() []Vec2 { return append([]Vec2(nil), p.points...) }

// SegmentEnds returns the arc length at which each curve segment ends. The
// last entry equals Length.
func (p *SliderPath) SegmentEnds() []float64 { return append([]float64(nil), p.segmentEnds...) }

// PositionAt maps progress in [0,1] to a playfield position; values outside
// the range are clamped.
func (p *SliderPath) PositionAt(progress float64) Vec2 {
	return p.PositionAtDistance(clamp(progress, 0, 1) * p.Length())
}

// PositionAtDistance returns the point d units along the path.
func (p *SliderPath) PositionAtDistance(d float64) Vec2 {
	if len(p.points) == 0 {
		return Vec2{}
	}
	if len(p.points) == 1 || d <= 0 {
		return p.points[0]
	}
	i := p.indexAt(d)
	if i >= len(p.points) {
		return p.points[len(p.points)-1]
	}
	prev := p.cumulative[i-1]
	span := p.cumulative[i] - prev
	return p.points[i-1].Lerp(p.points[i], (d-prev)/span)
}

// DirectionAt is the unit tangent of the path at progress. At a vertex the
// direction of the following edge is used.
func (p *SliderPath) DirectionAt(progress float64) Vec2 {
	if len(p.points) < 2 {
		return Vec2{}
	}
	d := clamp(progress, 0, 1) * p.Length()
	i := min(p.indexAt(d), len(p.points)-1)
	return p.points[i].Sub(p.points[i-1]).Normalize()
}

// indexAt returns the first vertex past distance d, never 0.
func (p *SliderPath) indexAt(d float64) int {
	i := sort.Search(len(p.cumulative), func(i int) bool { return p.cumulative[i] > d })
	return max(i, 1)
}
