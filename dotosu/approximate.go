package dotosu

import "math"

const (
	bezTolSq       = 0.25 * 0.25 // BEZIER_TOLERANCE^2
	arcTol         = 0.10        // CIRCULAR_ARC_TOLERANCE (sagitta)
	catmullDet     = 50          // samples per Catmull-Rom span
	maxArcVertices = 1000

	maxBezierVertices = 10000 // per segment
)

// --- Bezier (adaptive de Casteljau subdivision) ---

func approximateBezier(cp []Vec2) []Vec2 {
	if len(cp) == 0 {
		return nil
	}
	var out []Vec2
	stack := make([][]Vec2, 0, 32)
	stack = append(stack, cp)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(out) >= maxBezierVertices || bezierFlatEnough(cur) {
			// the first control point of every subdivided piece lies on the curve
			out = append(out, cur[0])
			continue
		}
		// right is pushed first so the left half is emitted first
		l, r := bezierSubdivide(cur)
		stack = append(stack, r, l)
	}
	out = append(out, cp[len(cp)-1])
	return out
}

func bezierFlatEnough(cp []Vec2) bool {
	for i := 1; i < len(cp)-1; i++ {
		d := cp[i-1].Sub(cp[i].Scale(2)).Add(cp[i+1])
		if d.Dot(d) > bezTolSq {
			return false
		}
	}
	return true
}

func bezierSubdivide(cp []Vec2) (left, right []Vec2) {
	n := len(cp)
	mid := make([]Vec2, n)
	copy(mid, cp)
	left = make([]Vec2, n)
	right = make([]Vec2, n)

	for r := 0; r < n; r++ {
		left[r] = mid[0]
		right[n-1-r] = mid[n-1-r]
		for i := 0; i < n-1-r; i++ {
			mid[i] = mid[i].Lerp(mid[i+1], 0.5)
		}
	}
	return left, right
}

// --- Catmull-Rom (uniform) ---

// approximateCatmull samples a uniform Catmull-Rom spline through pts. The
// phantom points before the first and after the last point mirror their
// neighbours, which gives straight end tangents.
func approximateCatmull(pts []Vec2) []Vec2 {
	n := len(pts)
	if n < 2 {
		return append([]Vec2(nil), pts...)
	}
	out := make([]Vec2, 0, (n-1)*catmullDet+1)
	out = append(out, pts[0])
	for i := 0; i < n-1; i++ {
		p1, p2 := pts[i], pts[i+1]
		p0 := p1.Scale(2).Sub(p2)
		if i > 0 {
			p0 = pts[i-1]
		}
		p3 := p2.Scale(2).Sub(p1)
		if i+2 < n {
			p3 = pts[i+2]
		}
		for s := 1; s <= catmullDet; s++ {
			out = append(out, catmullPoint(p0, p1, p2, p3, float64(s)/catmullDet))
		}
	}
	return out
}

func catmullPoint(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	t2 := t * t
	t3 := t2 * t
	return Vec2{
		X: 0.5 * ((2 * p1.X) + (-p0.X+p2.X)*t + (2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 + (-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * ((2 * p1.Y) + (-p0.Y+p2.Y)*t + (2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 + (-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}

// --- Perfect circle ---

// approximateCircularArc follows the shorter arc from p0 to p2 on the circle
// through all three points. ok is false for collinear or coincident points
// and for circles too large to sample; callers fall back to a straight line.
func approximateCircularArc(p0, p1, p2 Vec2) (out []Vec2, ok bool) {
	c, ok := circumcenter(p0, p1, p2)
	if !ok {
		return nil, false
	}
	r := c.Dist(p0)

	a0 := math.Atan2(p0.Y-c.Y, p0.X-c.X)
	a2 := math.Atan2(p2.Y-c.Y, p2.X-c.X)
	delta := wrapAngle(a2 - a0)
	if math.Abs(math.Abs(delta)-math.Pi) < 1e-9 {
		// both halves are equally short; take the one through p1
		delta = math.Pi
		if p1.Sub(p0).Cross(p2.Sub(p1)) < 0 {
			delta = -math.Pi
		}
	}

	steps := 2
	if 2*r > arcTol {
		step := 2 * math.Acos(clamp(1-arcTol/r, -1, 1))
		steps = max(2, int(math.Ceil(math.Abs(delta)/step)))
	}
	if steps >= maxArcVertices {
		return nil, false
	}

	out = make([]Vec2, 0, steps+1)
	out = append(out, p0)
	for i := 1; i < steps; i++ {
		a := a0 + delta*float64(i)/float64(steps)
		out = append(out, Vec2{c.X + math.Cos(a)*r, c.Y + math.Sin(a)*r})
	}
	out = append(out, p2)
	return out, true
}

func circumcenter(a, b, c Vec2) (Vec2, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-6 {
		return Vec2{}, false
	}
	a2 := a.Dot(a)
	b2 := b.Dot(b)
	c2 := c.Dot(c)
	return Vec2{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}

// wrapAngle maps d into (-pi, pi].
func wrapAngle(d float64) float64 {
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}
