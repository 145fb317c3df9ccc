package dotosu

import (
	"bufio"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func polylineLength(pts []Vec2) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].Dist(pts[i-1])
	}
	return total
}

func assertVec(t *testing.T, want, got Vec2, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
}

func TestLinearPathFitsLength(t *testing.T) {
	t.Parallel()

	cps := []Vec2{{0, 0}, {100, 0}}

	short := NewSliderPath(PathLinear, cps, 50)
	assert.InDelta(t, 50, short.Length(), 1e-9)
	assertVec(t, Vec2{50, 0}, short.PositionAt(1), 1e-9)
	assertVec(t, Vec2{25, 0}, short.PositionAt(0.5), 1e-9)

	long := NewSliderPath(PathLinear, cps, 150)
	assert.InDelta(t, 150, long.Length(), 1e-9)
	assertVec(t, Vec2{150, 0}, long.PositionAt(1), 1e-9)
	assertVec(t, Vec2{150, 0}, long.PositionAt(7), 1e-9)
	assertVec(t, Vec2{0, 0}, long.PositionAt(-1), 1e-9)

	natural := NewSliderPath(PathLinear, cps, 0)
	assert.InDelta(t, 100, natural.Length(), 1e-9)
}

func TestDegeneratePathExtendsAlongX(t *testing.T) {
	t.Parallel()

	p := NewSliderPath(PathLinear, []Vec2{{5, 5}, {5, 5}}, 10)
	assert.InDelta(t, 10, p.Length(), 1e-9)
	assertVec(t, Vec2{15, 5}, p.PositionAt(1), 1e-9)
}

func TestBezierSplitsOnDuplicatePoint(t *testing.T) {
	t.Parallel()

	p := NewSliderPath(PathBezier, []Vec2{{0, 0}, {100, 0}, {100, 0}, {100, 100}}, 0)
	assert.Equal(t, PathBezier, p.Type())
	assert.InDelta(t, 200, p.Length(), 1e-9)

	ends := p.SegmentEnds()
	require.Len(t, ends, 2)
	assert.InDelta(t, 100, ends[0], 1e-9)
	assert.InDelta(t, 200, ends[1], 1e-9)

	// hard corner at the shared point
	assertVec(t, Vec2{1, 0}, p.DirectionAt(0.49), 1e-9)
	assertVec(t, Vec2{0, 1}, p.DirectionAt(0.5), 1e-9)
	assertVec(t, Vec2{100, 0}, p.PositionAt(0.5), 1e-9)
}

func TestBezierFlatteningIsBounded(t *testing.T) {
	t.Parallel()

	pts := approximateBezier([]Vec2{{0, 0}, {1e15, 1e15}, {0, 1e15}})
	assert.LessOrEqual(t, len(pts), maxBezierVertices+1)
	assert.Equal(t, Vec2{0, 0}, pts[0])
	assert.Equal(t, Vec2{0, 1e15}, pts[len(pts)-1])
}

func TestBezierCurveStaysSmooth(t *testing.T) {
	t.Parallel()

	p := NewSliderPath(PathBezier, []Vec2{{0, 0}, {100, 0}, {100, 100}}, 0)
	require.Len(t, p.SegmentEnds(), 1)

	pts := p.Points()
	require.Greater(t, len(pts), 3)
	assertVec(t, Vec2{0, 0}, pts[0], 1e-9)
	assertVec(t, Vec2{100, 100}, pts[len(pts)-1], 1e-9)
	// quadratic midpoint is (p0 + 2 p1 + p2) / 4
	assertVec(t, Vec2{75, 25}, p.PositionAt(0.5), 2)
}

func TestPerfectCircleTakesArcThroughMiddlePoint(t *testing.T) {
	t.Parallel()

	p := NewSliderPath(PathPerfect, []Vec2{{0, 0}, {50, 50}, {100, 0}}, 0)
	assert.Equal(t, PathPerfect, p.Type())
	assert.InDelta(t, math.Pi*50, p.Length(), 0.5)
	assertVec(t, Vec2{50, 50}, p.PositionAt(0.5), 0.5)

	for _, v := range p.Points() {
		assert.InDelta(t, 50, v.Dist(Vec2{50, 0}), 1e-6)
	}
}

func TestPerfectCircleShorterArc(t *testing.T) {
	t.Parallel()

	// a quarter circle around the origin
	r := 100.0
	mid := Vec2{r * math.Cos(math.Pi/4), r * math.Sin(math.Pi/4)}
	p := NewSliderPath(PathPerfect, []Vec2{{r, 0}, mid, {0, r}}, 0)
	assert.InDelta(t, math.Pi*r/2, p.Length(), 0.5)
}

func TestPerfectCircleFallbacks(t *testing.T) {
	t.Parallel()

	collinear := NewSliderPath(PathPerfect, []Vec2{{0, 0}, {50, 0}, {100, 0}}, 0)
	assert.Equal(t, PathLinear, collinear.Type())
	assert.InDelta(t, 100, collinear.Length(), 1e-9)
	assert.Len(t, collinear.Points(), 2)

	// the middle point is ignored even when it lies past the end
	backtrack := NewSliderPath(PathPerfect, []Vec2{{0, 0}, {100, 0}, {50, 0}}, 0)
	assert.Equal(t, PathLinear, backtrack.Type())
	assert.InDelta(t, 50, backtrack.Length(), 1e-9)

	extended := NewSliderPath(PathPerfect, []Vec2{{0, 0}, {100, 0}, {50, 0}}, 150)
	assert.InDelta(t, 150, extended.Length(), 1e-9)
	assertVec(t, Vec2{150, 0}, extended.PositionAt(1), 1e-9)

	four := NewSliderPath(PathPerfect, []Vec2{{0, 0}, {50, 50}, {100, 0}, {150, 50}}, 0)
	assert.Equal(t, PathBezier, four.Type())
}

func TestCatmullThroughCollinearPointsIsStraight(t *testing.T) {
	t.Parallel()

	p := NewSliderPath(PathCatmull, []Vec2{{0, 0}, {100, 0}}, 0)
	assert.Equal(t, PathCatmull, p.Type())
	assert.InDelta(t, 100, p.Length(), 1e-6)
	for _, v := range p.Points() {
		assert.InDelta(t, 0, v.Y, 1e-9)
	}
}

func TestCatmullSplitDependsOnVersion(t *testing.T) {
	t.Parallel()

	cps := []Vec2{{0, 0}, {50, 20}, {100, 0}, {100, 0}, {150, 50}, {200, 0}}
	stable := buildSliderPath(PathCatmull, cps, 0, false)
	lazer := buildSliderPath(PathCatmull, cps, 0, true)

	assert.Len(t, stable.SegmentEnds(), 1)
	assert.Len(t, lazer.SegmentEnds(), 2)
}

func TestPathAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	p := NewSliderPath(PathLinear, []Vec2{{0, 0}, {100, 0}}, 0)
	pts := p.Points()
	pts[0] = Vec2{42, 42}
	ends := p.SegmentEnds()
	ends[0] = -1

	assertVec(t, Vec2{0, 0}, p.Points()[0], 0)
	assert.InDelta(t, 100, p.SegmentEnds()[0], 0)
}

// declaredSliderLengths reads the pixel length column of every slider line.
func declaredSliderLengths(t *testing.T, text string) []float64 {
	t.Helper()
	var out []float64
	inObjects := false
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			inObjects = line == "[HitObjects]"
			continue
		}
		if !inObjects || line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		typ, err := strconv.Atoi(parts[3])
		require.NoError(t, err)
		if typ&int(TypeSlider) == 0 {
			continue
		}
		l, err := strconv.ParseFloat(parts[7], 64)
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

func TestMyLoveSliderPathsMatchDeclaredLength(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(myLove)
	require.NoError(t, err)

	declared := declaredSliderLengths(t, myLove)
	var sliders []*Slider
	for _, h := range b.HitObjects {
		if h.Kind == KindSlider {
			sliders = append(sliders, h.Slider)
		}
	}
	require.Len(t, sliders, len(declared))

	for i, s := range sliders {
		assert.InDelta(t, declared[i], polylineLength(s.Path.Points()), 0.01, "slider %d", i)
		assert.InDelta(t, declared[i], s.PixelLength, 0.01, "slider %d", i)
	}
}

func TestMyLoveBezierCorner(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(myLove)
	require.NoError(t, err)

	var s *Slider
	for _, h := range b.HitObjects {
		if h.Time == 5920 && h.Kind == KindSlider {
			s = h.Slider
		}
	}
	require.NotNil(t, s)
	require.Equal(t, PathBezier, s.PathType)

	ends := s.Path.SegmentEnds()
	require.Len(t, ends, 2)

	l := s.Path.Length()
	before := s.Path.DirectionAt((ends[0] - 0.5) / l)
	after := s.Path.DirectionAt((ends[0] + 0.5) / l)
	assert.Less(t, before.Dot(after), 0.9)
}
