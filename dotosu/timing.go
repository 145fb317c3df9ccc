package dotosu

import (
	"cmp"
	"math"
	"slices"
	"sort"
	"strings"
)

// DefaultBeatLength applies when a chart has no uninherited control point.
const DefaultBeatLength = 1000.0

type ControlPointKind uint8

const (
	Uninherited ControlPointKind = iota
	Inherited
)

func (k ControlPointKind) String() string {
	if k == Inherited {
		return "inherited"
	}
	return "uninherited"
}

// ControlPoint is one line of [TimingPoints]. The sign of the raw beat
// length decides the kind: positive values set the tempo (Uninherited),
// zero or negative values scale slider velocity by -100/beatLength
// (Inherited) and borrow the tempo of the preceding uninherited point.
type ControlPoint struct {
	Time int
	Kind ControlPointKind
	// BeatLength is the raw second column: milliseconds per beat for
	// uninherited points, the negative inverse velocity for inherited ones.
	BeatLength float64
	// VelocityMultiplier is 1 for uninherited points.
	VelocityMultiplier float64
	Meter              int
	SampleSet          SampleSet
	SampleIndex        int
	Volume             int
	Kiai               bool
	OmitFirstBarLine   bool
	// DeclaredUninherited is the seventh column as written; Kind does not depend on it.
	DeclaredUninherited bool
}

// BPM is only meaningful for uninherited points.
func (c ControlPoint) BPM() float64 { return 60000 / c.BeatLength }

// ControlPoints is a time-sorted list of control points, ties in file order.
type ControlPoints struct {
	Points []ControlPoint
	// timing indexes Points at the uninherited entries.
	timing []int
}

// NewControlPoints sorts points by time, keeping file order on ties.
func NewControlPoints(points []ControlPoint) ControlPoints {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b ControlPoint) int { return cmp.Compare(a.Time, b.Time) })
	cps := ControlPoints{Points: sorted}
	for i, p := range sorted {
		if p.Kind == Uninherited {
			cps.timing = append(cps.timing, i)
		}
	}
	return cps
}

func (c ControlPoints) Len() int { return len(c.Points) }

// latest returns the index of the last point with Time <= t, or -1.
func (c ControlPoints) latest(t float64) int {
	return sort.Search(len(c.Points), func(i int) bool { return float64(c.Points[i].Time) > t }) - 1
}

// TimingAt returns the uninherited point in effect at t. Before the first
// uninherited point that first point applies; ok is false when the chart
// has none.
func (c ControlPoints) TimingAt(t float64) (cp ControlPoint, ok bool) {
	if len(c.timing) == 0 {
		return ControlPoint{}, false
	}
	j := sort.Search(len(c.timing), func(j int) bool { return float64(c.Points[c.timing[j]].Time) > t }) - 1
	if j < 0 {
		j = 0
	}
	return c.Points[c.timing[j]], true
}

// VelocityAt is the multiplier of the latest point at or before t, 1 when
// no point precedes t.
func (c ControlPoints) VelocityAt(t float64) float64 {
	i := c.latest(t)
	if i < 0 {
		return 1
	}
	return c.Points[i].VelocityMultiplier
}

// BeatLengthAt is the beat duration of the uninherited point in effect at t.
func (c ControlPoints) BeatLengthAt(t float64) float64 {
	cp, ok := c.TimingAt(t)
	if !ok {
		return DefaultBeatLength
	}
	return cp.BeatLength
}

func (c ControlPoints) BPMAt(t float64) float64 { return 60000 / c.BeatLengthAt(t) }

func (c ControlPoints) KiaiAt(t float64) bool {
	i := c.latest(t)
	return i >= 0 && c.Points[i].Kiai
}

// BPMRange returns the lowest and highest BPM of the uninherited points.
func (c ControlPoints) BPMRange() (lo, hi float64) {
	if len(c.timing) == 0 {
		bpm := 60000 / DefaultBeatLength
		return bpm, bpm
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, i := range c.timing {
		bpm := c.Points[i].BPM()
		lo, hi = min(lo, bpm), max(hi, bpm)
	}
	return lo, hi
}

// Uninherited returns the tempo-setting points in time order.
func (c ControlPoints) Uninherited() []ControlPoint {
	out := make([]ControlPoint, len(c.timing))
	for j, i := range c.timing {
		out[j] = c.Points[i]
	}
	return out
}

func (s *decodeState) readTimingPoints(lines []rawLine) error {
	points := make([]ControlPoint, 0, len(lines))
	for _, l := range lines {
		parts := strings.Split(l.Text, ",")
		if len(parts) < 2 {
			s.warn(l, "timing point needs at least time and beat length, skipped")
			continue
		}
		t, err := parseFloat(parts[0])
		if err != nil {
			return formatErr(l, ErrInvalidNumber, "time %q", parts[0])
		}
		beatLength, err := parseFloatAllowNaN(parts[1])
		if err != nil {
			return formatErr(l, ErrInvalidNumber, "beat length %q", parts[1])
		}

		cp := ControlPoint{
			Time:                int(math.Round(t)) + s.sem.TimeOffset,
			BeatLength:          beatLength,
			VelocityMultiplier:  1,
			Meter:               4,
			Volume:              100,
			DeclaredUninherited: true,
		}
		if beatLength > 0 {
			cp.Kind = Uninherited
		} else {
			cp.Kind = Inherited
			// NaN carries no ratio and keeps the base velocity
			if !math.IsNaN(beatLength) {
				cp.VelocityMultiplier = s.opts.Velocity.clamp(-100 / beatLength)
			}
		}

		optional := func(i int, name string, apply func(string) error) {
			if i >= len(parts) || strings.TrimSpace(parts[i]) == "" {
				return
			}
			if err := apply(parts[i]); err != nil {
				s.warn(l, "%s %q: %v, keeping default", name, parts[i], err)
			}
		}
		optional(2, "meter", func(v string) error {
			m, err := parseInt(v)
			if err != nil {
				return err
			}
			if m > 0 {
				cp.Meter = m
			}
			return nil
		})
		optional(3, "sample set", func(v string) error {
			set, err := parseSampleSetID(v)
			cp.SampleSet = set
			return err
		})
		optional(4, "sample index", func(v string) error {
			n, err := parseInt(v)
			if err == nil {
				cp.SampleIndex = n
			}
			return err
		})
		optional(5, "volume", func(v string) error {
			n, err := parseInt(v)
			if err == nil {
				cp.Volume = clamp(n, 0, 100)
			}
			return err
		})
		optional(6, "uninherited", func(v string) error {
			n, err := parseInt(v)
			if err == nil {
				cp.DeclaredUninherited = n != 0
			}
			return err
		})
		optional(7, "effects", func(v string) error {
			e, err := parseInt(v)
			if err == nil {
				cp.Kiai = e&1 != 0
				cp.OmitFirstBarLine = e&8 != 0
			}
			return err
		})

		if cp.DeclaredUninherited != (cp.Kind == Uninherited) {
			s.debug(l, "uninherited column disagrees with beat length sign")
		}
		points = append(points, cp)
	}
	s.b.ControlPoints = NewControlPoints(points)
	return nil
}

func parseSampleSetID(v string) (SampleSet, error) {
	n, err := parseInt(v)
	if err != nil {
		return SampleNone, err
	}
	if n < 0 || n > int(SampleDrum) {
		return SampleNone, nil
	}
	return SampleSet(n), nil
}
