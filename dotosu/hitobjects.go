package dotosu

import (
	"cmp"
	"math"
	"math/bits"
	"slices"
	"strings"
)

// MaxSliderRepeats bounds the repeat count so edge arrays stay small.
const MaxSliderRepeats = 9000

// MaxCoordinateValue bounds slider control points on both axes.
const MaxCoordinateValue = 131072

func (s *decodeState) readHitObjects(lines []rawLine) error {
	objects := make([]HitObject, 0, len(lines))
	for _, l := range lines {
		h, err := s.parseHitObject(l)
		if err != nil {
			return err
		}
		objects = append(objects, h)
	}
	// files are time-ordered by convention only
	slices.SortStableFunc(objects, func(a, b HitObject) int { return cmp.Compare(a.Time, b.Time) })
	s.b.HitObjects = objects
	return nil
}

func (s *decodeState) parseHitObject(l rawLine) (HitObject, error) {
	parts := strings.Split(l.Text, ",")
	if len(parts) < 4 {
		return HitObject{}, formatErr(l, ErrInvalidObjectType, "missing type field")
	}
	x, err := parseFloat(parts[0])
	if err != nil {
		return HitObject{}, formatErr(l, ErrInvalidNumber, "x %q", parts[0])
	}
	y, err := parseFloat(parts[1])
	if err != nil {
		return HitObject{}, formatErr(l, ErrInvalidNumber, "y %q", parts[1])
	}
	t, err := parseFloat(parts[2])
	if err != nil {
		return HitObject{}, formatErr(l, ErrInvalidNumber, "time %q", parts[2])
	}
	typ, err := parseInt(parts[3])
	if err != nil {
		return HitObject{}, formatErr(l, ErrInvalidNumber, "type %q", parts[3])
	}
	flags := HitObjectTypeFlags(typ)
	if bits.OnesCount(uint(flags&typeShapeMask)) != 1 {
		return HitObject{}, formatErr(l, ErrInvalidObjectType, "type %d", typ)
	}

	h := HitObject{
		Pos:       Vec2{x, y},
		Time:      int(math.Round(t)) + s.sem.TimeOffset,
		Type:      flags,
		NewCombo:  flags&TypeNewCombo != 0,
		ComboSkip: flags.ComboSkip(),
		Sample:    defaultHitSample,
	}
	if len(parts) > 4 && strings.TrimSpace(parts[4]) != "" {
		if hs, err := parseInt(parts[4]); err != nil {
			s.warn(l, "hit sound %q: %v, using none", parts[4], err)
		} else {
			h.Sound = HitSoundFlags(hs)
		}
	}

	switch {
	case flags&TypeSlider != 0:
		h.Kind = KindSlider
		if len(parts) > 10 {
			h.Sample = s.parseHitSample(l, parts[10])
		}
		err = s.parseSlider(l, &h, parts)
	case flags&TypeSpinner != 0:
		h.Kind = KindSpinner
		if len(parts) > 6 {
			h.Sample = s.parseHitSample(l, parts[6])
		}
		var end int
		end, err = s.parseEndTime(l, h.Time, parts, 5)
		h.Spinner = &Spinner{EndTime: end}
	case flags&TypeHold != 0:
		h.Kind = KindHold
		var end int
		if len(parts) > 5 {
			endStr, sample, _ := strings.Cut(parts[5], ":")
			parts[5] = endStr
			h.Sample = s.parseHitSample(l, sample)
		}
		end, err = s.parseEndTime(l, h.Time, parts, 5)
		h.Hold = &Hold{EndTime: end}
	default:
		h.Kind = KindCircle
		if len(parts) > 5 {
			h.Sample = s.parseHitSample(l, parts[5])
		}
	}
	return h, err
}

func (s *decodeState) parseEndTime(l rawLine, start int, parts []string, i int) (int, error) {
	if i >= len(parts) || strings.TrimSpace(parts[i]) == "" {
		return 0, formatErr(l, ErrInvalidSpinnerDuration, "missing end time")
	}
	end, err := parseFloat(parts[i])
	if err != nil {
		return 0, formatErr(l, ErrInvalidNumber, "end time %q", parts[i])
	}
	e := int(math.Round(end)) + s.sem.TimeOffset
	if e <= start {
		return 0, formatErr(l, ErrInvalidSpinnerDuration, "ends at %d, starts at %d", e, start)
	}
	return e, nil
}

func (s *decodeState) parseSlider(l rawLine, h *HitObject, parts []string) error {
	if len(parts) < 6 {
		return formatErr(l, ErrTooFewControlPoints, "missing curve")
	}
	kind, points, err := s.parseCurve(l, h.Pos, parts[5])
	if err != nil {
		return err
	}
	if len(points) < 2 {
		return formatErr(l, ErrTooFewControlPoints, "%d point(s)", len(points))
	}
	if len(parts) < 7 {
		return formatErr(l, ErrInvalidRepeatCount, "missing repeat count")
	}
	repeats, err := parseInt(parts[6])
	if err != nil || repeats < 1 || repeats > MaxSliderRepeats {
		return formatErr(l, ErrInvalidRepeatCount, "%q", parts[6])
	}
	if kind == PathPerfect && len(points) != 3 {
		s.warn(l, "perfect curve with %d points, using bezier", len(points))
		kind = PathBezier
	}

	length := 0.0
	if len(parts) > 7 {
		if length, err = parseFloat(parts[7]); err != nil || length <= 0 {
			s.warn(l, "pixel length %q unusable, using the curve length", parts[7])
			length = 0
		}
	}

	edges := repeats + 1
	sounds := make([]HitSoundFlags, edges)
	samples := make([]EdgeSampleSet, edges)
	for i := range edges {
		sounds[i] = h.Sound
		samples[i] = EdgeSampleSet{NormalSet: h.Sample.NormalSet, AdditionSet: h.Sample.AdditionSet}
	}
	if len(parts) > 8 && strings.TrimSpace(parts[8]) != "" {
		for i, v := range strings.Split(parts[8], "|") {
			if i >= edges {
				break
			}
			n, err := parseInt(v)
			if err != nil {
				s.warn(l, "edge sound %d %q: %v", i, v, err)
				continue
			}
			sounds[i] = HitSoundFlags(n)
		}
	}
	if len(parts) > 9 && strings.TrimSpace(parts[9]) != "" {
		for i, v := range strings.Split(parts[9], "|") {
			if i >= edges {
				break
			}
			normal, addition, _ := strings.Cut(v, ":")
			ns, err1 := parseSampleSetID(normal)
			as, err2 := parseSampleSetID(addition)
			if err1 != nil || err2 != nil {
				s.warn(l, "edge sample set %d %q malformed", i, v)
				continue
			}
			samples[i] = EdgeSampleSet{NormalSet: ns, AdditionSet: as}
		}
	}

	path := buildSliderPath(kind, points, length, s.sem.SplitCatmullSegments)
	cps := s.b.ControlPoints
	sl := &Slider{
		PathType:           kind,
		ControlPoints:      points,
		Repeats:            repeats,
		PixelLength:        path.Length(),
		EdgeSounds:         sounds,
		EdgeSamples:        samples,
		VelocityMultiplier: cps.VelocityAt(float64(h.Time)) * s.b.Difficulty.SliderMultiplier,
		BeatLength:         cps.BeatLengthAt(float64(h.Time)),
		TickRate:           s.b.Difficulty.SliderTickRate,
		Path:               path,
	}
	sl.SpanDuration = sl.PixelLength / (sl.VelocityMultiplier * 100) * sl.BeatLength
	sl.EndTime = float64(h.Time) + sl.SpanDuration*float64(repeats)
	h.Slider = sl
	return nil
}

// parseCurve reads "T|x:y|x:y..." and prepends head as point 0.
func (s *decodeState) parseCurve(l rawLine, head Vec2, spec string) (PathType, []Vec2, error) {
	tokens := strings.Split(strings.TrimSpace(spec), "|")
	var kind PathType
	switch strings.ToUpper(strings.TrimSpace(tokens[0])) {
	case "L":
		kind = PathLinear
	case "P":
		kind = PathPerfect
	case "B":
		kind = PathBezier
	case "C":
		kind = PathCatmull
	default:
		s.warn(l, "unknown curve type %q, using bezier", tokens[0])
		kind = PathBezier
	}

	points := []Vec2{head}
	for _, tok := range tokens[1:] {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		xs, ys, ok := strings.Cut(tok, ":")
		if !ok {
			return kind, nil, formatErr(l, ErrInvalidControlPoint, "%q", tok)
		}
		x, errX := parseFloat(xs)
		y, errY := parseFloat(ys)
		if errX != nil || errY != nil {
			return kind, nil, formatErr(l, ErrInvalidControlPoint, "%q", tok)
		}
		points = append(points, Vec2{x, y})
	}

	clamped := false
	for i, p := range points {
		c := Vec2{
			clamp(p.X, -MaxCoordinateValue, MaxCoordinateValue),
			clamp(p.Y, -MaxCoordinateValue, MaxCoordinateValue),
		}
		if c != p {
			points[i] = c
			clamped = true
		}
	}
	if clamped {
		s.warn(l, "control points clamped to ±%d", MaxCoordinateValue)
	}
	return kind, points, nil
}

// parseHitSample reads normalSet:additionSet:index:volume:filename. A missing
// normal set is the normal bank; other missing fields keep their zero
// defaults.
func (s *decodeState) parseHitSample(l rawLine, v string) HitSampleSpec {
	spec := defaultHitSample
	v = strings.TrimSpace(v)
	if v == "" {
		return spec
	}
	fields := strings.SplitN(v, ":", 5)
	field := func(i int, name string, apply func(string) error) {
		if i >= len(fields) || strings.TrimSpace(fields[i]) == "" {
			return
		}
		if err := apply(fields[i]); err != nil {
			s.warn(l, "hit sample %s %q: %v", name, fields[i], err)
		}
	}
	field(0, "normal set", func(f string) (err error) {
		spec.NormalSet, err = parseSampleSetID(f)
		return err
	})
	field(1, "addition set", func(f string) (err error) {
		spec.AdditionSet, err = parseSampleSetID(f)
		return err
	})
	field(2, "index", func(f string) error {
		n, err := parseInt(f)
		if err == nil {
			spec.Index = n
		}
		return err
	})
	field(3, "volume", func(f string) error {
		n, err := parseInt(f)
		if err == nil {
			spec.Volume = clamp(n, 0, 100)
		}
		return err
	})
	if len(fields) > 4 {
		spec.Filename = standardisePath(strings.TrimSpace(fields[4]))
	}
	return spec
}
