package dotosu

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fieldSetter stores one attribute value. A returned error leaves the
// default in place.
type fieldSetter func(s *decodeState, v string) error

func (s *decodeState) readKeyValues(lines []rawLine, fields map[string]fieldSetter) {
	for _, l := range lines {
		k, v, ok := splitKeyVal(l.Text)
		if !ok {
			s.warn(l, "expected \"Key: Value\", got %q", l.Text)
			continue
		}
		set, known := fields[strings.ToLower(k)]
		if !known {
			s.debug(l, "unknown key %q ignored", k)
			continue
		}
		if err := set(s, v); err != nil {
			s.warn(l, "%s: %v, keeping default", k, err)
		}
	}
}

var generalFields = map[string]fieldSetter{
	"audiofilename": func(s *decodeState, v string) error {
		s.b.General.AudioFilename = standardisePath(v)
		return nil
	},
	"audioleadin": intField(func(b *Beatmap) *int { return &b.General.AudioLeadIn }),
	"previewtime": func(s *decodeState, v string) error {
		t, err := parseInt(v)
		if err != nil {
			return err
		}
		if t != -1 {
			t += s.sem.TimeOffset
		}
		s.b.General.PreviewTime = t
		return nil
	},
	"countdown":       intField(func(b *Beatmap) *int { return &b.General.Countdown }),
	"countdownoffset": intField(func(b *Beatmap) *int { return &b.General.CountdownOffset }),
	"sampleset": func(s *decodeState, v string) error {
		set, err := parseSampleSetName(v)
		if err != nil {
			return err
		}
		s.b.General.SampleSet = set
		return nil
	},
	"samplevolume":  intField(func(b *Beatmap) *int { return &b.General.SampleVolume }),
	"stackleniency": floatField(func(b *Beatmap) *float64 { return &b.General.StackLeniency }),
	"mode": func(s *decodeState, v string) error {
		m, err := parseInt(v)
		if err != nil {
			return err
		}
		if m < int(ModeOsu) || m > int(ModeMania) {
			return fmt.Errorf("unknown mode %d", m)
		}
		s.b.General.Mode = Mode(m)
		return nil
	},
	"letterboxinbreaks":        boolField(func(b *Beatmap) *bool { return &b.General.LetterboxInBreaks }),
	"specialstyle":             boolField(func(b *Beatmap) *bool { return &b.General.SpecialStyle }),
	"widescreenstoryboard":     boolField(func(b *Beatmap) *bool { return &b.General.WidescreenStoryboard }),
	"epilepsywarning":          boolField(func(b *Beatmap) *bool { return &b.General.EpilepsyWarning }),
	"samplesmatchplaybackrate": boolField(func(b *Beatmap) *bool { return &b.General.SamplesMatchPlaybackRate }),
}

var editorFields = map[string]fieldSetter{
	"bookmarks": func(s *decodeState, v string) error {
		var marks []int
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			t, err := parseInt(p)
			if err != nil {
				return err
			}
			marks = append(marks, t)
		}
		s.b.Editor.Bookmarks = marks
		return nil
	},
	"distancespacing": floatField(func(b *Beatmap) *float64 { return &b.Editor.DistanceSpacing }),
	"beatdivisor": func(s *decodeState, v string) error {
		d, err := parseInt(v)
		if err != nil {
			return err
		}
		s.b.Editor.BeatDivisor = clamp(d, 1, 16)
		return nil
	},
	"gridsize": intField(func(b *Beatmap) *int { return &b.Editor.GridSize }),
	"timelinezoom": func(s *decodeState, v string) error {
		z, err := parseFloat(v)
		if err != nil {
			return err
		}
		s.b.Editor.TimelineZoom = math.Max(0, z)
		return nil
	},
}

var metadataFields = map[string]fieldSetter{
	"title":         stringField(func(b *Beatmap) *string { return &b.Metadata.Title }),
	"titleunicode":  stringField(func(b *Beatmap) *string { return &b.Metadata.TitleUnicode }),
	"artist":        stringField(func(b *Beatmap) *string { return &b.Metadata.Artist }),
	"artistunicode": stringField(func(b *Beatmap) *string { return &b.Metadata.ArtistUnicode }),
	"creator":       stringField(func(b *Beatmap) *string { return &b.Metadata.Creator }),
	"version":       stringField(func(b *Beatmap) *string { return &b.Metadata.Version }),
	"source":        stringField(func(b *Beatmap) *string { return &b.Metadata.Source }),
	"tags":          stringField(func(b *Beatmap) *string { return &b.Metadata.Tags }),
	"beatmapid":     intField(func(b *Beatmap) *int { return &b.Metadata.BeatmapID }),
	"beatmapsetid":  intField(func(b *Beatmap) *int { return &b.Metadata.BeatmapSetID }),
}

var difficultyFields = map[string]fieldSetter{
	"hpdrainrate":       floatField(func(b *Beatmap) *float64 { return &b.Difficulty.HPDrainRate }),
	"circlesize":        floatField(func(b *Beatmap) *float64 { return &b.Difficulty.CircleSize }),
	"overalldifficulty": floatField(func(b *Beatmap) *float64 { return &b.Difficulty.OverallDifficulty }),
	"approachrate":      floatField(func(b *Beatmap) *float64 { return &b.Difficulty.ApproachRate }),
	"slidermultiplier":  floatField(func(b *Beatmap) *float64 { return &b.Difficulty.SliderMultiplier }),
	"slidertickrate":    floatField(func(b *Beatmap) *float64 { return &b.Difficulty.SliderTickRate }),
}

func (s *decodeState) readGeneral(lines []rawLine)  { s.readKeyValues(lines, generalFields) }
func (s *decodeState) readEditor(lines []rawLine)   { s.readKeyValues(lines, editorFields) }
func (s *decodeState) readMetadata(lines []rawLine) { s.readKeyValues(lines, metadataFields) }

func (s *decodeState) readDifficulty(lines []rawLine) {
	s.readKeyValues(lines, difficultyFields)

	// Charts older than v8 have no ApproachRate key; AR followed OD.
	hasAR := false
	for _, l := range lines {
		if k, _, ok := splitKeyVal(l.Text); ok && strings.EqualFold(k, "ApproachRate") {
			hasAR = true
		}
	}
	d := &s.b.Difficulty
	if !hasAR {
		d.ApproachRate = d.OverallDifficulty
	}

	lim := s.opts.Difficulty
	csLimits := lim.CircleSize
	if s.b.General.Mode == ModeMania {
		csLimits = lim.ManiaKeys
	}
	section := rawLine{Section: secDifficulty}
	s.clampDifficulty(section, "HPDrainRate", &d.HPDrainRate, lim.HPDrainRate)
	s.clampDifficulty(section, "CircleSize", &d.CircleSize, csLimits)
	s.clampDifficulty(section, "OverallDifficulty", &d.OverallDifficulty, lim.OverallDifficulty)
	s.clampDifficulty(section, "ApproachRate", &d.ApproachRate, lim.ApproachRate)
	s.clampDifficulty(section, "SliderMultiplier", &d.SliderMultiplier, lim.SliderMultiplier)
	s.clampDifficulty(section, "SliderTickRate", &d.SliderTickRate, lim.SliderTickRate)
}

func (s *decodeState) clampDifficulty(l rawLine, name string, v *float64, lim Limits) {
	if lim.contains(*v) {
		return
	}
	clamped := lim.clamp(*v)
	s.warn(l, "%s %v out of range [%v,%v], clamped to %v", name, *v, lim.Min, lim.Max, clamped)
	*v = clamped
}

// ---------- field constructors ----------

func intField(field func(*Beatmap) *int) fieldSetter {
	return func(s *decodeState, v string) error {
		n, err := parseInt(v)
		if err != nil {
			return err
		}
		*field(s.b) = n
		return nil
	}
}

func floatField(field func(*Beatmap) *float64) fieldSetter {
	return func(s *decodeState, v string) error {
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		*field(s.b) = f
		return nil
	}
}

func boolField(field func(*Beatmap) *bool) fieldSetter {
	return func(s *decodeState, v string) error {
		switch strings.TrimSpace(v) {
		case "1":
			*field(s.b) = true
		case "0":
			*field(s.b) = false
		default:
			return fmt.Errorf("expected 0 or 1, got %q", v)
		}
		return nil
	}
}

func stringField(field func(*Beatmap) *string) fieldSetter {
	return func(s *decodeState, v string) error {
		*field(s.b) = v
		return nil
	}
}

// ---------- parsing helpers ----------

var errEmpty = errors.New("empty value")

func splitKeyVal(line string) (key, val string, ok bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return strings.TrimSpace(line), "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	return strconv.Atoi(s)
}

// parseFloat parses a finite decimal with '.' as separator regardless of locale.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func parseFloatAllowNaN(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return parseFloat(s)
}

func parseSampleSetName(v string) (SampleSet, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "normal", "1":
		return SampleNormal, nil
	case "soft", "2":
		return SampleSoft, nil
	case "drum", "3":
		return SampleDrum, nil
	case "none", "0":
		return SampleNone, nil
	default:
		return SampleNone, fmt.Errorf("unknown sample set %q", v)
	}
}

func standardisePath(p string) string {
	p = strings.Trim(p, "\"")
	return strings.ReplaceAll(p, "\\", "/")
}
