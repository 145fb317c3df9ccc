package dotosu

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Limits is an inclusive range.
type Limits struct{ Min, Max float64 }

func (l Limits) clamp(v float64) float64 { return clamp(v, l.Min, l.Max) }

func (l Limits) contains(v float64) bool { return v >= l.Min && v <= l.Max }

type DifficultyLimits struct {
	HPDrainRate       Limits
	CircleSize        Limits
	OverallDifficulty Limits
	ApproachRate      Limits
	SliderMultiplier  Limits
	SliderTickRate    Limits
	// ManiaKeys replaces CircleSize in mania, where circle size is the key count.
	ManiaKeys Limits
}

const MaxManiaKeyCount = 18

// DefaultVelocityLimits bounds inherited control point multipliers. The raw
// format allows any multiplier; the bounds keep slider geometry and timing
// finite.
var DefaultVelocityLimits = Limits{Min: 0.1, Max: 10}

var DefaultDifficultyLimits = DifficultyLimits{
	HPDrainRate:       Limits{0, 10},
	CircleSize:        Limits{0, 10},
	OverallDifficulty: Limits{0, 10},
	ApproachRate:      Limits{0, 10},
	SliderMultiplier:  Limits{0.4, 3.6},
	SliderTickRate:    Limits{0.5, 8},
	ManiaKeys:         Limits{1, MaxManiaKeyCount},
}

// Options configures a Decoder.
type Options struct {
	Velocity   Limits
	Difficulty DifficultyLimits
	// Logger receives recoverable anomalies; nil discards them.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the limits the decoder uses when none are given.
func DefaultOptions() Options {
	return Options{
		Velocity:   DefaultVelocityLimits,
		Difficulty: DefaultDifficultyLimits,
	}
}

// Decoder turns chart text into a Beatmap. It holds no per-decode state and
// is safe for concurrent use.
type Decoder struct {
	opts Options
}

// NewDecoder builds a Decoder. Zero-valued limits fall back to the defaults.
func NewDecoder(opts Options) *Decoder {
	if opts.Velocity == (Limits{}) {
		opts.Velocity = DefaultVelocityLimits
	}
	if opts.Difficulty == (DifficultyLimits{}) {
		opts.Difficulty = DefaultDifficultyLimits
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		opts.Logger = l
	}
	return &Decoder{opts: opts}
}

var defaultDecoder = NewDecoder(DefaultOptions())

// Decode reads r to the end and decodes it with the default options.
func Decode(r io.Reader) (*Beatmap, error) { return defaultDecoder.Decode(r) }

// DecodeString decodes chart text with the default options.
func DecodeString(text string) (*Beatmap, error) { return defaultDecoder.DecodeString(text) }

// DecodeBytes decodes raw file contents with the default options.
func DecodeBytes(data []byte) (*Beatmap, error) { return defaultDecoder.DecodeBytes(data) }

func (d *Decoder) Decode(r io.Reader) (*Beatmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read beatmap: %w", err)
	}
	return d.DecodeBytes(data)
}

// DecodeBytes normalises the text encoding of data before decoding it.
func (d *Decoder) DecodeBytes(data []byte) (*Beatmap, error) {
	text, err := normaliseText(data)
	if err != nil {
		return nil, err
	}
	return d.DecodeString(text)
}

func (d *Decoder) DecodeString(text string) (*Beatmap, error) {
	c, err := classifyLines(text)
	if err != nil {
		return nil, err
	}
	s := newDecodeState(d.opts, c.version)

	for _, name := range c.order {
		if _, ok := knownSections[strings.ToLower(name)]; !ok {
			s.warn(rawLine{Section: name}, "unknown section ignored")
		}
	}

	s.readGeneral(c.sections[secGeneral])
	s.readEditor(c.sections[secEditor])
	s.readMetadata(c.sections[secMetadata])
	s.readDifficulty(c.sections[secDifficulty])
	s.readEvents(c.sections[secEvents])
	s.readColours(c.sections[secColours])
	if err := s.readTimingPoints(c.sections[secTimingPoints]); err != nil {
		return nil, err
	}
	if err := s.readHitObjects(c.sections[secHitObjects]); err != nil {
		return nil, err
	}

	b := s.b
	if len(b.HitObjects) == 0 {
		return nil, &FormatError{Section: secHitObjects, Err: ErrNoHitObjects}
	}
	palette := len(b.ComboColours)
	if palette == 0 {
		palette = len(DefaultComboColours)
	}
	b.Combo = AssignCombos(b.HitObjects, palette)
	b.Warnings = s.warnings
	return b, nil
}

// decodeState is everything one decode call mutates.
type decodeState struct {
	opts     Options
	log      logrus.FieldLogger
	sem      versionSemantics
	b        *Beatmap
	warnings []Warning
}

func newDecodeState(opts Options, version int) *decodeState {
	return &decodeState{
		opts: opts,
		log:  opts.Logger.WithField("format_version", version),
		sem:  semanticsFor(version),
		b: &Beatmap{
			FormatVersion: version,
			General: General{
				PreviewTime:   -1,
				Countdown:     1,
				SampleSet:     SampleNormal,
				SampleVolume:  100,
				StackLeniency: 0.7,
			},
			Editor: Editor{
				DistanceSpacing: 1,
				BeatDivisor:     4,
				GridSize:        4,
				TimelineZoom:    1,
			},
			Metadata: Metadata{BeatmapSetID: -1},
			Difficulty: Difficulty{
				HPDrainRate:       5,
				CircleSize:        5,
				OverallDifficulty: 5,
				ApproachRate:      5,
				SliderMultiplier:  1.4,
				SliderTickRate:    1,
			},
		},
	}
}

func (s *decodeState) warn(l rawLine, format string, args ...any) {
	w := Warning{Section: l.Section, Line: l.Number, Message: fmt.Sprintf(format, args...)}
	s.warnings = append(s.warnings, w)
	s.log.WithFields(logrus.Fields{"section": w.Section, "line": w.Line}).Warn(w.Message)
}

func (s *decodeState) debug(l rawLine, format string, args ...any) {
	s.log.WithFields(logrus.Fields{"section": l.Section, "line": l.Number}).Debugf(format, args...)
}
