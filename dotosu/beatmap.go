package dotosu

// Beatmap is a decoded chart. A Beatmap returned by the decoder is never
// modified afterwards and may be shared between goroutines; callers must
// treat every field, including the slices, as read-only.
type Beatmap struct {
	FormatVersion int
	General       General
	Editor        Editor
	Metadata      Metadata
	Difficulty    Difficulty

	Breaks        []BreakPeriod
	ControlPoints ControlPoints
	HitObjects    []HitObject
	ComboColours  []Colour
	Colours       SkinColours

	// Combo runs parallel to HitObjects.
	Combo []ComboInfo

	Storyboard []string
	Warnings   []Warning
}

type Mode int

const (
	ModeOsu Mode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

func (m Mode) String() string {
	switch m {
	case ModeOsu:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "fruits"
	case ModeMania:
		return "mania"
	default:
		return "unknown"
	}
}

type General struct {
	AudioFilename            string
	AudioLeadIn              int
	PreviewTime              int
	Countdown                int
	CountdownOffset          int
	SampleSet                SampleSet
	SampleVolume             int
	StackLeniency            float64
	Mode                     Mode
	LetterboxInBreaks        bool
	SpecialStyle             bool
	WidescreenStoryboard     bool
	EpilepsyWarning          bool
	SamplesMatchPlaybackRate bool
}

type Editor struct {
	Bookmarks       []int
	DistanceSpacing float64
	BeatDivisor     int
	GridSize        int
	TimelineZoom    float64
}

type Metadata struct {
	Title, TitleUnicode            string
	Artist, ArtistUnicode          string
	Creator, Version, Source, Tags string
	BeatmapID, BeatmapSetID        int
	BackgroundFile, VideoFile      string
}

type Difficulty struct {
	HPDrainRate, CircleSize, OverallDifficulty, ApproachRate float64
	SliderMultiplier, SliderTickRate                         float64
}

type BreakPeriod struct{ Start, End float64 }

func (b BreakPeriod) Duration() float64 { return b.End - b.Start }

// WithMode returns a shallow copy of b assigned to another ruleset. Fixture
// harnesses use it to run one decoded chart under every ruleset; the
// receiver is left untouched.
func (b *Beatmap) WithMode(m Mode) *Beatmap {
	c := *b
	c.General.Mode = m
	return &c
}

// ColourOf resolves the combo colour of the i-th hit object.
func (b *Beatmap) ColourOf(i int) Colour {
	palette := b.ComboColours
	if len(palette) == 0 {
		palette = DefaultComboColours
	}
	return palette[b.Combo[i].ColourIndex%len(palette)]
}

// ---------- hit objects ----------

type ObjectKind uint8

const (
	KindCircle ObjectKind = iota
	KindSlider
	KindSpinner
	KindHold
)

func (k ObjectKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	case KindHold:
		return "hold"
	default:
		return "unknown"
	}
}

type HitSoundFlags uint8

const (
	HitSoundNormal  HitSoundFlags = 1 << iota // 1
	HitSoundWhistle                           // 2
	HitSoundFinish                            // 4
	HitSoundClap                              // 8
)

type SampleSet uint8

const (
	SampleNone SampleSet = iota
	SampleNormal
	SampleSoft
	SampleDrum
)

func (s SampleSet) String() string {
	switch s {
	case SampleNormal:
		return "normal"
	case SampleSoft:
		return "soft"
	case SampleDrum:
		return "drum"
	default:
		return "none"
	}
}

type HitObjectTypeFlags int

const (
	TypeCircle     HitObjectTypeFlags = 1 << iota // 1
	TypeSlider                                    // 2
	TypeNewCombo                                  // 4
	TypeSpinner                                   // 8
	TypeComboSkip1                                // 16
	TypeComboSkip2                                // 32
	TypeComboSkip3                                // 64
	TypeHold       HitObjectTypeFlags = 1 << 7    // 128

	typeShapeMask = TypeCircle | TypeSlider | TypeSpinner | TypeHold
)

// ComboSkip is the number of combo colours to skip, bits 4-6.
func (f HitObjectTypeFlags) ComboSkip() int { return int(f>>4) & 7 }

type HitSampleSpec struct {
	NormalSet   SampleSet // SampleNone only when the line sets 0 explicitly
	AdditionSet SampleSet
	Index       int // custom sample bank, 0 = inherit from the control point
	Volume      int // 0 = inherit from the control point
	Filename    string
}

var defaultHitSample = HitSampleSpec{NormalSet: SampleNormal}

type EdgeSampleSet struct {
	NormalSet   SampleSet
	AdditionSet SampleSet
}

// HitObject is a tagged union. Exactly one of Slider, Spinner and Hold is
// non-nil for the matching Kind; circles carry none.
type HitObject struct {
	Kind      ObjectKind
	Pos       Vec2
	Time      int
	Type      HitObjectTypeFlags
	NewCombo  bool
	ComboSkip int
	Sound     HitSoundFlags
	Sample    HitSampleSpec

	Slider  *Slider
	Spinner *Spinner
	Hold    *Hold
}

// EndTime is the time the object finishes; circles end where they start.
func (h *HitObject) EndTime() float64 {
	switch h.Kind {
	case KindSlider:
		return h.Slider.EndTime
	case KindSpinner:
		return float64(h.Spinner.EndTime)
	case KindHold:
		return float64(h.Hold.EndTime)
	default:
		return float64(h.Time)
	}
}

type Slider struct {
	PathType PathType
	// ControlPoints holds every point in playfield coordinates, the object
	// position first.
	ControlPoints []Vec2
	Repeats       int
	PixelLength   float64
	EdgeSounds    []HitSoundFlags // len == Repeats+1 (head, repeats..., tail)
	EdgeSamples   []EdgeSampleSet // len == Repeats+1

	// VelocityMultiplier is the control point multiplier times the slider multiplier.
	VelocityMultiplier float64
	BeatLength         float64
	TickRate           float64
	SpanDuration       float64
	EndTime            float64

	Path *SliderPath
}

// Velocity is the slider speed in playfield units per millisecond.
func (s *Slider) Velocity() float64 {
	return s.VelocityMultiplier * 100 / s.BeatLength
}

// TickDistance is the playfield distance between two slider ticks.
func (s *Slider) TickDistance() float64 {
	return s.VelocityMultiplier * 100 / s.TickRate
}

type Spinner struct{ EndTime int }

type Hold struct{ EndTime int }
