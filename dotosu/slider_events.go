package dotosu

import (
	"cmp"
	"slices"
)

type SliderEventKind uint8

const (
	EventHead SliderEventKind = iota
	EventTick
	EventRepeat
	// EventLegacyLastTick replaces the tail judgement of stable-era scoring.
	EventLegacyLastTick
	EventTail
)

func (k SliderEventKind) String() string {
	switch k {
	case EventHead:
		return "head"
	case EventTick:
		return "tick"
	case EventRepeat:
		return "repeat"
	case EventLegacyLastTick:
		return "legacy last tick"
	case EventTail:
		return "tail"
	default:
		return "unknown"
	}
}

// LegacyLastTickOffset is how far before the slider end the legacy last tick sits.
const LegacyLastTickOffset = 36.0

// maxTickPathLength caps tick generation on absurdly long sliders.
const maxTickPathLength = 100000.0

type SliderEvent struct {
	Kind      SliderEventKind
	Time      float64
	SpanIndex int
	// PathProgress is the position along the path in [0,1], not along time.
	PathProgress float64
	Pos          Vec2
}

// SliderEvents lists the nested judgements of a slider in time order. It
// returns nil for other kinds.
func (h *HitObject) SliderEvents() []SliderEvent {
	if h.Kind != KindSlider || h.Slider == nil {
		return nil
	}
	s := h.Slider
	start := float64(h.Time)
	spans := s.Repeats
	length := s.Path.Length()

	ev := func(kind SliderEventKind, t float64, span int, progress float64) SliderEvent {
		return SliderEvent{Kind: kind, Time: t, SpanIndex: span, PathProgress: progress, Pos: s.Path.PositionAt(progress)}
	}

	out := make([]SliderEvent, 0, 2+spans)
	out = append(out, ev(EventHead, start, 0, 0))

	tickDistance := s.TickDistance()
	tickLength := min(length, maxTickPathLength)
	tickDistance = clamp(tickDistance, 0, tickLength)
	minFromEnd := s.Velocity() * 10

	for span := range spans {
		spanStart := start + float64(span)*s.SpanDuration
		reversed := span%2 == 1

		if tickDistance > 0 {
			var ticks []SliderEvent
			for d := tickDistance; d <= tickLength; d += tickDistance {
				if d >= tickLength-minFromEnd {
					break
				}
				progress := d / length
				timeProgress := progress
				if reversed {
					timeProgress = 1 - progress
				}
				ticks = append(ticks, ev(EventTick, spanStart+timeProgress*s.SpanDuration, span, progress))
			}
			if reversed {
				slices.Reverse(ticks)
			}
			out = append(out, ticks...)
		}

		if span < spans-1 {
			out = append(out, ev(EventRepeat, spanStart+s.SpanDuration, span, float64((span+1)%2)))
		}
	}

	total := s.SpanDuration * float64(spans)
	finalStart := start + float64(spans-1)*s.SpanDuration
	lastTick := max(start+total/2, finalStart+s.SpanDuration-LegacyLastTickOffset)
	progress := 0.0
	if s.SpanDuration > 0 {
		progress = (lastTick - finalStart) / s.SpanDuration
	}
	if spans%2 == 0 {
		progress = 1 - progress
	}
	out = append(out, ev(EventLegacyLastTick, lastTick, spans-1, progress))
	out = append(out, ev(EventTail, start+total, spans-1, float64(spans%2)))
	// the legacy tick may fall before the last real tick
	slices.SortStableFunc(out, func(a, b SliderEvent) int { return cmp.Compare(a.Time, b.Time) })
	return out
}
