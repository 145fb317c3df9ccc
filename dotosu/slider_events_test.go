package dotosu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One 200px linear slider with a repeat: 1000 ms per span, a tick every 100px.
const repeatingSlider = "[Difficulty]\nSliderMultiplier: 1\nSliderTickRate: 1\n" +
	"[TimingPoints]\n0,500,4,2,0,100,1,0\n" +
	"[HitObjects]\n0,0,0,2,0,L|200:0,2,200\n"

func TestSliderTiming(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(chart(repeatingSlider))
	require.NoError(t, err)

	s := b.HitObjects[0].Slider
	assert.InDelta(t, 1, s.VelocityMultiplier, 1e-9)
	assert.InDelta(t, 500, s.BeatLength, 1e-9)
	assert.InDelta(t, 0.2, s.Velocity(), 1e-9)
	assert.InDelta(t, 100, s.TickDistance(), 1e-9)
	assert.InDelta(t, 1000, s.SpanDuration, 1e-9)
	assert.InDelta(t, 2000, s.EndTime, 1e-9)
	assert.Len(t, s.EdgeSounds, 3)
	assert.Len(t, s.EdgeSamples, 3)
}

func TestSliderEvents(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(chart(repeatingSlider))
	require.NoError(t, err)

	events := b.HitObjects[0].SliderEvents()
	kinds := make([]SliderEventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	require.Equal(t, []SliderEventKind{
		EventHead, EventTick, EventRepeat, EventTick, EventLegacyLastTick, EventTail,
	}, kinds)

	want := []struct {
		time, progress float64
		span           int
	}{
		{0, 0, 0},
		{500, 0.5, 0},
		{1000, 1, 0},
		{1500, 0.5, 1},
		{1964, 0.036, 1},
		{2000, 0, 1},
	}
	for i, w := range want {
		assert.InDelta(t, w.time, events[i].Time, 1e-9, "event %d", i)
		assert.InDelta(t, w.progress, events[i].PathProgress, 1e-9, "event %d", i)
		assert.Equal(t, w.span, events[i].SpanIndex, "event %d", i)
	}
	assertVec(t, Vec2{200, 0}, events[2].Pos, 1e-9)
	assertVec(t, Vec2{0, 0}, events[5].Pos, 1e-9)
}

func TestSliderEventsAreTimeOrdered(t *testing.T) {
	t.Parallel()

	// 525 ms long with a tick at 500: the legacy tick at 489 comes first
	b, err := DecodeString(chart("[Difficulty]\nSliderMultiplier: 1\nSliderTickRate: 1\n" +
		"[TimingPoints]\n0,500\n" +
		"[HitObjects]\n0,0,0,2,0,L|105:0,1,105\n"))
	require.NoError(t, err)

	events := b.HitObjects[0].SliderEvents()
	require.Len(t, events, 4)
	assert.Equal(t, EventHead, events[0].Kind)
	assert.Equal(t, EventLegacyLastTick, events[1].Kind)
	assert.InDelta(t, 489, events[1].Time, 1e-9)
	assert.Equal(t, EventTick, events[2].Kind)
	assert.InDelta(t, 500, events[2].Time, 1e-9)
	assert.Equal(t, EventTail, events[3].Kind)
	assert.InDelta(t, 525, events[3].Time, 1e-9)
}

func TestSliderEventsShortSlider(t *testing.T) {
	t.Parallel()

	// 50 ms long: no ticks, the legacy tick sits halfway
	b, err := DecodeString(chart("[Difficulty]\nSliderMultiplier: 1\n" +
		"[TimingPoints]\n0,500\n" +
		"[HitObjects]\n0,0,0,2,0,L|10:0,1,10\n"))
	require.NoError(t, err)

	events := b.HitObjects[0].SliderEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventLegacyLastTick, events[1].Kind)
	assert.InDelta(t, 25, events[1].Time, 1e-9)
	assert.InDelta(t, 0.5, events[1].PathProgress, 1e-9)
	assert.InDelta(t, 50, events[2].Time, 1e-9)
}

func TestSliderEventsForOtherKinds(t *testing.T) {
	t.Parallel()

	h := HitObject{Kind: KindCircle}
	assert.Nil(t, h.SliderEvents())
}

func TestStats(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(chart(repeatingSlider))
	require.NoError(t, err)

	st := b.Stats()
	assert.Equal(t, 1, st.Sliders)
	assert.Equal(t, 2, st.SliderTicks)
	// head, two ticks, repeat, tail
	assert.Equal(t, 5, st.MaxCombo)
	assert.InDelta(t, 120, st.MainBPM, 1e-9)
	assert.InDelta(t, 2000, st.DrainTime, 1e-9)
}

func TestStatsMyLove(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(myLove)
	require.NoError(t, err)

	st := b.Stats()
	assert.Equal(t, 132, st.Circles)
	assert.Equal(t, 237, st.Sliders)
	assert.Equal(t, 2, st.Spinners)
	assert.InDelta(t, 128, st.MinBPM, 1e-9)
	assert.InDelta(t, 128, st.MaxBPM, 1e-9)
	assert.InDelta(t, 128, st.MainBPM, 1e-9)
	assert.InDelta(t, 2170, st.FirstObject, 1e-9)
	assert.InDelta(t, 227170, st.LastObject, 1e-9)

	breaks := (83770 - 69870) + (158770 - 152170)
	assert.InDelta(t, 227170-2170-breaks, st.DrainTime, 1e-9)
	assert.Greater(t, st.MaxCombo, 371)
}
