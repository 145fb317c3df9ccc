package dotosu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLines(t *testing.T) {
	t.Parallel()

	c, err := classifyLines("\ufeffosu file format v12\r\n" +
		"[general]\r\n" +
		"Mode: 0\r\n" +
		"// comment\r\n" +
		"\r\n" +
		"[Events]\r" +
		"  F,0,0,1\r" +
		"//Break Periods\n" +
		"[Custom]\n" +
		"x\n")
	require.NoError(t, err)

	assert.Equal(t, 12, c.version)
	assert.Equal(t, []string{"General", "Events", "Custom"}, c.order)
	assert.Equal(t, []rawLine{{"General", 3, "Mode: 0"}}, c.sections[secGeneral])
	assert.Equal(t, []rawLine{
		{"Events", 7, "  F,0,0,1"},
		{"Events", 8, "//Break Periods"},
	}, c.sections[secEvents])
	assert.Len(t, c.sections["Custom"], 1)
}

func TestSemanticsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version      int
		offset       int
		splitCatmull bool
	}{
		{0, EarlyVersionTimingOffset, false},
		{4, EarlyVersionTimingOffset, false},
		{5, 0, false},
		{LatestVersion, 0, false},
		{FirstLazerVersion, 0, true},
		{1000, 0, true},
	}
	for _, tt := range tests {
		sem := semanticsFor(tt.version)
		assert.Equal(t, tt.offset, sem.TimeOffset, "v%d", tt.version)
		assert.Equal(t, tt.splitCatmull, sem.SplitCatmullSegments, "v%d", tt.version)
	}
}

func TestReadColours(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(chart("[Colours]\n" +
		"Combo2 : 0,0,255\n" +
		"Combo1 : 255,0,0\n" +
		"Combo3 : 0,255\n" +
		"Combo4 : 10,20,300\n" +
		"SliderBorder : 1,2,3,128\n" +
		"SliderTrackOverride: 4,5,6\n" +
		oneCircle))
	require.NoError(t, err)

	assert.Equal(t, []Colour{{255, 0, 0, 255}, {0, 0, 255, 255}}, b.ComboColours)
	require.NotNil(t, b.Colours.SliderBorder)
	assert.Equal(t, Colour{1, 2, 3, 128}, *b.Colours.SliderBorder)
	assert.Equal(t, "#01020380", b.Colours.SliderBorder.Hex())
	require.NotNil(t, b.Colours.SliderTrackOverride)
	assert.Equal(t, Colour{4, 5, 6, 255}, *b.Colours.SliderTrackOverride)
	assert.Len(t, b.Warnings, 2)

	// explicit palette drives combo colours
	assert.Equal(t, Colour{255, 0, 0, 255}, b.ColourOf(0))
}

func TestReadEvents(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(chart("[Events]\n" +
		"//Background and Video events\n" +
		"0,0,\"bg folder\\back,ground.jpg\",0,0\n" +
		"Video,500,\"intro.mp4\"\n" +
		"2,5000,4000\n" +
		"Break,1000,2000\n" +
		"Sprite,Foreground,Centre,\"sb\\star.png\",320,240\n" +
		" F,0,100,200,0,1\n" +
		oneCircle))
	require.NoError(t, err)

	assert.Equal(t, "bg folder/back,ground.jpg", b.Metadata.BackgroundFile)
	assert.Equal(t, "intro.mp4", b.Metadata.VideoFile)
	assert.Equal(t, []BreakPeriod{{1000, 2000}, {5000, 5000}}, b.Breaks)
	assert.Equal(t, 0.0, b.Breaks[1].Duration())
	assert.Equal(t, []string{
		"Sprite,Foreground,Centre,\"sb\\star.png\",320,240",
		" F,0,100,200,0,1",
	}, b.Storyboard)
}

func TestVideoEventWithImageIsBackground(t *testing.T) {
	t.Parallel()

	b, err := DecodeString(chart("[Events]\n1,0,\"cover.png\"\n" + oneCircle))
	require.NoError(t, err)
	assert.Equal(t, "cover.png", b.Metadata.BackgroundFile)
	assert.Empty(t, b.Metadata.VideoFile)
}
