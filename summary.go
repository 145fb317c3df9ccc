package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tutis12/osubeatmap/dotosu"
)

type Summary struct {
	Source        string `json:"source" yaml:"source"`
	FormatVersion int    `json:"format_version" yaml:"format_version"`
	Mode          string `json:"mode" yaml:"mode"`

	Artist    string `json:"artist" yaml:"artist"`
	Title     string `json:"title" yaml:"title"`
	Version   string `json:"version" yaml:"version"`
	Creator   string `json:"creator" yaml:"creator"`
	BeatmapID int    `json:"beatmap_id" yaml:"beatmap_id"`
	SetID     int    `json:"beatmapset_id" yaml:"beatmapset_id"`

	Difficulty dotosu.Difficulty `json:"difficulty" yaml:"difficulty"`
	Constants  MapConstants      `json:"constants" yaml:"constants"`

	Circles     int     `json:"circles" yaml:"circles"`
	Sliders     int     `json:"sliders" yaml:"sliders"`
	Spinners    int     `json:"spinners" yaml:"spinners"`
	Holds       int     `json:"holds,omitempty" yaml:"holds,omitempty"`
	SliderTicks int     `json:"slider_ticks" yaml:"slider_ticks"`
	MaxCombo    int     `json:"max_combo" yaml:"max_combo"`
	MinBPM      float64 `json:"min_bpm" yaml:"min_bpm"`
	MaxBPM      float64 `json:"max_bpm" yaml:"max_bpm"`
	MainBPM     float64 `json:"main_bpm" yaml:"main_bpm"`
	DrainTime   float64 `json:"drain_ms" yaml:"drain_ms"`

	ComboColours []string `json:"combo_colours" yaml:"combo_colours"`
	Warnings     []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func NewSummary(source string, b *dotosu.Beatmap, st dotosu.Stats, mods Modifiers) Summary {
	s := Summary{
		Source:        source,
		FormatVersion: b.FormatVersion,
		Mode:          b.General.Mode.String(),
		Artist:        b.Metadata.Artist,
		Title:         b.Metadata.Title,
		Version:       b.Metadata.Version,
		Creator:       b.Metadata.Creator,
		BeatmapID:     b.Metadata.BeatmapID,
		SetID:         b.Metadata.BeatmapSetID,
		Difficulty:    b.Difficulty,
		Constants:     GetBeatmapConstants(b, mods),
		Circles:       st.Circles,
		Sliders:       st.Sliders,
		Spinners:      st.Spinners,
		Holds:         st.Holds,
		SliderTicks:   st.SliderTicks,
		MaxCombo:      st.MaxCombo,
		MinBPM:        st.MinBPM,
		MaxBPM:        st.MaxBPM,
		MainBPM:       st.MainBPM,
		DrainTime:     st.DrainTime,
	}
	palette := b.ComboColours
	if len(palette) == 0 {
		palette = dotosu.DefaultComboColours
	}
	for _, c := range palette {
		s.ComboColours = append(s.ComboColours, c.Hex())
	}
	for _, w := range b.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}
	return s
}

// WriteSummaries renders the summaries as one JSON array or a YAML sequence.
func WriteSummaries(w io.Writer, format string, summaries []Summary) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(summaries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summaries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
