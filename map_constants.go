package main

import "github.com/tutis12/osubeatmap/dotosu"

type Modifiers struct {
	Rate float64

	HardRock bool
	Easy     bool
}

var NoMod = Modifiers{Rate: 1}

// MapConstants are the gameplay values derived from a chart's difficulty
// settings under the given modifiers. Times are in real milliseconds.
type MapConstants struct {
	CircleRadius float64 `json:"circle_radius" yaml:"circle_radius"`
	ApproachRate float64 `json:"approach_rate" yaml:"approach_rate"`
	Preempt      float64 `json:"preempt_ms" yaml:"preempt_ms"`
	Window300    float64 `json:"window_300_ms" yaml:"window_300_ms"`
	Window100    float64 `json:"window_100_ms" yaml:"window_100_ms"`
	Window50     float64 `json:"window_50_ms" yaml:"window_50_ms"`
}

func GetBeatmapConstants(beatmap *dotosu.Beatmap, mods Modifiers) MapConstants {
	rate := mods.Rate
	if rate <= 0 {
		rate = 1
	}

	cs := beatmap.Difficulty.CircleSize
	od := beatmap.Difficulty.OverallDifficulty
	ar := beatmap.Difficulty.ApproachRate
	if mods.HardRock {
		cs = min(cs*1.3, 10)
		od = min(od*1.4, 10)
		ar = min(ar*1.4, 10)
	}
	if mods.Easy {
		cs /= 2
		od /= 2
		ar /= 2
	}

	preempt := ApproachRateToPreempt(ar) / rate

	return MapConstants{
		CircleRadius: 54.4 - 4.48*cs,
		// rate changes the effective approach rate too
		ApproachRate: PreemptToAR(preempt),
		Preempt:      preempt,
		// each window is +- this
		Window300: (80 - 6*od) / rate,
		Window100: (140 - 8*od) / rate,
		Window50:  (200 - 10*od) / rate,
	}
}

func ApproachRateToPreempt(ar float64) float64 {
	if ar < 5 {
		return 1200 + 120*(5-ar)
	}
	return 1200 - 150*(ar-5)
}

func PreemptToAR(preempt float64) float64 {
	if preempt > 1200 {
		return 5 - (preempt-1200)/120
	}
	return 5 + (1200-preempt)/150
}
