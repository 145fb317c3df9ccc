package dotosu

// Stats summarises a decoded chart.
type Stats struct {
	Circles, Sliders, Spinners, Holds int
	SliderTicks                       int
	MaxCombo                          int

	MinBPM, MaxBPM, MainBPM float64

	FirstObject, LastObject float64
	// DrainTime is the playable span in milliseconds, breaks excluded.
	DrainTime float64
}

func (b *Beatmap) Stats() Stats {
	var st Stats
	for i := range b.HitObjects {
		h := &b.HitObjects[i]
		switch h.Kind {
		case KindCircle:
			st.Circles++
			st.MaxCombo++
		case KindSlider:
			st.Sliders++
			for _, e := range h.SliderEvents() {
				switch e.Kind {
				case EventTick:
					st.SliderTicks++
					st.MaxCombo++
				case EventHead, EventRepeat, EventTail:
					st.MaxCombo++
				}
			}
		case KindSpinner:
			st.Spinners++
			st.MaxCombo++
		case KindHold:
			st.Holds++
			st.MaxCombo++
		}
	}

	if n := len(b.HitObjects); n > 0 {
		st.FirstObject = float64(b.HitObjects[0].Time)
		for i := range b.HitObjects {
			st.LastObject = max(st.LastObject, b.HitObjects[i].EndTime())
		}
	}
	st.DrainTime = st.LastObject - st.FirstObject
	for _, br := range b.Breaks {
		lo, hi := max(br.Start, st.FirstObject), min(br.End, st.LastObject)
		if hi > lo {
			st.DrainTime -= hi - lo
		}
	}

	st.MinBPM, st.MaxBPM = b.ControlPoints.BPMRange()
	st.MainBPM = b.mainBPM(st.LastObject)
	return st
}

// mainBPM is the tempo held for the longest time before end.
func (b *Beatmap) mainBPM(end float64) float64 {
	timing := b.ControlPoints.Uninherited()
	if len(timing) == 0 {
		return 60000 / DefaultBeatLength
	}
	held := make(map[float64]float64)
	for i, cp := range timing {
		if float64(cp.Time) > end {
			break
		}
		from := float64(cp.Time)
		if i == 0 && len(b.HitObjects) > 0 {
			// the first timing point covers objects placed before it
			from = min(from, float64(b.HitObjects[0].Time))
		}
		to := end
		if i+1 < len(timing) {
			to = min(end, float64(timing[i+1].Time))
		}
		held[cp.BeatLength] += max(0, to-from)
	}
	best, bestDur := timing[0].BeatLength, -1.0
	for bl, d := range held {
		if d > bestDur || (d == bestDur && bl < best) {
			best, bestDur = bl, d
		}
	}
	return 60000 / best
}
