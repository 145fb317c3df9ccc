package dotosu

// ComboInfo is the combo state of one hit object.
type ComboInfo struct {
	ColourIndex int
	// ComboNumber counts from 1 within a combo.
	ComboNumber int
	ComboStart  bool
}

// AssignCombos folds over time-sorted objects and resolves each one's combo
// colour index into a palette of paletteSize colours. An object starts a
// new combo when it is the first, has the new combo flag, or follows a
// spinner; it then advances the colour by 1+ComboSkip.
func AssignCombos(objects []HitObject, paletteSize int) []ComboInfo {
	if paletteSize <= 0 {
		paletteSize = 1
	}
	out := make([]ComboInfo, len(objects))
	colour, number := -1, 0
	for i, h := range objects {
		start := i == 0 || h.NewCombo || objects[i-1].Kind == KindSpinner
		if start {
			colour = ((colour+1+h.ComboSkip)%paletteSize + paletteSize) % paletteSize
			number = 0
		}
		number++
		out[i] = ComboInfo{ColourIndex: colour, ComboNumber: number, ComboStart: start}
	}
	return out
}
