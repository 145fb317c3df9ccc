package dotosu

import "sort"

const (
	EarlyVersionTimingOffset = 24
	LatestVersion            = 14
	// FirstLazerVersion is the first format version written by the lazer editor.
	FirstLazerVersion = 128
)

// versionSemantics holds every field encoding that differs between format
// versions. Decoders consult the row for the file's version instead of
// testing version numbers themselves.
type versionSemantics struct {
	MinVersion int
	// TimeOffset is added to every timestamp read from the file.
	TimeOffset int
	// SplitCatmullSegments makes duplicated Catmull-Rom points start a new
	// segment, as they always do for Bezier.
	SplitCatmullSegments bool
}

// versionTable is sorted by MinVersion. A version uses the last row whose
// MinVersion it reaches, so versions newer than any row get the latest
// semantics.
var versionTable = []versionSemantics{
	{MinVersion: 0, TimeOffset: EarlyVersionTimingOffset},
	{MinVersion: 5},
	{MinVersion: FirstLazerVersion, SplitCatmullSegments: true},
}

func semanticsFor(version int) versionSemantics {
	i := sort.Search(len(versionTable), func(i int) bool {
		return versionTable[i].MinVersion > version
	})
	if i == 0 {
		return versionTable[0]
	}
	return versionTable[i-1]
}
