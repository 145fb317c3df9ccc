package dotosu

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

func (s *decodeState) readEvents(lines []rawLine) {
	for _, l := range lines {
		trimmed := strings.TrimSpace(l.Text)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		// indented lines are storyboard commands of the previous sprite
		if trimmed != l.Text {
			s.b.Storyboard = append(s.b.Storyboard, l.Text)
			continue
		}
		parts := splitCSV(trimmed)
		switch strings.ToLower(parts[0]) {
		case "0", "background":
			if len(parts) < 3 {
				s.warn(l, "background event without filename")
				continue
			}
			s.b.Metadata.BackgroundFile = standardisePath(parts[2])
		case "1", "video":
			if len(parts) < 3 {
				s.warn(l, "video event without filename")
				continue
			}
			fn := standardisePath(parts[2])
			switch strings.ToLower(filepath.Ext(fn)) {
			case ".avi", ".flv", ".mp4", ".mkv", ".mov", ".wmv", ".mpg", ".mpeg", ".ogv", ".webm":
				s.b.Metadata.VideoFile = fn
			default:
				// some charts list their background image as a video
				s.b.Metadata.BackgroundFile = fn
			}
		case "2", "break":
			if len(parts) < 3 {
				s.warn(l, "break event needs start and end")
				continue
			}
			start, err := parseFloat(parts[1])
			if err != nil {
				s.warn(l, "break start: %v", err)
				continue
			}
			end, err := parseFloat(parts[2])
			if err != nil {
				s.warn(l, "break end: %v", err)
				continue
			}
			start += float64(s.sem.TimeOffset)
			end += float64(s.sem.TimeOffset)
			s.b.Breaks = append(s.b.Breaks, BreakPeriod{Start: start, End: max(start, end)})
		default:
			s.b.Storyboard = append(s.b.Storyboard, l.Text)
		}
	}
	slices.SortStableFunc(s.b.Breaks, func(a, b BreakPeriod) int {
		return cmp.Compare(a.Start, b.Start)
	})
}

// splitCSV splits on commas outside double quotes.
func splitCSV(line string) []string {
	var out []string
	var cur strings.Builder
	inQ := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case '"':
			inQ = !inQ
			cur.WriteByte(c)
		case ',':
			if inQ {
				cur.WriteByte(c)
			} else {
				out = append(out, strings.TrimSpace(cur.String()))
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out
}
