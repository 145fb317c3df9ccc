package dotosu

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Colour is an RGBA colour as written in the [Colours] section.
type Colour struct{ R, G, B, A uint8 }

// Colorful converts c to a colorful.Color, dropping alpha.
func (c Colour) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex renders c as #rrggbb, or #rrggbbaa when it is not opaque.
func (c Colour) Hex() string {
	h := c.Colorful().Hex()
	if c.A != 255 {
		h += fmt.Sprintf("%02x", c.A)
	}
	return h
}

func colourFromHex(s string) Colour {
	col, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	r, g, b := col.RGB255()
	return Colour{r, g, b, 255}
}

// DefaultComboColours is the palette used when a chart defines none.
var DefaultComboColours = []Colour{
	colourFromHex("#ffc000"),
	colourFromHex("#00ca00"),
	colourFromHex("#127cff"),
	colourFromHex("#f21839"),
}

// SkinColours holds the optional non-combo colours of the [Colours] section.
type SkinColours struct {
	SliderTrackOverride *Colour
	SliderBorder        *Colour
}

func (s *decodeState) readColours(lines []rawLine) {
	type numbered struct {
		n int
		c Colour
	}
	var combos []numbered
	for _, l := range lines {
		k, v, ok := splitKeyVal(l.Text)
		if !ok {
			s.warn(l, "expected \"Key : r,g,b\", got %q", l.Text)
			continue
		}
		col, err := parseColour(v)
		if err != nil {
			s.warn(l, "colour %s skipped: %v", k, err)
			continue
		}
		lk := strings.ToLower(k)
		switch {
		case strings.HasPrefix(lk, "combo"):
			n, err := strconv.Atoi(lk[len("combo"):])
			if err != nil {
				s.warn(l, "colour %s skipped: bad combo number", k)
				continue
			}
			combos = append(combos, numbered{n, col})
		case lk == "slidertrackoverride":
			s.b.Colours.SliderTrackOverride = &col
		case lk == "sliderborder":
			s.b.Colours.SliderBorder = &col
		default:
			s.debug(l, "unknown colour %q ignored", k)
		}
	}
	slices.SortStableFunc(combos, func(a, b numbered) int { return cmp.Compare(a.n, b.n) })
	for _, c := range combos {
		s.b.ComboColours = append(s.b.ComboColours, c.c)
	}
}

func parseColour(v string) (Colour, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Colour{}, fmt.Errorf("expected r,g,b or r,g,b,a, got %q", v)
	}
	var comp [4]uint8
	comp[3] = 255
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Colour{}, fmt.Errorf("component %d: %w", i, err)
		}
		comp[i] = uint8(n)
	}
	return Colour{comp[0], comp[1], comp[2], comp[3]}, nil
}
