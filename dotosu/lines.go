package dotosu

import (
	"strconv"
	"strings"
)

const (
	secGeneral      = "General"
	secEditor       = "Editor"
	secMetadata     = "Metadata"
	secDifficulty   = "Difficulty"
	secEvents       = "Events"
	secTimingPoints = "TimingPoints"
	secColours      = "Colours"
	secHitObjects   = "HitObjects"

	headerPrefix = "osu file format v"
)

var knownSections = map[string]string{
	"general":      secGeneral,
	"editor":       secEditor,
	"metadata":     secMetadata,
	"difficulty":   secDifficulty,
	"events":       secEvents,
	"timingpoints": secTimingPoints,
	"colours":      secColours,
	"hitobjects":   secHitObjects,
}

type rawLine struct {
	Section string
	Number  int
	Text    string
}

// classified is the chart text cut into per-section buffers.
type classified struct {
	version  int
	sections map[string][]rawLine
	// order in which sections first appeared, unknown ones included
	order []string
}

// classifyLines splits text into sections. Line numbers are 1-based.
func classifyLines(text string) (*classified, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	c := &classified{version: -1, sections: make(map[string][]rawLine)}

	section := ""
	n := 0
	for len(text) > 0 {
		var line string
		line, text = nextLine(text)
		n++

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if c.version < 0 {
			if strings.HasPrefix(trimmed, "//") {
				continue
			}
			v, err := parseHeader(trimmed)
			if err != nil {
				return nil, &FormatError{Line: n, Err: err}
			}
			c.version = v
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			name := trimmed[1 : len(trimmed)-1]
			if canonical, ok := knownSections[strings.ToLower(name)]; ok {
				name = canonical
			}
			section = name
			if _, seen := c.sections[name]; !seen {
				c.sections[name] = nil
				c.order = append(c.order, name)
			}
			continue
		}
		if section == "" {
			continue
		}
		if section == secEvents {
			// storyboard depth is encoded in leading indentation
			c.sections[section] = append(c.sections[section], rawLine{section, n, strings.TrimRight(line, " \t")})
			continue
		}
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		c.sections[section] = append(c.sections[section], rawLine{section, n, trimmed})
	}
	if c.version < 0 {
		return nil, &FormatError{Err: ErrMissingHeader}
	}
	return c, nil
}

// nextLine cuts the first line off s, accepting \n, \r\n and lone \r.
func nextLine(s string) (line, rest string) {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return s, ""
	}
	line, rest = s[:i], s[i+1:]
	if s[i] == '\r' && strings.HasPrefix(rest, "\n") {
		rest = rest[1:]
	}
	return line, rest
}

func parseHeader(line string) (int, error) {
	if !strings.HasPrefix(strings.ToLower(line), headerPrefix) {
		return 0, ErrMissingHeader
	}
	v, err := strconv.Atoi(strings.TrimSpace(line[len(headerPrefix):]))
	if err != nil || v < 0 {
		return 0, ErrInvalidVersion
	}
	return v, nil
}
