package reflow

import (
	"regexp"
	"strings"
	"unicode"
)

// LineKind is the classification of one caption line
type LineKind int

const (
	KindBlank LineKind = iota
	KindIndex
	KindTimeline
	KindText
)

func (k LineKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindIndex:
		return "index"
	case KindTimeline:
		return "timeline"
	case KindText:
		return "text"
	}
	return "unknown"
}

var (
	// looseTimelineRe decides whether a line is excluded from sentence text.
	looseTimelineRe = regexp.MustCompile(`^[0-9].*?-->.*?[0-9]$`)
	// strictTimelineRe is the only pattern timestamps are extracted from.
	strictTimelineRe = regexp.MustCompile(`^([0-9]{2}:[0-9]{2}:[0-9]{2},[0-9]{3}) --> ([0-9]{2}:[0-9]{2}:[0-9]{2},[0-9]{3})$`)
)

// Line is a classified caption line
type Line struct {
	Kind LineKind
	Raw  string
	// Interval is only set for well-formed timeline lines.
	Interval Interval
	// Malformed marks a line that looks like a timeline but failed strict parsing.
	Malformed bool
}

// Classify trims line and returns its kind. Pure function of the input.
func Classify(line string) Line {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return Line{Kind: KindBlank, Raw: line}
	case isDigits(line):
		return Line{Kind: KindIndex, Raw: line}
	case IsTimelineLike(line):
		iv, ok := ParseTimeline(line)
		return Line{Kind: KindTimeline, Raw: line, Interval: iv, Malformed: !ok}
	}
	return Line{Kind: KindText, Raw: line}
}

// IsTimelineLike reports whether line loosely resembles "a --> b"
func IsTimelineLike(line string) bool {
	return looseTimelineRe.MatchString(strings.TrimSpace(line))
}

// ParseTimeline extracts the interval of a strict "HH:MM:SS,mmm --> HH:MM:SS,mmm" line.
func ParseTimeline(line string) (Interval, bool) {
	m := strictTimelineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Interval{}, false
	}
	return Interval{Start: m[1], End: m[2]}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
