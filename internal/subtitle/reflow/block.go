package reflow

import (
	"errors"
	"strings"
)

// State of a sentence block
type State int

const (
	// Open blocks still accept text fragments.
	Open State = iota
	// Ended blocks hold a complete sentence.
	Ended
)

func (s State) String() string {
	if s == Ended {
		return "ended"
	}
	return "open"
}

var (
	ErrAlreadyTranslated = errors.New("block already translated")
	ErrAlreadyReflowed   = errors.New("block already reflowed")
	ErrAlreadyNumbered   = errors.New("block already renumbered")
	ErrNoIntervals       = errors.New("block has no timeline")
)

// EndDetector reports whether a text fragment closes a sentence
type EndDetector func(fragment string) bool

// DefaultTerminators are the suffixes that end a source sentence.
var DefaultTerminators = []string{".", "?", "!", "……"}

// SuffixDetector returns an EndDetector matching any of the given suffixes.
func SuffixDetector(suffixes ...string) EndDetector {
	return func(fragment string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(fragment, s) {
				return true
			}
		}
		return false
	}
}

// Block is the unit of translation: one sentence spanning one or more
// original cues. Lines is the render buffer; it holds timeline (and later
// index and text) lines but never the source sentence itself.
type Block struct {
	detect EndDetector

	raw            string
	translated     string
	hasTranslation bool

	lines     []string
	positions []int
	intervals []Interval
	state     State

	reflowed bool
	numbered bool
}

// NewBlock creates an empty open block. A nil detector uses DefaultTerminators.
func NewBlock(detect EndDetector) *Block {
	if detect == nil {
		detect = SuffixDetector(DefaultTerminators...)
	}
	return &Block{detect: detect}
}

// Feed applies one classified line to the block
func (b *Block) Feed(line Line) error {
	switch line.Kind {
	case KindBlank, KindIndex:
		// indices are regenerated by Renumber
		return nil
	case KindTimeline:
		if line.Malformed {
			return &MalformedTimelineError{Line: line.Raw}
		}
		b.AddInterval(line.Interval)
		return nil
	default:
		return b.AppendText(line.Raw)
	}
}

// AddInterval records a timeline placeholder. Allowed in either state.
func (b *Block) AddInterval(iv Interval) {
	b.lines = append(b.lines, iv.String())
	b.positions = append(b.positions, len(b.lines)-1)
	b.intervals = append(b.intervals, iv)
}

// AppendText merges a fragment into the running sentence.
func (b *Block) AppendText(fragment string) error {
	if b.state == Ended {
		return &SentenceStateError{Sentence: b.raw, Fragment: fragment}
	}
	if b.raw == "" {
		b.raw = fragment
	} else {
		b.raw += " " + fragment
	}
	if b.detect(fragment) {
		b.state = Ended
	}
	return nil
}

func (b *Block) RawSentence() string { return b.raw }

func (b *Block) State() State { return b.state }

// SetTranslation stores the translated sentence. It may only be set once.
func (b *Block) SetTranslation(s string) error {
	if b.hasTranslation {
		return ErrAlreadyTranslated
	}
	b.translated = s
	b.hasTranslation = true
	return nil
}

// Translated returns the translated sentence or a *MissingTranslationError.
func (b *Block) Translated() (string, error) {
	if !b.hasTranslation || b.translated == "" {
		return "", &MissingTranslationError{Sentence: b.raw}
	}
	return b.translated, nil
}

// Lines returns a copy of the render buffer
func (b *Block) Lines() []string {
	return append([]string(nil), b.lines...)
}

// Intervals returns a copy of the current intervals
func (b *Block) Intervals() []Interval {
	return append([]Interval(nil), b.intervals...)
}

// TimelinePositions returns a copy of the timeline line positions in Lines.
func (b *Block) TimelinePositions() []int {
	return append([]int(nil), b.positions...)
}
