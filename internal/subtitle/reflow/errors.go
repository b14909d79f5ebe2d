package reflow

import (
	"errors"
	"fmt"
)

// ErrInvalidTarget is returned by Reduce for a target outside 1..len(intervals)
var ErrInvalidTarget = errors.New("invalid reduce target")

// SentenceStateError reports text merged into a block whose sentence already ended.
type SentenceStateError struct {
	Sentence string
	Fragment string
}

func (e *SentenceStateError) Error() string {
	return fmt.Sprintf("sentence already ended: %q cannot take %q", e.Sentence, e.Fragment)
}

// MissingTranslationError reports a reflow attempted before translation.
type MissingTranslationError struct {
	Sentence string
}

func (e *MissingTranslationError) Error() string {
	return fmt.Sprintf("sentence not translated: %q", e.Sentence)
}

// TranslationError wraps a failure of the translation collaborator.
type TranslationError struct {
	Block    int
	Sentence string
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate block %d (%q): %v", e.Block+1, e.Sentence, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// MalformedTimelineError reports a line that looks like a timeline but
// whose timestamps cannot be extracted.
type MalformedTimelineError struct {
	Line    string
	LineNum int
}

func (e *MalformedTimelineError) Error() string {
	if e.LineNum > 0 {
		return fmt.Sprintf("malformed timeline at line %d: %q", e.LineNum, e.Line)
	}
	return fmt.Sprintf("malformed timeline: %q", e.Line)
}
