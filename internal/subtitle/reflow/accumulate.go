package reflow

import "errors"

// Accumulator groups classified caption lines into sentence blocks in file
// order. A fresh block starts right after the current one ends.
type Accumulator struct {
	// Detect decides sentence ends; nil means DefaultTerminators.
	Detect EndDetector
	// SkipMalformed drops loose-only timeline lines instead of failing.
	SkipMalformed bool

	blocks  []*Block
	current *Block
	lineNum int
	dropped int
	skipped int
}

// Add classifies one raw line and feeds it to the open block.
func (a *Accumulator) Add(raw string) error {
	a.lineNum++
	if a.current == nil {
		a.current = NewBlock(a.Detect)
	}

	line := Classify(raw)
	if err := a.current.Feed(line); err != nil {
		var mt *MalformedTimelineError
		if !errors.As(err, &mt) {
			return err
		}
		if a.SkipMalformed {
			a.skipped++
			return nil
		}
		mt.LineNum = a.lineNum
		return mt
	}

	if line.Kind == KindText && a.current.State() == Ended {
		a.close(a.current)
		a.current = nil
	}
	return nil
}

// Finish flushes a trailing unterminated sentence and returns the blocks.
// Trailing timelines with no text are dropped.
func (a *Accumulator) Finish() []*Block {
	if a.current != nil {
		if a.current.RawSentence() != "" {
			a.close(a.current)
		} else if len(a.current.intervals) > 0 {
			a.dropped++
		}
		a.current = nil
	}
	return a.blocks
}

// Dropped is the number of blocks that could not be rendered as cues.
func (a *Accumulator) Dropped() int { return a.dropped }

// Skipped is the number of malformed timeline lines ignored.
func (a *Accumulator) Skipped() int { return a.skipped }

func (a *Accumulator) close(b *Block) {
	if len(b.intervals) == 0 {
		a.dropped++
		return
	}
	a.blocks = append(a.blocks, b)
}

// Segment runs an Accumulator over all lines.
func Segment(lines []string, detect EndDetector, skipMalformed bool) ([]*Block, *Accumulator, error) {
	acc := &Accumulator{Detect: detect, SkipMalformed: skipMalformed}
	for _, l := range lines {
		if err := acc.Add(l); err != nil {
			return nil, acc, err
		}
	}
	return acc.Finish(), acc, nil
}
