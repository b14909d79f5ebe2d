package reflow

// DefaultMaxLineWidth is the reference characters-per-line limit.
const DefaultMaxLineWidth = 18

// CueBreak separates a cue's text from the next cue inside one block.
const CueBreak = ""

// Options control how a translated sentence is laid out over cues
type Options struct {
	MaxLineWidth int `json:"max_line_width"`
	// KeepLeftover folds wrapped lines that no cue can take into the first
	// cue instead of dropping them.
	KeepLeftover bool `json:"keep_leftover"`
}

func (o Options) width() int {
	if o.MaxLineWidth < 1 {
		return DefaultMaxLineWidth
	}
	return o.MaxLineWidth
}

// Reflow re-distributes the translated sentence over the block's cues.
//
// A single-cue block takes the whole translation as one line, unwrapped.
// Otherwise the wrapped lines are shown two per cue: the intervals are
// reduced to ceil(lines/2), the last cue takes the final two lines when
// their count is even (else the final one), and earlier cues take pairs
// walking backward. Lines left before the first pair are dropped unless
// KeepLeftover is set.
func (b *Block) Reflow(opts Options) error {
	if b.reflowed {
		return ErrAlreadyReflowed
	}
	translated, err := b.Translated()
	if err != nil {
		return err
	}
	if len(b.intervals) == 0 {
		return ErrNoIntervals
	}

	if len(b.intervals) == 1 {
		b.render([][]string{{translated}}, b.intervals)
		return nil
	}

	wrapped := Wrap(translated, opts.width())
	target := (len(wrapped) + 1) / 2
	if target > len(b.intervals) {
		target = len(b.intervals)
	}
	final, err := Reduce(b.intervals, target)
	if err != nil {
		return err
	}

	b.render(distribute(wrapped, target, opts.KeepLeftover), final)
	return nil
}

// distribute assigns wrapped lines to n cues, consuming from the end.
func distribute(wrapped []string, n int, keepLeftover bool) [][]string {
	cues := make([][]string, n)
	rest := wrapped

	if len(rest)%2 == 0 && len(rest) >= 2 {
		cues[n-1] = append([]string(nil), rest[len(rest)-2:]...)
		rest = rest[:len(rest)-2]
	} else {
		cues[n-1] = []string{rest[len(rest)-1]}
		rest = rest[:len(rest)-1]
	}

	for i := n - 2; i >= 0 && len(rest) >= 2; i-- {
		cues[i] = []string{rest[len(rest)-2], rest[len(rest)-1], CueBreak}
		rest = rest[:len(rest)-2]
	}

	if keepLeftover && len(rest) > 0 {
		cues[0] = append(append([]string(nil), rest...), cues[0]...)
	}
	return cues
}

// render replaces the timeline placeholders with the reduced intervals,
// places each cue's text after its timeline and truncates unused placeholders.
func (b *Block) render(cues [][]string, final []Interval) {
	lines := make([]string, 0, len(final)*4)
	positions := make([]int, 0, len(final))
	for i, iv := range final {
		positions = append(positions, len(lines))
		lines = append(lines, iv.String())
		lines = append(lines, cues[i]...)
	}
	b.lines = lines
	b.positions = positions
	b.intervals = append([]Interval(nil), final...)
	b.reflowed = true
}
