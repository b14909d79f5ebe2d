package reflow

import "strconv"

// Renumber threads a cue counter through blocks in file order, inserting an
// index line before every timeline line. It returns the next unused index.
func Renumber(blocks []*Block, first int) (int, error) {
	next := first
	for _, b := range blocks {
		var err error
		if next, err = b.renumber(next); err != nil {
			return next, err
		}
	}
	return next, nil
}

func (b *Block) renumber(next int) (int, error) {
	if b.numbered {
		return next, ErrAlreadyNumbered
	}

	lines := make([]string, 0, len(b.lines)+len(b.positions))
	positions := make([]int, 0, len(b.positions))
	p := 0
	for i, line := range b.lines {
		if p < len(b.positions) && b.positions[p] == i {
			lines = append(lines, strconv.Itoa(next))
			next++
			positions = append(positions, len(lines))
			p++
		}
		lines = append(lines, line)
	}

	b.lines = lines
	b.positions = positions
	b.numbered = true
	return next, nil
}
