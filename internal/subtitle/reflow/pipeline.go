package reflow

import (
	"context"
	"fmt"
	"sync"
)

// TranslateFunc translates one source sentence
type TranslateFunc func(ctx context.Context, sentence string) (string, error)

// ProcessOptions configure a whole-file run
type ProcessOptions struct {
	Options
	Detect                 EndDetector
	SkipMalformedTimelines bool
	// Concurrency is the number of in-flight translation calls; 1 keeps
	// strict file order.
	Concurrency int
	Progress    func(done, total int)
}

// Result of a whole-file run
type Result struct {
	Lines            []string `json:"-"`
	Blocks           int      `json:"blocks"`
	Cues             int      `json:"cues"`
	Dropped          int      `json:"dropped"`
	SkippedTimelines int      `json:"skipped_timelines"`
}

// Process segments lines into sentences, translates and reflows each one,
// renumbers all cues and renders the output. Any error fails the whole file.
func Process(ctx context.Context, lines []string, translate TranslateFunc, opts ProcessOptions) (*Result, error) {
	blocks, acc, err := Segment(lines, opts.Detect, opts.SkipMalformedTimelines)
	if err != nil {
		return nil, err
	}

	if err := TranslateBlocks(ctx, blocks, translate, opts.Concurrency, opts.Progress); err != nil {
		return nil, err
	}

	for i, b := range blocks {
		if err := b.Reflow(opts.Options); err != nil {
			return nil, fmt.Errorf("reflow block %d: %w", i+1, err)
		}
	}

	next, err := Renumber(blocks, 1)
	if err != nil {
		return nil, err
	}

	return &Result{
		Lines:            Render(blocks),
		Blocks:           len(blocks),
		Cues:             next - 1,
		Dropped:          acc.Dropped(),
		SkippedTimelines: acc.Skipped(),
	}, nil
}

// TranslateBlocks calls translate once per block and stores each result on
// its own block. The first failure cancels outstanding calls and is returned
// as a *TranslationError.
func TranslateBlocks(ctx context.Context, blocks []*Block, translate TranslateFunc, concurrency int, progress func(done, total int)) error {
	if concurrency < 1 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		mu       sync.Mutex // serialises progress so done only grows
		done     int
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	sem := make(chan struct{}, concurrency)
	for i, b := range blocks {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(idx int, b *Block) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := translate(ctx, b.RawSentence())
			if err == nil {
				err = b.SetTranslation(out)
			}
			if err != nil {
				fail(&TranslationError{Block: idx, Sentence: b.RawSentence(), Err: err})
				return
			}
			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(blocks))
				mu.Unlock()
			}
		}(i, b)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// Render concatenates the blocks' buffers, each followed by a blank line.
func Render(blocks []*Block) []string {
	var out []string
	for _, b := range blocks {
		out = append(out, b.lines...)
		out = append(out, "")
	}
	return out
}
