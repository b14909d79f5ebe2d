package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astisub"
)

const utf8BOM = "\ufeff"

// ReadLines returns the file as SRT lines without line terminators.
// Non-SRT formats are converted to SRT with astisub first.
func ReadLines(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return SplitLines(f)
	}
	if !IsSubtitleFile(path) {
		return nil, fmt.Errorf("unsupported subtitle format: %s", filepath.Ext(path))
	}

	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	var buf bytes.Buffer
	if err := subs.WriteToSRT(&buf); err != nil {
		return nil, fmt.Errorf("convert %s to srt: %w", filepath.Base(path), err)
	}
	return SplitLines(&buf)
}

// SplitLines splits r on "\n", dropping "\r" terminators and a leading BOM.
func SplitLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if first {
			line = strings.TrimPrefix(line, utf8BOM)
			first = false
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// OutputPath names the translated file: "dir/movie.srt" becomes
// "dir/movie-zh.srt" for lang "zh". Other extensions are replaced by .srt.
func OutputPath(input, lang string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if lang == "" {
		lang = "translated"
	}
	return base + "-" + lang + ".srt"
}

// WriteLinesAtomic writes lines joined by "\n" to path via a temp file in
// the same directory, so readers never observe a partial file.
func WriteLinesAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			cleanup()
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			cleanup()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
