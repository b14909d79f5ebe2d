package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsSubtitleFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"movie.srt", true},
		{"MOVIE.SRT", true},
		{"show.vtt", true},
		{"anime.ass", true},
		{"movie.mkv", false},
		{"notes.txt", false},
		{"srt", false},
	}
	for _, tt := range tests {
		if got := IsSubtitleFile(tt.name); got != tt.want {
			t.Errorf("IsSubtitleFile(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	for _, rel := range []string{"../etc/passwd", "a/../../b", ".."} {
		if _, err := ResolvePath(base, rel); !errors.Is(err, os.ErrPermission) {
			t.Errorf("ResolvePath(%q) err = %v; want ErrPermission", rel, err)
		}
	}
	got, err := ResolvePath(base, "show/ep1.srt")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(base, "show", "ep1.srt") {
		t.Errorf("got %q", got)
	}
}

func TestListDirectoryOnlySubtitles(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a.srt"), "1\n")
	writeFile(t, filepath.Join(base, "a.mkv"), "x")
	writeFile(t, filepath.Join(base, ".hidden.srt"), "1\n")
	writeFile(t, filepath.Join(base, "show", "ep1.vtt"), "WEBVTT\n")

	tree, err := BuildTree(base, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range tree.Children {
		names = append(names, e.Name)
	}
	if !reflect.DeepEqual(names, []string{"a.srt", "show"}) {
		t.Fatalf("children = %v", names)
	}
	show := tree.Children[1]
	if len(show.Children) != 1 || show.Children[0].Path != "show/ep1.vtt" {
		t.Errorf("show children = %+v", show.Children)
	}
}

func TestSearch(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "Friends.S01E01.srt"), "")
	writeFile(t, filepath.Join(base, "friends.mkv"), "")
	writeFile(t, filepath.Join(base, "sub", "friends-zh.srt"), "")
	writeFile(t, filepath.Join(base, "other.srt"), "")

	res, err := Search(base, "FRIENDS", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("len = %d: %+v", len(res), res)
	}

	res, _ = Search(base, "friends", 1)
	if len(res) != 1 {
		t.Errorf("maxResults not honoured: %d", len(res))
	}
}

func TestReadLinesSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.srt")
	writeFile(t, path, "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nHello.\r\n\r\n")

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "00:00:01,000 --> 00:00:02,000", "Hello.", ""}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines = %q; want %q", lines, want)
	}
}

func TestReadLinesConvertsVTT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.vtt")
	writeFile(t, path, "WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nHello there.\n\n00:00:03.000 --> 00:00:04.000\nBye!\n")

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"00:00:01,000 --> 00:00:02,500", "Hello there.", "00:00:03,000 --> 00:00:04,000", "Bye!"} {
		if !strings.Contains(joined, want) {
			t.Errorf("converted output missing %q:\n%s", want, joined)
		}
	}
}

func TestReadLinesUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	writeFile(t, path, "x")
	if _, err := ReadLines(path); err == nil {
		t.Fatal("expected error for .txt")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, lang, want string
	}{
		{"movie.srt", "zh", "movie-zh.srt"},
		{filepath.Join("dir", "ep.vtt"), "ja", filepath.Join("dir", "ep-ja.srt")},
		{"noext", "zh", "noext-zh.srt"},
		{"a.srt", "", "a-translated.srt"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in, tt.lang); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q; want %q", tt.in, tt.lang, got, tt.want)
		}
	}
}

func TestWriteLinesAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.srt")
	if err := WriteLinesAtomic(path, []string{"1", "00:00:01,000 --> 00:00:02,000", "你好。", ""}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1\n00:00:01,000 --> 00:00:02,000\n你好。\n\n" {
		t.Errorf("content = %q", b)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}
