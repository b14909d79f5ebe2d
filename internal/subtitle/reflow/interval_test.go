package reflow

import (
	"errors"
	"reflect"
	"testing"
)

func iv(s, e string) Interval { return Interval{Start: s, End: e} }

func TestReduceMergeOrder(t *testing.T) {
	in := []Interval{iv("0", "1"), iv("2", "3"), iv("4", "5"), iv("6", "7")}

	tests := []struct {
		target int
		want   []Interval
	}{
		{4, []Interval{iv("0", "1"), iv("2", "3"), iv("4", "5"), iv("6", "7")}},
		{3, []Interval{iv("0", "3"), iv("4", "5"), iv("6", "7")}},
		{2, []Interval{iv("0", "3"), iv("4", "7")}},
		{1, []Interval{iv("0", "7")}},
	}
	for _, tc := range tests {
		got, err := Reduce(in, tc.target)
		if err != nil {
			t.Fatalf("Reduce(%d): %v", tc.target, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Reduce(%d) = %v; want %v", tc.target, got, tc.want)
		}
		if len(got) != tc.target {
			t.Errorf("Reduce(%d) returned %d intervals", tc.target, len(got))
		}
	}

	if in[0] != iv("0", "1") || len(in) != 4 {
		t.Fatalf("Reduce mutated its input: %v", in)
	}
}

func TestReduceFiveToTwo(t *testing.T) {
	in := []Interval{iv("a", "b"), iv("c", "d"), iv("e", "f"), iv("g", "h"), iv("i", "j")}
	got, err := Reduce(in, 2)
	if err != nil {
		t.Fatal(err)
	}
	// earliest-pair-first: the tail interval is untouched
	want := []Interval{iv("a", "h"), iv("i", "j")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Reduce = %v; want %v", got, want)
	}
}

func TestReduceInvalidTarget(t *testing.T) {
	in := []Interval{iv("0", "1"), iv("2", "3")}
	for _, target := range []int{0, -1, 3} {
		if _, err := Reduce(in, target); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("Reduce(%d) err = %v; want ErrInvalidTarget", target, err)
		}
	}
}

func TestIntervalString(t *testing.T) {
	got := iv("00:00:01,000", "00:00:04,000").String()
	if got != "00:00:01,000 --> 00:00:04,000" {
		t.Fatalf("String() = %q", got)
	}
}
