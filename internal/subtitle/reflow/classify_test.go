package reflow

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		kind      LineKind
		malformed bool
		interval  Interval
	}{
		{name: "empty", in: "", kind: KindBlank},
		{name: "spaces", in: "   \t", kind: KindBlank},
		{name: "index", in: "12", kind: KindIndex},
		{name: "index padded", in: "  7 ", kind: KindIndex},
		{
			name:     "strict timeline",
			in:       "00:00:01,000 --> 00:00:02,500",
			kind:     KindTimeline,
			interval: Interval{Start: "00:00:01,000", End: "00:00:02,500"},
		},
		{
			name:     "strict timeline with crlf",
			in:       "00:00:01,000 --> 00:00:02,500\r",
			kind:     KindTimeline,
			interval: Interval{Start: "00:00:01,000", End: "00:00:02,500"},
		},
		{name: "loose timeline dot millis", in: "00:00:01.000 --> 00:00:02.500", kind: KindTimeline, malformed: true},
		{name: "loose timeline short hours", in: "0:00:01,000 --> 0:00:02,500", kind: KindTimeline, malformed: true},
		{name: "text", in: "Hello there", kind: KindText},
		{name: "text with punctuation", in: "...and then?", kind: KindText},
		{name: "arrow without digits", in: "a --> b", kind: KindText},
		{name: "number with text", in: "42 apples", kind: KindText},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in)
			if got.Kind != tc.kind {
				t.Fatalf("Classify(%q).Kind = %s; want %s", tc.in, got.Kind, tc.kind)
			}
			if got.Malformed != tc.malformed {
				t.Errorf("Classify(%q).Malformed = %v; want %v", tc.in, got.Malformed, tc.malformed)
			}
			if got.Interval != tc.interval {
				t.Errorf("Classify(%q).Interval = %+v; want %+v", tc.in, got.Interval, tc.interval)
			}
		})
	}
}

func TestStrictTimelineNeverText(t *testing.T) {
	for _, in := range []string{
		"00:00:00,000 --> 00:00:00,001",
		"99:59:59,999 --> 99:59:59,999",
		"  12:34:56,789 --> 12:34:57,000  ",
	} {
		if _, ok := ParseTimeline(in); !ok {
			t.Fatalf("ParseTimeline(%q) failed", in)
		}
		if k := Classify(in).Kind; k != KindTimeline {
			t.Errorf("Classify(%q) = %s; want timeline", in, k)
		}
	}
}
