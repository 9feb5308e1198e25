package timerange

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stagecall/availsync"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{clock: "00:00", want: 0},
		{clock: "09:30", want: 570},
		{clock: "23:59", want: 1439},
		{clock: "24:00", wantErr: true},
		{clock: "12:60", wantErr: true},
		{clock: "9:30", wantErr: true},
		{clock: "garbage", wantErr: true},
		{clock: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			got, err := ToMinutes(tt.clock)
			if tt.wantErr {
				var perr *availsync.ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("ToMinutes(%q) err = %v, want ParseError", tt.clock, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToMinutes(%q) unexpected error: %v", tt.clock, err)
			}
			if got != tt.want {
				t.Errorf("ToMinutes(%q) = %d, want %d", tt.clock, got, tt.want)
			}
		})
	}
}

func TestToTimeStringRoundTrip(t *testing.T) {
	for _, clock := range []string{"00:00", "07:05", "09:00", "12:34", "23:59"} {
		m, err := ToMinutes(clock)
		if err != nil {
			t.Fatalf("ToMinutes(%q): %v", clock, err)
		}
		if got := ToTimeString(m); got != clock {
			t.Errorf("round trip %q = %q", clock, got)
		}
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		want   []Range
	}{
		{
			name: "empty",
		},
		{
			name:   "disjoint stay disjoint",
			ranges: []Range{{600, 660}, {720, 780}},
			want:   []Range{{600, 660}, {720, 780}},
		},
		{
			name:   "overlap merges",
			ranges: []Range{{600, 720}, {660, 780}},
			want:   []Range{{600, 780}},
		},
		{
			name:   "unsorted input",
			ranges: []Range{{720, 780}, {600, 660}, {640, 730}},
			want:   []Range{{600, 780}},
		},
		{
			name:   "one minute apart touches",
			ranges: []Range{{600, 719}, {720, 840}},
			want:   []Range{{600, 840}},
		},
		{
			name:   "contained range absorbed",
			ranges: []Range{{600, 840}, {660, 700}},
			want:   []Range{{600, 840}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.ranges)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge(%v) = %v, want %v", tt.ranges, got, tt.want)
			}
			// Merge must be idempotent.
			again := Merge(got)
			if !reflect.DeepEqual(again, got) {
				t.Errorf("Merge not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		sub    Range
		want   []Range
	}{
		{
			name:   "no overlap keeps range",
			ranges: []Range{{600, 660}},
			sub:    Range{700, 800},
			want:   []Range{{600, 660}},
		},
		{
			name:   "full cover removes range",
			ranges: []Range{{600, 660}},
			sub:    Range{540, 720},
			want:   nil,
		},
		{
			name:   "middle split yields two pieces",
			ranges: []Range{{540, 840}},
			sub:    Range{600, 720},
			want:   []Range{{540, 600}, {720, 840}},
		},
		{
			name:   "left trim",
			ranges: []Range{{540, 840}},
			sub:    Range{500, 600},
			want:   []Range{{600, 840}},
		},
		{
			name:   "right trim",
			ranges: []Range{{540, 840}},
			sub:    Range{800, 900},
			want:   []Range{{540, 800}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(tt.ranges, tt.sub)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Subtract(%v, %v) = %v, want %v", tt.ranges, tt.sub, got, tt.want)
			}
		})
	}
}

func TestFreeGaps(t *testing.T) {
	t.Run("no busy ranges yields full workday", func(t *testing.T) {
		got := FreeGaps(nil)
		want := []Range{{WorkdayStart, WorkdayEnd}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("FreeGaps(nil) = %v, want %v", got, want)
		}
	})

	t.Run("busy middle splits workday", func(t *testing.T) {
		got := FreeGaps([]Range{{600, 720}})
		want := []Range{{WorkdayStart, 600}, {720, WorkdayEnd}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("FreeGaps = %v, want %v", got, want)
		}
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		want   DayClass
	}{
		{name: "no ranges", want: ClassFree},
		{name: "partial coverage", ranges: []Range{{600, 720}}, want: ClassPartial},
		{name: "full day", ranges: []Range{{0, 1439}}, want: ClassBusy},
		{name: "full day in pieces", ranges: []Range{{0, 700}, {700, 1439}}, want: ClassBusy},
		{name: "gap in the middle", ranges: []Range{{0, 600}, {800, 1439}}, want: ClassPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ranges); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.ranges, got, tt.want)
			}
		})
	}
}

func TestMergeSlots(t *testing.T) {
	slots := []availsync.TimeSlot{
		{Start: "12:00", End: "13:00"},
		{Start: "10:00", End: "12:30"},
	}
	got, err := MergeSlots(slots)
	if err != nil {
		t.Fatalf("MergeSlots: %v", err)
	}
	want := []availsync.TimeSlot{{Start: "10:00", End: "13:00"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeSlots = %v, want %v", got, want)
	}

	if _, err := MergeSlots([]availsync.TimeSlot{{Start: "bad", End: "10:00"}}); err == nil {
		t.Error("MergeSlots accepted garbage input")
	}
}
