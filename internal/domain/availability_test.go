package domain

import (
	"errors"
	"testing"
)

func TestAvailabilitySet_ToggleIsIdempotentInPairs(t *testing.T) {
	s := NewAvailabilitySet()

	s.Toggle(2, 10)
	if !s.Has(2, 10) {
		t.Fatalf("cell not added by first toggle")
	}
	s.Toggle(2, 10)
	if s.Has(2, 10) {
		t.Fatalf("cell not removed by second toggle")
	}
	if s.Size() != 0 {
		t.Fatalf("Size = %d, want 0", s.Size())
	}
}

func TestAvailabilitySet_ZeroValueAndNil(t *testing.T) {
	var s AvailabilitySet
	s.Toggle(0, 6)
	if s.Size() != 1 {
		t.Fatalf("Size = %d, want 1", s.Size())
	}

	var nilSet *AvailabilitySet
	if nilSet.Has(0, 6) || nilSet.Size() != 0 {
		t.Fatalf("nil set must behave as empty")
	}
	if got := nilSet.Intersect(&s); got.Size() != 0 {
		t.Fatalf("nil intersect size = %d, want 0", got.Size())
	}
}

func TestAvailabilitySet_NoDuplicates(t *testing.T) {
	s := NewAvailabilitySet(TimeCell{1, 8}, TimeCell{1, 8})
	s.Add(1, 8)
	if s.Size() != 1 {
		t.Fatalf("Size = %d, want 1", s.Size())
	}
}

func TestAvailabilitySet_ToggleDay(t *testing.T) {
	bounds := Bounds{MinHour: 6, MaxHour: 9}
	s := NewAvailabilitySet(TimeCell{0, 6}, TimeCell{0, 7}, TimeCell{0, 8}, TimeCell{1, 7})

	s.ToggleDay(0, bounds)
	for h := 6; h < 9; h++ {
		if s.Has(0, h) {
			t.Fatalf("cell (0,%d) should be cleared", h)
		}
	}
	if !s.Has(1, 7) {
		t.Fatalf("other days must be untouched")
	}

	s.ToggleDay(0, bounds)
	for h := 6; h < 9; h++ {
		if !s.Has(0, h) {
			t.Fatalf("cell (0,%d) should be reselected", h)
		}
	}
}

func TestAvailabilitySet_ToggleDayPartialSelectsAll(t *testing.T) {
	bounds := Bounds{MinHour: 6, MaxHour: 9}
	s := NewAvailabilitySet(TimeCell{3, 7})

	s.ToggleDay(3, bounds)
	if s.Size() != 3 {
		t.Fatalf("Size = %d, want 3", s.Size())
	}
}

func TestAvailabilitySet_ToggleDayIgnoresDaysOutsideWeek(t *testing.T) {
	bounds := Bounds{MinHour: 6, MaxHour: 9}
	s := NewAvailabilitySet(TimeCell{2, 7})

	for _, day := range []int{-1, 7, 9} {
		s.ToggleDay(day, bounds)
	}
	if s.Size() != 1 || !s.Has(2, 7) {
		t.Fatalf("cells = %v, want only (2,7)", s.Cells())
	}
}

func TestDraftIntervals_KeepsCellsOutsideBounds(t *testing.T) {
	d := Draft{
		Bounds: Bounds{MinHour: 6, MaxHour: 20},
		Cells:  []TimeCell{{0, 4}, {0, 5}, {0, 6}, {0, 7}, {3, 21}},
	}
	want := []Interval{
		{Day: 0, StartHour: 4, EndHour: 8},
		{Day: 3, StartHour: 21, EndHour: 22},
	}
	if got := d.Intervals(); !IntervalsEqual(got, want) {
		t.Fatalf("Intervals = %v, want %v", got, want)
	}
}

func TestAvailabilitySet_ToggleHour(t *testing.T) {
	bounds := Bounds{MinHour: 6, MaxHour: 20}
	s := NewAvailabilitySet(TimeCell{0, 12}, TimeCell{0, 13})

	s.ToggleHour(12, bounds)
	for d := 0; d < DaysPerWeek; d++ {
		if !s.Has(d, 12) {
			t.Fatalf("cell (%d,12) should be selected", d)
		}
	}
	if s.Size() != DaysPerWeek+1 {
		t.Fatalf("Size = %d, want %d", s.Size(), DaysPerWeek+1)
	}

	s.ToggleHour(12, bounds)
	if s.Size() != 1 || !s.Has(0, 13) {
		t.Fatalf("cells = %v, want only (0,13)", s.Cells())
	}

	s.ToggleHour(22, bounds)
	if s.Size() != 1 {
		t.Fatalf("hour outside bounds must be ignored, cells = %v", s.Cells())
	}
}

func TestAvailabilitySet_IntersectIsSymmetric(t *testing.T) {
	a := NewAvailabilitySet(TimeCell{1, 8}, TimeCell{1, 9}, TimeCell{2, 14})
	b := NewAvailabilitySet(TimeCell{1, 8}, TimeCell{1, 9}, TimeCell{3, 10}, TimeCell{4, 11})

	ab := a.Intersect(b)
	ba := b.Intersect(a)
	if !ab.Equal(ba) {
		t.Fatalf("a∩b = %v, b∩a = %v", ab.Cells(), ba.Cells())
	}
	if ab.Size() != 2 {
		t.Fatalf("Size = %d, want 2", ab.Size())
	}

	ab.Add(6, 6)
	if a.Has(6, 6) || b.Has(6, 6) {
		t.Fatalf("intersection must not alias its inputs")
	}
}

func TestAvailabilitySet_CellsSorted(t *testing.T) {
	s := NewAvailabilitySet(TimeCell{3, 9}, TimeCell{0, 12}, TimeCell{0, 7})
	got := s.Cells()
	want := []TimeCell{{0, 7}, {0, 12}, {3, 9}}
	if len(got) != len(want) {
		t.Fatalf("Cells = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Cells = %v, want %v", got, want)
		}
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		name    string
		open    string
		close   string
		want    Bounds
		wantErr bool
	}{
		{name: "clock times", open: "06:00", close: "20:00", want: Bounds{MinHour: 6, MaxHour: 20}},
		{name: "bare hours", open: "7", close: "22", want: Bounds{MinHour: 7, MaxHour: 22}},
		{name: "full day", open: "00:00", close: "24:00", want: Bounds{MinHour: 0, MaxHour: 24}},
		{name: "half hour", open: "06:30", close: "20:00", wantErr: true},
		{name: "close before open", open: "20:00", close: "06:00", wantErr: true},
		{name: "garbage", open: "six", close: "20:00", wantErr: true},
		{name: "past midnight", open: "06:00", close: "25:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBounds(tt.open, tt.close)
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("error = %v, want *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBounds error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseBounds = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScheduleOwner_Validate(t *testing.T) {
	if err := (ScheduleOwner{Kind: OwnerKindSeeker, ID: "u1"}).Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if err := (ScheduleOwner{Kind: "vendor", ID: "u1"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if err := (ScheduleOwner{Kind: OwnerKindListing, ID: "  "}).Validate(); err == nil {
		t.Fatalf("expected error for blank id")
	}
}
