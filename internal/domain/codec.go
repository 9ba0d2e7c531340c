package domain

import (
	"fmt"
	"sort"
)

// Interval is the storage and wire form of availability: a maximal run of
// hours on one day, EndHour exclusive.
type Interval struct {
	Day       int `json:"dia_semana"`
	StartHour int `json:"hora_inicio"`
	EndHour   int `json:"hora_fin"`
}

func (iv Interval) Validate() error {
	if !ValidDay(iv.Day) {
		return NewValidationError(fmt.Sprintf("dia_semana must be between 0 and %d, got %d", lastWeekday, iv.Day))
	}
	if iv.StartHour >= iv.EndHour {
		return NewValidationError(fmt.Sprintf("hora_fin must be after hora_inicio (dia_semana %d: %d-%d)", iv.Day, iv.StartHour, iv.EndHour))
	}
	if iv.StartHour < 0 || iv.EndHour > HoursPerDay {
		return NewValidationError(fmt.Sprintf("hours must be within 0-24 (dia_semana %d: %d-%d)", iv.Day, iv.StartHour, iv.EndHour))
	}
	return nil
}

// Decode expands intervals into a cell set. Every interval is validated
// before any cell is added, so a malformed input never yields a partial set.
// Cells outside bounds are kept; bounds only constrain Encode.
func Decode(intervals []Interval, bounds Bounds) (*AvailabilitySet, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	for _, iv := range intervals {
		if err := iv.Validate(); err != nil {
			return nil, err
		}
	}

	set := NewAvailabilitySet()
	for _, iv := range intervals {
		for h := iv.StartHour; h < iv.EndHour; h++ {
			set.Add(iv.Day, h)
		}
	}
	return set, nil
}

// Encode run-length compresses the bounded hours of each day into maximal
// intervals sorted by (day, start).
func Encode(set *AvailabilitySet, bounds Bounds) []Interval {
	out := make([]Interval, 0)
	for day := 0; day < DaysPerWeek; day++ {
		start := -1
		for h := bounds.MinHour; h < bounds.MaxHour; h++ {
			present := set.Has(day, h)
			switch {
			case present && start < 0:
				start = h
			case !present && start >= 0:
				out = append(out, Interval{Day: day, StartHour: start, EndHour: h})
				start = -1
			}
		}
		if start >= 0 {
			out = append(out, Interval{Day: day, StartHour: start, EndHour: bounds.MaxHour})
		}
	}
	return out
}

// NormalizeIntervals merges overlapping or adjacent intervals and sorts them,
// without clipping to any grid.
func NormalizeIntervals(intervals []Interval) ([]Interval, error) {
	set, err := Decode(intervals, FullDay())
	if err != nil {
		return nil, err
	}
	return Encode(set, FullDay()), nil
}

func SortIntervals(intervals []Interval) {
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Day != intervals[j].Day {
			return intervals[i].Day < intervals[j].Day
		}
		return intervals[i].StartHour < intervals[j].StartHour
	})
}

func IntervalsEqual(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
