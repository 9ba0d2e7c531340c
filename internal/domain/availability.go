package domain

import "sort"

// AvailabilitySet is a deduplicated set of TimeCells. The zero value is an
// empty set ready to use; a nil *AvailabilitySet answers queries as empty.
type AvailabilitySet struct {
	cells map[TimeCell]struct{}
}

func NewAvailabilitySet(cells ...TimeCell) *AvailabilitySet {
	s := &AvailabilitySet{cells: make(map[TimeCell]struct{}, len(cells))}
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
	return s
}

func (s *AvailabilitySet) init() {
	if s.cells == nil {
		s.cells = make(map[TimeCell]struct{})
	}
}

func (s *AvailabilitySet) Add(day, hour int) {
	s.init()
	s.cells[TimeCell{Day: day, Hour: hour}] = struct{}{}
}

func (s *AvailabilitySet) remove(day, hour int) {
	delete(s.cells, TimeCell{Day: day, Hour: hour})
}

// Toggle adds the cell when absent and removes it when present.
func (s *AvailabilitySet) Toggle(day, hour int) {
	if s.Has(day, hour) {
		s.remove(day, hour)
		return
	}
	s.Add(day, hour)
}

func (s *AvailabilitySet) Has(day, hour int) bool {
	if s == nil {
		return false
	}
	_, ok := s.cells[TimeCell{Day: day, Hour: hour}]
	return ok
}

// ToggleDay clears every bounded hour of day when all of them are selected,
// otherwise selects them all. Other days are untouched; days outside the week
// are ignored.
func (s *AvailabilitySet) ToggleDay(day int, bounds Bounds) {
	if !ValidDay(day) {
		return
	}
	full := true
	for h := bounds.MinHour; h < bounds.MaxHour; h++ {
		if !s.Has(day, h) {
			full = false
			break
		}
	}
	for h := bounds.MinHour; h < bounds.MaxHour; h++ {
		if full {
			s.remove(day, h)
		} else {
			s.Add(day, h)
		}
	}
}

// ToggleHour applies the ToggleDay rule to one hour column across the week.
func (s *AvailabilitySet) ToggleHour(hour int, bounds Bounds) {
	if !bounds.Contains(hour) {
		return
	}
	full := true
	for d := 0; d < DaysPerWeek; d++ {
		if !s.Has(d, hour) {
			full = false
			break
		}
	}
	for d := 0; d < DaysPerWeek; d++ {
		if full {
			s.remove(d, hour)
		} else {
			s.Add(d, hour)
		}
	}
}

func (s *AvailabilitySet) Size() int {
	if s == nil {
		return 0
	}
	return len(s.cells)
}

// Intersect returns a new set holding the cells present in both s and other.
func (s *AvailabilitySet) Intersect(other *AvailabilitySet) *AvailabilitySet {
	small, large := s, other
	if small.Size() > large.Size() {
		small, large = large, small
	}
	out := NewAvailabilitySet()
	if small == nil {
		return out
	}
	for c := range small.cells {
		if large.Has(c.Day, c.Hour) {
			out.cells[c] = struct{}{}
		}
	}
	return out
}

// Cells returns the members sorted by day, then hour.
func (s *AvailabilitySet) Cells() []TimeCell {
	if s.Size() == 0 {
		return []TimeCell{}
	}
	out := make([]TimeCell, 0, len(s.cells))
	for c := range s.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

func (s *AvailabilitySet) Equal(other *AvailabilitySet) bool {
	if s.Size() != other.Size() {
		return false
	}
	if s == nil {
		return true
	}
	for c := range s.cells {
		if !other.Has(c.Day, c.Hour) {
			return false
		}
	}
	return true
}

func (s *AvailabilitySet) Clone() *AvailabilitySet {
	out := NewAvailabilitySet()
	if s == nil {
		return out
	}
	for c := range s.cells {
		out.cells[c] = struct{}{}
	}
	return out
}
