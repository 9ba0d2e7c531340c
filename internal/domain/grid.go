package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DaysPerWeek  = 7
	HoursPerDay  = 24
	lastWeekday  = DaysPerWeek - 1
	defaultOpen  = 6
	defaultClose = 20
)

// TimeCell is one bookable hour of the week. Day 0 is Monday.
type TimeCell struct {
	Day  int
	Hour int
}

func (c TimeCell) less(o TimeCell) bool {
	if c.Day != o.Day {
		return c.Day < o.Day
	}
	return c.Hour < o.Hour
}

func ValidDay(day int) bool {
	return day >= 0 && day <= lastWeekday
}

// Bounds is the editable hour range of the grid, [MinHour, MaxHour).
type Bounds struct {
	MinHour int
	MaxHour int
}

// FullDay spans every hour, the range stored schedules are validated against.
func FullDay() Bounds {
	return Bounds{MinHour: 0, MaxHour: HoursPerDay}
}

func DefaultBounds() Bounds {
	return Bounds{MinHour: defaultOpen, MaxHour: defaultClose}
}

func (b Bounds) Validate() error {
	if b.MinHour < 0 || b.MaxHour > HoursPerDay {
		return NewValidationError("grid hours must be within 0-24")
	}
	if b.MinHour >= b.MaxHour {
		return NewValidationError("grid close must be after grid open")
	}
	return nil
}

func (b Bounds) Contains(hour int) bool {
	return hour >= b.MinHour && hour < b.MaxHour
}

func (b Bounds) Hours() []int {
	if b.MaxHour <= b.MinHour {
		return nil
	}
	out := make([]int, 0, b.MaxHour-b.MinHour)
	for h := b.MinHour; h < b.MaxHour; h++ {
		out = append(out, h)
	}
	return out
}

// ParseBounds builds grid bounds from opening and closing clock times such as
// "06:00" and "20:00". Only whole hours are accepted.
func ParseBounds(open, close string) (Bounds, error) {
	minHour, err := parseWholeHour(open)
	if err != nil {
		return Bounds{}, NewValidationError(fmt.Sprintf("invalid grid open %q", open))
	}
	maxHour, err := parseWholeHour(close)
	if err != nil {
		return Bounds{}, NewValidationError(fmt.Sprintf("invalid grid close %q", close))
	}
	b := Bounds{MinHour: minHour, MaxHour: maxHour}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

func parseWholeHour(s string) (int, error) {
	s = strings.TrimSpace(s)
	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, err
	}
	if hasMinutes {
		minutes, err := strconv.Atoi(minutePart)
		if err != nil {
			return 0, err
		}
		if minutes != 0 {
			return 0, fmt.Errorf("sub-hour time %q", s)
		}
	}
	if hour < 0 || hour > HoursPerDay {
		return 0, fmt.Errorf("hour out of range: %d", hour)
	}
	return hour, nil
}

type OwnerKind string

const (
	OwnerKindListing OwnerKind = "listing"
	OwnerKindSeeker  OwnerKind = "seeker"
)

// ScheduleOwner identifies whose weekly availability is stored: a listing
// (by listing UUID) or a seeker profile (by user id).
type ScheduleOwner struct {
	Kind OwnerKind
	ID   string
}

func (o ScheduleOwner) String() string {
	return string(o.Kind) + ":" + o.ID
}

func (o ScheduleOwner) Validate() error {
	switch o.Kind {
	case OwnerKindListing, OwnerKindSeeker:
	default:
		return NewValidationError("owner_kind must be listing or seeker")
	}
	if strings.TrimSpace(o.ID) == "" {
		return NewValidationError("owner_id is required")
	}
	return nil
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}
