package grpc

import (
	"time"

	"chazas/backend/internal/domain"
)

type ScheduleOwner struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type Cell struct {
	Day  int `json:"dia_semana"`
	Hour int `json:"hora"`
}

type GetScheduleRequest struct {
	Owner ScheduleOwner `json:"owner"`
}

type ReplaceScheduleRequest struct {
	Owner     ScheduleOwner     `json:"owner"`
	Intervals []domain.Interval `json:"intervals"`
}

type ScheduleResponse struct {
	Owner     ScheduleOwner     `json:"owner"`
	Intervals []domain.Interval `json:"intervals"`
}

type OpenDraftRequest struct {
	Owner ScheduleOwner `json:"owner"`
}

type ToggleCellRequest struct {
	DraftID string `json:"draft_id"`
	Day     int    `json:"dia_semana"`
	Hour    int    `json:"hora"`
}

type ToggleDayRequest struct {
	DraftID string `json:"draft_id"`
	Day     int    `json:"dia_semana"`
}

type ToggleHourRequest struct {
	DraftID string `json:"draft_id"`
	Hour    int    `json:"hora"`
}

type Draft struct {
	ID        string            `json:"id"`
	Owner     ScheduleOwner     `json:"owner"`
	OpenHour  int               `json:"open_hour"`
	CloseHour int               `json:"close_hour"`
	Cells     []Cell            `json:"cells"`
	Intervals []domain.Interval `json:"intervals"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type DraftResponse struct {
	Draft Draft `json:"draft"`
}

type CommitDraftRequest struct {
	DraftID string `json:"draft_id"`
}

type DiscardDraftRequest struct {
	DraftID string `json:"draft_id"`
}

type DiscardDraftResponse struct{}

// MatchListingsRequest ranks listings against a stored seeker profile when
// SeekerID is set, otherwise against Intervals.
type MatchListingsRequest struct {
	SeekerID  string            `json:"seeker_id,omitempty"`
	Intervals []domain.Interval `json:"intervals,omitempty"`
}

type ListingMatch struct {
	ListingID         string  `json:"listing_id"`
	Title             string  `json:"title"`
	IntersectionCount int     `json:"intersection_count"`
	Percentage        float64 `json:"percentage"`
	Tier              string  `json:"tier"`
	Cells             []Cell  `json:"cells"`
}

type MatchListingsResponse struct {
	FilterActive bool           `json:"filter_active"`
	SeekerCells  int            `json:"seeker_cells"`
	Matches      []ListingMatch `json:"matches"`
}
