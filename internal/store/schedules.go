package store

import (
	"context"

	"github.com/google/uuid"

	"chazas/backend/internal/domain"
)

// ScheduleRepository persists weekly availability as interval lists. Save
// replaces the owner's whole schedule.
type ScheduleRepository interface {
	Load(ctx context.Context, owner domain.ScheduleOwner) ([]domain.Interval, error)
	Save(ctx context.Context, owner domain.ScheduleOwner, intervals []domain.Interval) error
	// SaveIfUnchanged replaces the schedule only while the stored intervals,
	// normalized, still equal base. Otherwise it returns ErrConflict.
	SaveIfUnchanged(ctx context.Context, owner domain.ScheduleOwner, base, intervals []domain.Interval) error
	ListProviderSchedules(ctx context.Context) ([]ProviderSchedule, error)
}

type ProviderSchedule struct {
	ListingID uuid.UUID
	Title     string
	Intervals []domain.Interval
}

type DraftStore interface {
	Put(ctx context.Context, draft domain.Draft) error
	Get(ctx context.Context, id uuid.UUID) (domain.Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
