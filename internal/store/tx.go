package store

import (
	"context"

	"github.com/google/uuid"

	"chazas/backend/internal/domain"
)

type ScheduleTx interface {
	ListingExists(ctx context.Context, listingID uuid.UUID) (bool, error)
	ListIntervals(ctx context.Context, owner domain.ScheduleOwner) ([]domain.ScheduleInterval, error)
	DeleteIntervals(ctx context.Context, owner domain.ScheduleOwner) error
	InsertIntervals(ctx context.Context, rows []domain.ScheduleInterval) error
}
