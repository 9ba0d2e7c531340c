package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"chazas/backend/internal/domain"
	"chazas/backend/internal/store"
)

type fakeScheduleTx struct {
	listingExistsFn   func(ctx context.Context, listingID uuid.UUID) (bool, error)
	listIntervalsFn   func(ctx context.Context, owner domain.ScheduleOwner) ([]domain.ScheduleInterval, error)
	deleteIntervalsFn func(ctx context.Context, owner domain.ScheduleOwner) error
	insertIntervalsFn func(ctx context.Context, rows []domain.ScheduleInterval) error
}

func (f *fakeScheduleTx) ListingExists(ctx context.Context, listingID uuid.UUID) (bool, error) {
	if f.listingExistsFn == nil {
		panic("ListingExists not configured")
	}
	return f.listingExistsFn(ctx, listingID)
}

func (f *fakeScheduleTx) ListIntervals(ctx context.Context, owner domain.ScheduleOwner) ([]domain.ScheduleInterval, error) {
	if f.listIntervalsFn == nil {
		panic("ListIntervals not configured")
	}
	return f.listIntervalsFn(ctx, owner)
}

func (f *fakeScheduleTx) DeleteIntervals(ctx context.Context, owner domain.ScheduleOwner) error {
	if f.deleteIntervalsFn == nil {
		return nil
	}
	return f.deleteIntervalsFn(ctx, owner)
}

func (f *fakeScheduleTx) InsertIntervals(ctx context.Context, rows []domain.ScheduleInterval) error {
	if f.insertIntervalsFn == nil {
		return nil
	}
	return f.insertIntervalsFn(ctx, rows)
}

func TestReplaceSchedule(t *testing.T) {
	listingID := uuid.MustParse("00000000-0000-0000-0000-000000000101")
	intervals := []domain.Interval{
		{Day: 0, StartHour: 6, EndHour: 9},
		{Day: 3, StartHour: 14, EndHour: 16},
	}

	t.Run("listing rows carry listing id", func(t *testing.T) {
		var deleted domain.ScheduleOwner
		var inserted []domain.ScheduleInterval

		tx := &fakeScheduleTx{
			listingExistsFn: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return id == listingID, nil
			},
			deleteIntervalsFn: func(ctx context.Context, owner domain.ScheduleOwner) error {
				deleted = owner
				return nil
			},
			insertIntervalsFn: func(ctx context.Context, rows []domain.ScheduleInterval) error {
				inserted = rows
				return nil
			},
		}

		owner := domain.ScheduleOwner{Kind: domain.OwnerKindListing, ID: listingID.String()}
		if err := replaceSchedule(context.Background(), tx, owner, intervals); err != nil {
			t.Fatalf("replaceSchedule error: %v", err)
		}
		if deleted != owner {
			t.Fatalf("deleted owner = %v, want %v", deleted, owner)
		}
		if len(inserted) != 2 {
			t.Fatalf("len(inserted) = %d, want 2", len(inserted))
		}
		for i, row := range inserted {
			if row.ListingID == nil || *row.ListingID != listingID {
				t.Fatalf("row %d listing_id = %v, want %s", i, row.ListingID, listingID)
			}
			if row.Interval() != intervals[i] {
				t.Fatalf("row %d = %v, want %v", i, row.Interval(), intervals[i])
			}
		}
	})

	t.Run("missing listing is not found and nothing is deleted", func(t *testing.T) {
		tx := &fakeScheduleTx{
			listingExistsFn: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return false, nil
			},
			deleteIntervalsFn: func(ctx context.Context, owner domain.ScheduleOwner) error {
				t.Fatalf("DeleteIntervals must not run for a missing listing")
				return nil
			},
		}

		owner := domain.ScheduleOwner{Kind: domain.OwnerKindListing, ID: listingID.String()}
		err := replaceSchedule(context.Background(), tx, owner, intervals)
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
		}
	})

	t.Run("non uuid listing id is not found", func(t *testing.T) {
		tx := &fakeScheduleTx{}
		owner := domain.ScheduleOwner{Kind: domain.OwnerKindListing, ID: "chaza-don-carlos"}
		err := replaceSchedule(context.Background(), tx, owner, intervals)
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
		}
	})

	t.Run("seeker rows have no listing id", func(t *testing.T) {
		var inserted []domain.ScheduleInterval
		tx := &fakeScheduleTx{
			insertIntervalsFn: func(ctx context.Context, rows []domain.ScheduleInterval) error {
				inserted = rows
				return nil
			},
		}

		owner := domain.ScheduleOwner{Kind: domain.OwnerKindSeeker, ID: "u1"}
		if err := replaceSchedule(context.Background(), tx, owner, intervals); err != nil {
			t.Fatalf("replaceSchedule error: %v", err)
		}
		for _, row := range inserted {
			if row.ListingID != nil {
				t.Fatalf("seeker row has listing_id %v", *row.ListingID)
			}
			if row.OwnerKind != domain.OwnerKindSeeker || row.OwnerID != "u1" {
				t.Fatalf("owner = %s/%s, want seeker/u1", row.OwnerKind, row.OwnerID)
			}
		}
	})
}

func TestReplaceScheduleIfUnchanged(t *testing.T) {
	owner := domain.ScheduleOwner{Kind: domain.OwnerKindSeeker, ID: "u1"}
	base := []domain.Interval{{Day: 1, StartHour: 10, EndHour: 13}}
	next := []domain.Interval{{Day: 1, StartHour: 10, EndHour: 14}}

	// Stored rows split across two records still equal the normalized base.
	stored := []domain.ScheduleInterval{
		{OwnerKind: owner.Kind, OwnerID: owner.ID, DayOfWeek: 1, StartHour: 12, EndHour: 13},
		{OwnerKind: owner.Kind, OwnerID: owner.ID, DayOfWeek: 1, StartHour: 10, EndHour: 12},
	}

	t.Run("matching base replaces", func(t *testing.T) {
		var inserted []domain.ScheduleInterval
		tx := &fakeScheduleTx{
			listIntervalsFn: func(ctx context.Context, o domain.ScheduleOwner) ([]domain.ScheduleInterval, error) {
				return stored, nil
			},
			insertIntervalsFn: func(ctx context.Context, rows []domain.ScheduleInterval) error {
				inserted = rows
				return nil
			},
		}
		if err := replaceScheduleIfUnchanged(context.Background(), tx, owner, base, next); err != nil {
			t.Fatalf("replaceScheduleIfUnchanged error: %v", err)
		}
		if len(inserted) != 1 || inserted[0].Interval() != next[0] {
			t.Fatalf("inserted = %v, want %v", inserted, next)
		}
	})

	t.Run("changed schedule conflicts and writes nothing", func(t *testing.T) {
		tx := &fakeScheduleTx{
			listIntervalsFn: func(ctx context.Context, o domain.ScheduleOwner) ([]domain.ScheduleInterval, error) {
				return stored[:1], nil
			},
			deleteIntervalsFn: func(ctx context.Context, o domain.ScheduleOwner) error {
				t.Fatalf("DeleteIntervals must not run on conflict")
				return nil
			},
		}
		err := replaceScheduleIfUnchanged(context.Background(), tx, owner, base, next)
		if !errors.Is(err, store.ErrConflict) {
			t.Fatalf("err = %v, want %v", err, store.ErrConflict)
		}
	})
}

func TestGroupProviderSchedules(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000201")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000202")

	listings := []domain.Listing{
		{ID: a, Title: "Chaza A"},
		{ID: b, Title: "Chaza B"},
	}
	rows := []domain.ScheduleInterval{
		{ListingID: &a, DayOfWeek: 2, StartHour: 10, EndHour: 12},
		{ListingID: &a, DayOfWeek: 0, StartHour: 6, EndHour: 8},
		{ListingID: nil, DayOfWeek: 1, StartHour: 6, EndHour: 8},
	}

	got := groupProviderSchedules(listings, rows)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].ListingID != a || got[0].Title != "Chaza A" {
		t.Fatalf("got[0] = %+v, want listing A", got[0])
	}
	want := []domain.Interval{
		{Day: 0, StartHour: 6, EndHour: 8},
		{Day: 2, StartHour: 10, EndHour: 12},
	}
	if !domain.IntervalsEqual(got[0].Intervals, want) {
		t.Fatalf("intervals = %v, want %v", got[0].Intervals, want)
	}
	if got[1].Intervals == nil || len(got[1].Intervals) != 0 {
		t.Fatalf("listing without rows must have an empty, non-nil list: %v", got[1].Intervals)
	}
}
