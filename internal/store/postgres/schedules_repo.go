package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"chazas/backend/internal/domain"
	"chazas/backend/internal/store"
)

const pgForeignKeyViolation = "23503"

type ScheduleRepo struct {
	db *bun.DB
}

func NewScheduleRepo(db *bun.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

type scheduleTx struct {
	tx bun.IDB
}

func (r *ScheduleRepo) Load(ctx context.Context, owner domain.ScheduleOwner) ([]domain.Interval, error) {
	tx := scheduleTx{tx: r.db}
	if owner.Kind == domain.OwnerKindListing {
		if err := ensureListingExists(ctx, tx, owner); err != nil {
			return nil, err
		}
	}

	rows, err := tx.ListIntervals(ctx, owner)
	if err != nil {
		return nil, err
	}
	return toIntervals(rows), nil
}

func (r *ScheduleRepo) Save(ctx context.Context, owner domain.ScheduleOwner, intervals []domain.Interval) error {
	return r.InOwnerTransaction(ctx, owner, func(ctx context.Context, tx store.ScheduleTx) error {
		return replaceSchedule(ctx, tx, owner, intervals)
	})
}

func (r *ScheduleRepo) SaveIfUnchanged(ctx context.Context, owner domain.ScheduleOwner, base, intervals []domain.Interval) error {
	return r.InOwnerTransaction(ctx, owner, func(ctx context.Context, tx store.ScheduleTx) error {
		return replaceScheduleIfUnchanged(ctx, tx, owner, base, intervals)
	})
}

func (r *ScheduleRepo) ListProviderSchedules(ctx context.Context) ([]store.ProviderSchedule, error) {
	var listings []domain.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("is_active = ?", true).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return []store.ProviderSchedule{}, nil
	}

	ids := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}

	var rows []domain.ScheduleInterval
	err = r.db.NewSelect().
		Model(&rows).
		Where("owner_kind = ?", domain.OwnerKindListing).
		Where("listing_id IN (?)", bun.In(ids)).
		OrderExpr("day_of_week ASC, start_hour ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return groupProviderSchedules(listings, rows), nil
}

// InOwnerTransaction serializes writers of the same schedule with a
// transaction-scoped advisory lock.
func (r *ScheduleRepo) InOwnerTransaction(ctx context.Context, owner domain.ScheduleOwner, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockOwnerSchedule(ctx, tx, owner); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{tx: &tx})
	})
}

func lockOwnerSchedule(ctx context.Context, tx bun.Tx, owner domain.ScheduleOwner) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", owner.String()).Exec(ctx)
	return err
}

func (r scheduleTx) ListingExists(ctx context.Context, listingID uuid.UUID) (bool, error) {
	return r.tx.NewSelect().
		Model((*domain.Listing)(nil)).
		Where("id = ?", listingID).
		Exists(ctx)
}

func (r scheduleTx) ListIntervals(ctx context.Context, owner domain.ScheduleOwner) ([]domain.ScheduleInterval, error) {
	var rows []domain.ScheduleInterval
	err := r.tx.NewSelect().
		Model(&rows).
		Where("owner_kind = ?", owner.Kind).
		Where("owner_id = ?", owner.ID).
		OrderExpr("day_of_week ASC, start_hour ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r scheduleTx) DeleteIntervals(ctx context.Context, owner domain.ScheduleOwner) error {
	_, err := r.tx.NewDelete().
		Model((*domain.ScheduleInterval)(nil)).
		Where("owner_kind = ?", owner.Kind).
		Where("owner_id = ?", owner.ID).
		Exec(ctx)
	return err
}

func (r scheduleTx) InsertIntervals(ctx context.Context, rows []domain.ScheduleInterval) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := r.tx.NewInsert().Model(&rows).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func ensureListingExists(ctx context.Context, tx store.ScheduleTx, owner domain.ScheduleOwner) error {
	listingID, err := uuid.Parse(owner.ID)
	if err != nil {
		return store.ErrNotFound
	}
	ok, err := tx.ListingExists(ctx, listingID)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func replaceSchedule(ctx context.Context, tx store.ScheduleTx, owner domain.ScheduleOwner, intervals []domain.Interval) error {
	var listingID *uuid.UUID
	if owner.Kind == domain.OwnerKindListing {
		if err := ensureListingExists(ctx, tx, owner); err != nil {
			return err
		}
		id := uuid.MustParse(owner.ID)
		listingID = &id
	}

	if err := tx.DeleteIntervals(ctx, owner); err != nil {
		return err
	}

	rows := make([]domain.ScheduleInterval, 0, len(intervals))
	for _, iv := range intervals {
		rows = append(rows, domain.ScheduleInterval{
			OwnerKind: owner.Kind,
			OwnerID:   owner.ID,
			ListingID: listingID,
			DayOfWeek: iv.Day,
			StartHour: iv.StartHour,
			EndHour:   iv.EndHour,
		})
	}
	return tx.InsertIntervals(ctx, rows)
}

func replaceScheduleIfUnchanged(ctx context.Context, tx store.ScheduleTx, owner domain.ScheduleOwner, base, intervals []domain.Interval) error {
	rows, err := tx.ListIntervals(ctx, owner)
	if err != nil {
		return err
	}
	current, err := domain.NormalizeIntervals(toIntervals(rows))
	if err != nil {
		return fmt.Errorf("stored schedule %s is malformed: %v", owner, err)
	}
	if !domain.IntervalsEqual(current, base) {
		return store.ErrConflict
	}
	return replaceSchedule(ctx, tx, owner, intervals)
}

func toIntervals(rows []domain.ScheduleInterval) []domain.Interval {
	out := make([]domain.Interval, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Interval())
	}
	domain.SortIntervals(out)
	return out
}

func groupProviderSchedules(listings []domain.Listing, rows []domain.ScheduleInterval) []store.ProviderSchedule {
	byListing := make(map[uuid.UUID][]domain.Interval, len(listings))
	for _, r := range rows {
		if r.ListingID == nil {
			continue
		}
		byListing[*r.ListingID] = append(byListing[*r.ListingID], r.Interval())
	}

	out := make([]store.ProviderSchedule, 0, len(listings))
	for _, l := range listings {
		intervals := byListing[l.ID]
		if intervals == nil {
			intervals = []domain.Interval{}
		}
		domain.SortIntervals(intervals)
		out = append(out, store.ProviderSchedule{
			ListingID: l.ID,
			Title:     l.Title,
			Intervals: intervals,
		})
	}
	return out
}
