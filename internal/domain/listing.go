package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Listing is a vendor's published offer. Only active listings take part in
// matching.
type Listing struct {
	bun.BaseModel `bun:"table:listings"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID   string    `bun:"owner_id,notnull"`
	Title     string    `bun:"title,notnull"`
	IsActive  bool      `bun:"is_active,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (l *Listing) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if l.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			l.ID = id
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		l.UpdatedAt = now
	}
	return nil
}

// ScheduleInterval is the persisted row behind one Interval.
type ScheduleInterval struct {
	bun.BaseModel `bun:"table:availability_intervals"`

	ID        int64      `bun:"id,pk,autoincrement"`
	OwnerKind OwnerKind  `bun:"owner_kind,notnull"`
	OwnerID   string     `bun:"owner_id,notnull"`
	ListingID *uuid.UUID `bun:"listing_id,type:uuid"`
	DayOfWeek int        `bun:"day_of_week,notnull"`
	StartHour int        `bun:"start_hour,notnull"`
	EndHour   int        `bun:"end_hour,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
}

func (r *ScheduleInterval) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (r ScheduleInterval) Interval() Interval {
	return Interval{Day: r.DayOfWeek, StartHour: r.StartHour, EndHour: r.EndHour}
}

// Draft is an in-progress edit of one owner's schedule. Base holds the
// intervals the draft was opened from, used to detect concurrent saves.
type Draft struct {
	ID        uuid.UUID
	Owner     ScheduleOwner
	Bounds    Bounds
	Cells     []TimeCell
	Base      []Interval
	ExpiresAt time.Time
}

func (d Draft) Set() *AvailabilitySet {
	return NewAvailabilitySet(d.Cells...)
}

// Intervals encodes every cell of the draft. Bounds only limits what the
// draft can toggle; hours outside it that came from the stored schedule are
// kept.
func (d Draft) Intervals() []Interval {
	return Encode(d.Set(), FullDay())
}
