package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"chazas/backend/internal/domain"
	"chazas/backend/internal/store"
)

const draftKeyPrefix = "draft:"

type Options struct {
	Addr     string
	Password string
	DB       int
}

func Open(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// DraftStore keeps editing sessions in Redis. Each draft expires at its
// ExpiresAt; a later Put refreshes the expiry.
type DraftStore struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewDraftStore(client goredis.Cmdable) *DraftStore {
	return &DraftStore{client: client, now: time.Now}
}

type draftRecord struct {
	ID        string           `msgpack:"id"`
	OwnerKind string           `msgpack:"owner_kind"`
	OwnerID   string           `msgpack:"owner_id"`
	MinHour   int              `msgpack:"min_hour"`
	MaxHour   int              `msgpack:"max_hour"`
	Cells     []cellRecord     `msgpack:"cells"`
	Base      []intervalRecord `msgpack:"base"`
	ExpiresAt int64            `msgpack:"expires_at"`
}

type cellRecord struct {
	_msgpack struct{} `msgpack:",as_array"`
	Day      int
	Hour     int
}

type intervalRecord struct {
	_msgpack  struct{} `msgpack:",as_array"`
	Day       int
	StartHour int
	EndHour   int
}

func draftKey(id uuid.UUID) string {
	return draftKeyPrefix + id.String()
}

func (s *DraftStore) Put(ctx context.Context, draft domain.Draft) error {
	ttl := draft.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return store.ErrNotFound
	}
	data, err := marshalDraft(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.ID), data, ttl).Err()
}

func (s *DraftStore) Get(ctx context.Context, id uuid.UUID) (domain.Draft, error) {
	data, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Draft{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Draft{}, err
	}
	return unmarshalDraft(data)
}

func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.client.Del(ctx, draftKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func marshalDraft(d domain.Draft) ([]byte, error) {
	rec := draftRecord{
		ID:        d.ID.String(),
		OwnerKind: string(d.Owner.Kind),
		OwnerID:   d.Owner.ID,
		MinHour:   d.Bounds.MinHour,
		MaxHour:   d.Bounds.MaxHour,
		Cells:     make([]cellRecord, 0, len(d.Cells)),
		Base:      make([]intervalRecord, 0, len(d.Base)),
		ExpiresAt: d.ExpiresAt.UTC().UnixMilli(),
	}
	for _, c := range d.Cells {
		rec.Cells = append(rec.Cells, cellRecord{Day: c.Day, Hour: c.Hour})
	}
	for _, iv := range d.Base {
		rec.Base = append(rec.Base, intervalRecord{Day: iv.Day, StartHour: iv.StartHour, EndHour: iv.EndHour})
	}
	return msgpack.Marshal(&rec)
}

func unmarshalDraft(data []byte) (domain.Draft, error) {
	var rec draftRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return domain.Draft{}, err
	}
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return domain.Draft{}, err
	}

	d := domain.Draft{
		ID:        id,
		Owner:     domain.ScheduleOwner{Kind: domain.OwnerKind(rec.OwnerKind), ID: rec.OwnerID},
		Bounds:    domain.Bounds{MinHour: rec.MinHour, MaxHour: rec.MaxHour},
		Cells:     make([]domain.TimeCell, 0, len(rec.Cells)),
		Base:      make([]domain.Interval, 0, len(rec.Base)),
		ExpiresAt: time.UnixMilli(rec.ExpiresAt).UTC(),
	}
	for _, c := range rec.Cells {
		d.Cells = append(d.Cells, domain.TimeCell{Day: c.Day, Hour: c.Hour})
	}
	for _, iv := range rec.Base {
		d.Base = append(d.Base, domain.Interval{Day: iv.Day, StartHour: iv.StartHour, EndHour: iv.EndHour})
	}
	return d, nil
}
