package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chazas/backend/internal/domain"
	"chazas/backend/internal/store"
)

const (
	defaultDraftTTL     = 30 * time.Minute
	defaultMatchWorkers = 8
)

type Options struct {
	Bounds       domain.Bounds
	DraftTTL     time.Duration
	MatchWorkers int
}

type Service struct {
	schedules store.ScheduleRepository
	drafts    store.DraftStore
	bounds    domain.Bounds
	draftTTL  time.Duration
	workers   int
	now       func() time.Time
}

func NewService(schedules store.ScheduleRepository, drafts store.DraftStore, opts Options) *Service {
	bounds := opts.Bounds
	if bounds.Validate() != nil {
		bounds = domain.DefaultBounds()
	}
	ttl := opts.DraftTTL
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	workers := opts.MatchWorkers
	if workers <= 0 {
		workers = defaultMatchWorkers
	}
	return &Service{
		schedules: schedules,
		drafts:    drafts,
		bounds:    bounds,
		draftTTL:  ttl,
		workers:   workers,
		now:       time.Now,
	}
}

func (s *Service) Bounds() domain.Bounds {
	return s.bounds
}

func (s *Service) GetSchedule(ctx context.Context, owner domain.ScheduleOwner) ([]domain.Interval, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.loadNormalized(ctx, owner)
}

// ReplaceSchedule validates the whole list before anything is written and
// stores the maximal-run form of it.
func (s *Service) ReplaceSchedule(ctx context.Context, owner domain.ScheduleOwner, intervals []domain.Interval) ([]domain.Interval, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	set, err := domain.Decode(intervals, s.bounds)
	if err != nil {
		return nil, err
	}
	for _, iv := range intervals {
		if iv.StartHour < s.bounds.MinHour || iv.EndHour > s.bounds.MaxHour {
			return nil, domain.NewValidationError(fmt.Sprintf(
				"interval %d-%d on dia_semana %d is outside grid hours %d-%d",
				iv.StartHour, iv.EndHour, iv.Day, s.bounds.MinHour, s.bounds.MaxHour,
			))
		}
	}

	normalized := domain.Encode(set, s.bounds)
	if err := s.schedules.Save(ctx, owner, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func (s *Service) OpenDraft(ctx context.Context, owner domain.ScheduleOwner) (domain.Draft, error) {
	if err := owner.Validate(); err != nil {
		return domain.Draft{}, err
	}
	base, err := s.loadNormalized(ctx, owner)
	if err != nil {
		return domain.Draft{}, err
	}
	set, err := domain.Decode(base, s.bounds)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("stored schedule %s is malformed: %v", owner, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Draft{}, err
	}
	draft := domain.Draft{
		ID:        id,
		Owner:     owner,
		Bounds:    s.bounds,
		Cells:     set.Cells(),
		Base:      base,
		ExpiresAt: s.now().Add(s.draftTTL).UTC(),
	}
	if err := s.drafts.Put(ctx, draft); err != nil {
		return domain.Draft{}, err
	}
	return draft, nil
}

func (s *Service) ToggleCell(ctx context.Context, draftID uuid.UUID, day, hour int) (domain.Draft, error) {
	return s.editDraft(ctx, draftID, func(set *domain.AvailabilitySet, bounds domain.Bounds) error {
		if err := validateDay(day); err != nil {
			return err
		}
		if err := validateHour(hour, bounds); err != nil {
			return err
		}
		set.Toggle(day, hour)
		return nil
	})
}

func (s *Service) ToggleDay(ctx context.Context, draftID uuid.UUID, day int) (domain.Draft, error) {
	return s.editDraft(ctx, draftID, func(set *domain.AvailabilitySet, bounds domain.Bounds) error {
		if err := validateDay(day); err != nil {
			return err
		}
		set.ToggleDay(day, bounds)
		return nil
	})
}

func (s *Service) ToggleHour(ctx context.Context, draftID uuid.UUID, hour int) (domain.Draft, error) {
	return s.editDraft(ctx, draftID, func(set *domain.AvailabilitySet, bounds domain.Bounds) error {
		if err := validateHour(hour, bounds); err != nil {
			return err
		}
		set.ToggleHour(hour, bounds)
		return nil
	})
}

// CommitDraft saves the draft's schedule unless the stored schedule changed
// since the draft was opened, in which case it returns store.ErrConflict and
// keeps the draft.
func (s *Service) CommitDraft(ctx context.Context, draftID uuid.UUID) (domain.ScheduleOwner, []domain.Interval, error) {
	if draftID == uuid.Nil {
		return domain.ScheduleOwner{}, nil, domain.NewValidationError("draft_id is required")
	}
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return domain.ScheduleOwner{}, nil, err
	}

	intervals := draft.Intervals()
	if err := s.schedules.SaveIfUnchanged(ctx, draft.Owner, draft.Base, intervals); err != nil {
		return domain.ScheduleOwner{}, nil, err
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.ScheduleOwner{}, nil, err
	}
	return draft.Owner, intervals, nil
}

func (s *Service) DiscardDraft(ctx context.Context, draftID uuid.UUID) error {
	if draftID == uuid.Nil {
		return domain.NewValidationError("draft_id is required")
	}
	return s.drafts.Delete(ctx, draftID)
}

type MatchInput struct {
	// SeekerID selects a stored seeker profile. When empty, Intervals is used.
	SeekerID  string
	Intervals []domain.Interval
}

type ListingMatch struct {
	domain.CompatibilityResult
	Title string
}

type MatchOutput struct {
	FilterActive bool
	SeekerCells  int
	Results      []ListingMatch
}

func (s *Service) Match(ctx context.Context, in MatchInput) (MatchOutput, error) {
	var seeker *domain.AvailabilitySet
	if in.SeekerID != "" {
		owner := domain.ScheduleOwner{Kind: domain.OwnerKindSeeker, ID: in.SeekerID}
		intervals, err := s.schedules.Load(ctx, owner)
		if err != nil {
			return MatchOutput{}, err
		}
		seeker, err = domain.Decode(intervals, s.bounds)
		if err != nil {
			return MatchOutput{}, fmt.Errorf("stored schedule %s is malformed: %v", owner, err)
		}
	} else {
		var err error
		seeker, err = domain.Decode(in.Intervals, s.bounds)
		if err != nil {
			return MatchOutput{}, err
		}
	}

	schedules, err := s.schedules.ListProviderSchedules(ctx)
	if err != nil {
		return MatchOutput{}, err
	}
	providers, err := s.decodeProviders(ctx, schedules)
	if err != nil {
		return MatchOutput{}, err
	}

	titles := make(map[string]string, len(schedules))
	for _, p := range schedules {
		titles[p.ListingID.String()] = p.Title
	}

	results := domain.Match(seeker, providers)
	out := MatchOutput{
		FilterActive: seeker.Size() > 0,
		SeekerCells:  seeker.Size(),
		Results:      make([]ListingMatch, 0, len(results)),
	}
	for _, r := range results {
		out.Results = append(out.Results, ListingMatch{CompatibilityResult: r, Title: titles[r.ProviderID]})
	}
	return out, nil
}

func (s *Service) decodeProviders(ctx context.Context, schedules []store.ProviderSchedule) ([]domain.Provider, error) {
	providers := make([]domain.Provider, len(schedules))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range schedules {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := domain.Decode(p.Intervals, s.bounds)
			if err != nil {
				return fmt.Errorf("stored schedule for listing %s is malformed: %v", p.ListingID, err)
			}
			providers[i] = domain.Provider{ID: p.ListingID.String(), Set: set}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return providers, nil
}

func (s *Service) editDraft(ctx context.Context, draftID uuid.UUID, edit func(set *domain.AvailabilitySet, bounds domain.Bounds) error) (domain.Draft, error) {
	if draftID == uuid.Nil {
		return domain.Draft{}, domain.NewValidationError("draft_id is required")
	}
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return domain.Draft{}, err
	}

	set := draft.Set()
	if err := edit(set, draft.Bounds); err != nil {
		return domain.Draft{}, err
	}
	draft.Cells = set.Cells()
	draft.ExpiresAt = s.now().Add(s.draftTTL).UTC()

	if err := s.drafts.Put(ctx, draft); err != nil {
		return domain.Draft{}, err
	}
	return draft, nil
}

func (s *Service) loadNormalized(ctx context.Context, owner domain.ScheduleOwner) ([]domain.Interval, error) {
	intervals, err := s.schedules.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	normalized, err := domain.NormalizeIntervals(intervals)
	if err != nil {
		return nil, fmt.Errorf("stored schedule %s is malformed: %v", owner, err)
	}
	return normalized, nil
}

func validateDay(day int) error {
	if !domain.ValidDay(day) {
		return domain.NewValidationError(fmt.Sprintf("dia_semana must be between 0 and 6, got %d", day))
	}
	return nil
}

func validateHour(hour int, bounds domain.Bounds) error {
	if !bounds.Contains(hour) {
		return domain.NewValidationError(fmt.Sprintf("hour %d is outside grid hours %d-%d", hour, bounds.MinHour, bounds.MaxHour))
	}
	return nil
}
