package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"chazas/backend/internal/domain"
	"chazas/backend/internal/service/availability"
	"chazas/backend/internal/store"
)

type AvailabilityServer struct {
	svc availabilityService
	log *slog.Logger
}

type availabilityService interface {
	GetSchedule(ctx context.Context, owner domain.ScheduleOwner) ([]domain.Interval, error)
	ReplaceSchedule(ctx context.Context, owner domain.ScheduleOwner, intervals []domain.Interval) ([]domain.Interval, error)
	OpenDraft(ctx context.Context, owner domain.ScheduleOwner) (domain.Draft, error)
	ToggleCell(ctx context.Context, draftID uuid.UUID, day, hour int) (domain.Draft, error)
	ToggleDay(ctx context.Context, draftID uuid.UUID, day int) (domain.Draft, error)
	ToggleHour(ctx context.Context, draftID uuid.UUID, hour int) (domain.Draft, error)
	CommitDraft(ctx context.Context, draftID uuid.UUID) (domain.ScheduleOwner, []domain.Interval, error)
	DiscardDraft(ctx context.Context, draftID uuid.UUID) error
	Match(ctx context.Context, in availability.MatchInput) (availability.MatchOutput, error)
}

func NewAvailabilityServer(svc availabilityService, log *slog.Logger) *AvailabilityServer {
	if log == nil {
		log = slog.Default()
	}
	return &AvailabilityServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.availability")),
	}
}

func (s *AvailabilityServer) rpcLogger(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := requestID(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

func (s *AvailabilityServer) GetSchedule(ctx context.Context, req *GetScheduleRequest) (*ScheduleResponse, error) {
	log := s.rpcLogger(ctx, "GetSchedule")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	owner := toDomainOwner(req.Owner)

	intervals, err := s.svc.GetSchedule(ctx, owner)
	if err != nil {
		return nil, statusFromError(log, err, "schedule get failed", "schedule owner not found", slog.String("owner", owner.String()))
	}

	log.Debug("schedule loaded", slog.String("owner", owner.String()), slog.Int("count", len(intervals)))
	return &ScheduleResponse{Owner: fromDomainOwner(owner), Intervals: intervals}, nil
}

func (s *AvailabilityServer) ReplaceSchedule(ctx context.Context, req *ReplaceScheduleRequest) (*ScheduleResponse, error) {
	log := s.rpcLogger(ctx, "ReplaceSchedule")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	owner := toDomainOwner(req.Owner)

	intervals, err := s.svc.ReplaceSchedule(ctx, owner, req.Intervals)
	if err != nil {
		return nil, statusFromError(log, err, "schedule replace failed", "schedule owner not found", slog.String("owner", owner.String()))
	}

	log.Info(
		"schedule replaced",
		slog.String("owner", owner.String()),
		slog.Int("submitted", len(req.Intervals)),
		slog.Int("stored", len(intervals)),
	)
	return &ScheduleResponse{Owner: fromDomainOwner(owner), Intervals: intervals}, nil
}

func (s *AvailabilityServer) OpenDraft(ctx context.Context, req *OpenDraftRequest) (*DraftResponse, error) {
	log := s.rpcLogger(ctx, "OpenDraft")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	owner := toDomainOwner(req.Owner)

	draft, err := s.svc.OpenDraft(ctx, owner)
	if err != nil {
		return nil, statusFromError(log, err, "draft open failed", "schedule owner not found", slog.String("owner", owner.String()))
	}

	log.Info("draft opened", slog.String("draft_id", draft.ID.String()), slog.String("owner", owner.String()))
	return &DraftResponse{Draft: toDraft(draft)}, nil
}

func (s *AvailabilityServer) ToggleCell(ctx context.Context, req *ToggleCellRequest) (*DraftResponse, error) {
	log := s.rpcLogger(ctx, "ToggleCell")

	id, err := parseDraftRequest(log, req == nil, func() string { return req.DraftID })
	if err != nil {
		return nil, err
	}

	draft, err := s.svc.ToggleCell(ctx, id, req.Day, req.Hour)
	if err != nil {
		return nil, statusFromError(log, err, "draft toggle failed", "draft not found or expired", slog.String("draft_id", id.String()))
	}
	log.Debug("cell toggled", slog.String("draft_id", id.String()), slog.Int("dia_semana", req.Day), slog.Int("hora", req.Hour))
	return &DraftResponse{Draft: toDraft(draft)}, nil
}

func (s *AvailabilityServer) ToggleDay(ctx context.Context, req *ToggleDayRequest) (*DraftResponse, error) {
	log := s.rpcLogger(ctx, "ToggleDay")

	id, err := parseDraftRequest(log, req == nil, func() string { return req.DraftID })
	if err != nil {
		return nil, err
	}

	draft, err := s.svc.ToggleDay(ctx, id, req.Day)
	if err != nil {
		return nil, statusFromError(log, err, "draft toggle failed", "draft not found or expired", slog.String("draft_id", id.String()))
	}
	log.Debug("day toggled", slog.String("draft_id", id.String()), slog.Int("dia_semana", req.Day))
	return &DraftResponse{Draft: toDraft(draft)}, nil
}

func (s *AvailabilityServer) ToggleHour(ctx context.Context, req *ToggleHourRequest) (*DraftResponse, error) {
	log := s.rpcLogger(ctx, "ToggleHour")

	id, err := parseDraftRequest(log, req == nil, func() string { return req.DraftID })
	if err != nil {
		return nil, err
	}

	draft, err := s.svc.ToggleHour(ctx, id, req.Hour)
	if err != nil {
		return nil, statusFromError(log, err, "draft toggle failed", "draft not found or expired", slog.String("draft_id", id.String()))
	}
	log.Debug("hour toggled", slog.String("draft_id", id.String()), slog.Int("hora", req.Hour))
	return &DraftResponse{Draft: toDraft(draft)}, nil
}

func (s *AvailabilityServer) CommitDraft(ctx context.Context, req *CommitDraftRequest) (*ScheduleResponse, error) {
	log := s.rpcLogger(ctx, "CommitDraft")

	id, err := parseDraftRequest(log, req == nil, func() string { return req.DraftID })
	if err != nil {
		return nil, err
	}

	owner, intervals, err := s.svc.CommitDraft(ctx, id)
	if err != nil {
		return nil, statusFromError(log, err, "draft commit failed", "draft not found or expired", slog.String("draft_id", id.String()))
	}

	log.Info(
		"draft committed",
		slog.String("draft_id", id.String()),
		slog.String("owner", owner.String()),
		slog.Int("stored", len(intervals)),
	)
	return &ScheduleResponse{Owner: fromDomainOwner(owner), Intervals: intervals}, nil
}

func (s *AvailabilityServer) DiscardDraft(ctx context.Context, req *DiscardDraftRequest) (*DiscardDraftResponse, error) {
	log := s.rpcLogger(ctx, "DiscardDraft")

	id, err := parseDraftRequest(log, req == nil, func() string { return req.DraftID })
	if err != nil {
		return nil, err
	}

	if err := s.svc.DiscardDraft(ctx, id); err != nil {
		return nil, statusFromError(log, err, "draft discard failed", "draft not found or expired", slog.String("draft_id", id.String()))
	}

	log.Info("draft discarded", slog.String("draft_id", id.String()))
	return &DiscardDraftResponse{}, nil
}

func (s *AvailabilityServer) MatchListings(ctx context.Context, req *MatchListingsRequest) (*MatchListingsResponse, error) {
	log := s.rpcLogger(ctx, "MatchListings")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	seekerID := strings.TrimSpace(req.SeekerID)

	out, err := s.svc.Match(ctx, availability.MatchInput{SeekerID: seekerID, Intervals: req.Intervals})
	if err != nil {
		return nil, statusFromError(log, err, "listing match failed", "seeker not found", slog.String("seeker_id", seekerID))
	}

	matches := make([]ListingMatch, 0, len(out.Results))
	for _, r := range out.Results {
		matches = append(matches, ListingMatch{
			ListingID:         r.ProviderID,
			Title:             r.Title,
			IntersectionCount: r.IntersectionCount,
			Percentage:        r.Percentage,
			Tier:              string(r.Tier()),
			Cells:             toCells(r.Intersection.Cells()),
		})
	}

	log.Debug(
		"listings matched",
		slog.String("seeker_id", seekerID),
		slog.Bool("filter_active", out.FilterActive),
		slog.Int("seeker_cells", out.SeekerCells),
		slog.Int("count", len(matches)),
	)
	return &MatchListingsResponse{
		FilterActive: out.FilterActive,
		SeekerCells:  out.SeekerCells,
		Matches:      matches,
	}, nil
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-request-id")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func parseDraftRequest(log *slog.Logger, nilRequest bool, draftID func() string) (uuid.UUID, error) {
	if nilRequest {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return uuid.Nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(strings.TrimSpace(draftID()))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return uuid.Nil, status.Error(codes.InvalidArgument, "draft_id must be a UUID")
	}
	return id, nil
}

func statusFromError(log *slog.Logger, err error, failMsg, notFoundMsg string, attrs ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		log.Info(notFoundMsg, attrs...)
		return status.Error(codes.NotFound, notFoundMsg)
	}
	if errors.Is(err, store.ErrConflict) {
		log.Info("draft commit conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "The schedule changed since this draft was opened. Open a new draft and try again.")
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn(failMsg, append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}
	log.Error(failMsg, append([]any{slog.Any("err", err)}, attrs...)...)
	return status.Error(codes.Internal, "internal error")
}

func toDomainOwner(o ScheduleOwner) domain.ScheduleOwner {
	return domain.ScheduleOwner{
		Kind: domain.OwnerKind(strings.ToLower(strings.TrimSpace(o.Kind))),
		ID:   strings.TrimSpace(o.ID),
	}
}

func fromDomainOwner(o domain.ScheduleOwner) ScheduleOwner {
	return ScheduleOwner{Kind: string(o.Kind), ID: o.ID}
}

func toCells(cells []domain.TimeCell) []Cell {
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		out = append(out, Cell{Day: c.Day, Hour: c.Hour})
	}
	return out
}

func toDraft(d domain.Draft) Draft {
	return Draft{
		ID:        d.ID.String(),
		Owner:     fromDomainOwner(d.Owner),
		OpenHour:  d.Bounds.MinHour,
		CloseHour: d.Bounds.MaxHour,
		Cells:     toCells(d.Set().Cells()),
		Intervals: d.Intervals(),
		ExpiresAt: d.ExpiresAt,
	}
}
