package reminder

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/med-reminder/internal/capability"
	"github.com/oshokin/med-reminder/internal/capability/speech"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	pb "github.com/oshokin/med-reminder/internal/pb/v1"
	"github.com/oshokin/med-reminder/internal/repository/items"
)

// maxTestDelay bounds the delay of a test reminder.
const maxTestDelay = time.Hour

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	ListActive(ctx context.Context, ownerID string) []domain.TimerInfo
	Clear(ctx context.Context, actor *domain.Actor, ownerID string) int
	Setup(ctx context.Context, actor *domain.Actor, ownerID string) (int, error)
	Reload(ctx context.Context, actor *domain.Actor) (domain.ReloadSummary, error)
	Test(ctx context.Context, actor *domain.Actor, item *domain.Item) []domain.TimerInfo
	Voices(ctx context.Context) ([]capability.Voice, error)
	Say(ctx context.Context, text string, voice domain.VoiceOptions) bool
	History(ctx context.Context, ownerID string, limit int) ([]domain.FiredAlarm, error)
}

// Server implements the ReminderService gRPC API.
type Server struct {
	// service provides the business logic for reminder operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ListActive returns the armed timers of one owner, or of every owner.
func (s *Server) ListActive(ctx context.Context, req *pb.ListActiveRequest) (*pb.ListActiveResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	infos := s.service.ListActive(ctx, req.OwnerID)

	response := &pb.ListActiveResponse{
		Timers: make([]pb.Timer, 0, len(infos)),
	}

	for _, info := range infos {
		response.Timers = append(response.Timers, toProtoTimer(info))
	}

	return response, nil
}

// Clear stops the timers and alarms of an owner.
func (s *Server) Clear(ctx context.Context, req *pb.OwnerRequest) (*pb.CountResponse, error) {
	if err := validateOwnerRequest(req); err != nil {
		return nil, err
	}

	count := s.service.Clear(ctx, toDomainActor(req.GetActor()), req.OwnerID)

	return &pb.CountResponse{Count: count}, nil
}

// Setup re-arms an item from the items file.
func (s *Server) Setup(ctx context.Context, req *pb.OwnerRequest) (*pb.CountResponse, error) {
	if err := validateOwnerRequest(req); err != nil {
		return nil, err
	}

	count, err := s.service.Setup(ctx, toDomainActor(req.GetActor()), req.OwnerID)
	if err != nil {
		return nil, toStatus(err, "unable to set up reminders")
	}

	return &pb.CountResponse{Count: count}, nil
}

// Reload re-reads the items file and re-arms every item.
func (s *Server) Reload(ctx context.Context, req *pb.ReloadRequest) (*pb.ReloadResponse, error) {
	if req == nil || req.Actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	summary, err := s.service.Reload(ctx, toDomainActor(req.Actor))
	if err != nil {
		return nil, toStatus(err, "unable to reload items")
	}

	return &pb.ReloadResponse{
		Items:   summary.Items,
		Armed:   summary.Armed,
		Cleared: summary.Cleared,
	}, nil
}

// Test arms a one-shot test reminder.
func (s *Server) Test(ctx context.Context, req *pb.TestRequest) (*pb.TestResponse, error) {
	if req == nil || req.Actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	delay := time.Duration(req.DelaySeconds * float64(time.Second))
	if delay < 0 || delay > maxTestDelay {
		return nil, status.Errorf(codes.InvalidArgument, "delay must be between 0 and %s", maxTestDelay)
	}

	label := req.Label
	if label == "" {
		label = domain.TestLabel
	}

	instructions := req.Instructions
	if instructions == "" {
		instructions = domain.TestInstructions
	}

	now := time.Now()
	item := &domain.Item{
		ID:              domain.TestOwnerID,
		ReminderEnabled: true,
		TabletNames:     []string{label},
		Instructions:    instructions,
		ReminderMessage: req.Message,
		TestSchedule: []domain.TimeSpec{{
			Hour:     now.Hour(),
			Minute:   now.Minute(),
			TestMode: true,
			Delay:    delay,
		}},
	}

	armed := s.service.Test(ctx, toDomainActor(req.Actor), item)

	response := &pb.TestResponse{
		OwnerID: domain.TestOwnerID,
		Armed:   len(armed),
	}

	if len(armed) > 0 {
		response.NextTrigger = armed[0].NextTrigger
	}

	return response, nil
}

// Voices lists the speech voices and the preferred one.
func (s *Server) Voices(ctx context.Context, _ *pb.VoicesRequest) (*pb.VoicesResponse, error) {
	voices, err := s.service.Voices(ctx)
	if err != nil {
		return nil, toStatus(err, "unable to list voices")
	}

	response := &pb.VoicesResponse{
		Voices: make([]pb.Voice, 0, len(voices)),
	}

	for _, v := range voices {
		response.Voices = append(response.Voices, pb.Voice{Name: v.Name, Lang: v.Lang, Default: v.Default})
	}

	if preferred, ok := speech.PreferredVoice(voices); ok {
		response.Preferred = preferred.Name
	}

	return response, nil
}

// Say speaks a message with the given voice settings.
func (s *Server) Say(ctx context.Context, req *pb.SayRequest) (*pb.SayResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.Volume < 0 || req.Volume > 1 || req.Rate < 0 || req.Pitch < 0 {
		return nil, status.Error(codes.InvalidArgument, "volume must be 0-1, rate and pitch must not be negative")
	}

	spoken := s.service.Say(ctx, req.Text, domain.VoiceOptions{
		Voice:  req.Voice,
		Volume: req.Volume,
		Rate:   req.Rate,
		Pitch:  req.Pitch,
	})

	return &pb.SayResponse{Spoken: spoken}, nil
}

// History returns recently fired alarms.
func (s *Server) History(ctx context.Context, req *pb.HistoryRequest) (*pb.HistoryResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}

	fired, err := s.service.History(ctx, req.OwnerID, req.Limit)
	if err != nil {
		return nil, toStatus(err, "unable to read history")
	}

	response := &pb.HistoryResponse{
		Alarms: make([]pb.FiredAlarm, 0, len(fired)),
	}

	for _, f := range fired {
		response.Alarms = append(response.Alarms, pb.FiredAlarm{
			OwnerID:   f.OwnerID,
			Label:     f.Label,
			Hour:      f.Spec.Hour,
			Minute:    f.Spec.Minute,
			TestMode:  f.Spec.TestMode,
			Delivered: f.Delivered,
			FiredAt:   f.FiredAt,
		})
	}

	return response, nil
}

// validateOwnerRequest requires an actor and an owner id.
func validateOwnerRequest(req *pb.OwnerRequest) error {
	if req == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetActor() == nil {
		return status.Error(codes.InvalidArgument, "actor is required")
	}

	if req.OwnerID == "" {
		return status.Error(codes.InvalidArgument, "owner id is required")
	}

	return nil
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error, message string) error {
	switch {
	case errors.Is(err, items.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, items.ErrInvalidItems):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, capability.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, message)
	default:
		return status.Error(codes.Internal, message)
	}
}

// toDomainActor converts an API SystemActor to a domain Actor.
func toDomainActor(actor *pb.SystemActor) *domain.Actor {
	if actor == nil {
		return nil
	}

	return &domain.Actor{
		Hostname: actor.GetHostname(),
		Username: actor.GetUsername(),
	}
}

// toProtoTimer converts a domain TimerInfo to an API Timer.
func toProtoTimer(info domain.TimerInfo) pb.Timer {
	return pb.Timer{
		OwnerID:          info.OwnerID,
		Label:            info.Label,
		Hour:             info.Spec.Hour,
		Minute:           info.Spec.Minute,
		TestMode:         info.Spec.TestMode,
		NextTrigger:      info.NextTrigger,
		RemainingSeconds: info.Remaining.Seconds(),
	}
}
