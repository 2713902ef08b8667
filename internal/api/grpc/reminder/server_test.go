package reminder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/med-reminder/internal/capability"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	pb "github.com/oshokin/med-reminder/internal/pb/v1"
	"github.com/oshokin/med-reminder/internal/repository/items"
)

// fakeService implements the reminder Service interface for unit testing the transport.
type fakeService struct {
	// setupFn overrides Setup when set.
	setupFn func(ctx context.Context, actor *domain.Actor, ownerID string) (int, error)
	// voicesErr is returned by Voices when set.
	voicesErr error

	// timers are returned by ListActive.
	timers []domain.TimerInfo
	// cleared records the owners passed to Clear.
	cleared []string
	// lastActor is the actor of the latest mutating call.
	lastActor *domain.Actor
	// tested is the item passed to Test.
	tested *domain.Item
	// said is the voice passed to Say.
	said domain.VoiceOptions
}

func (f *fakeService) ListActive(_ context.Context, ownerID string) []domain.TimerInfo {
	if ownerID == "" {
		return f.timers
	}

	var out []domain.TimerInfo

	for _, timer := range f.timers {
		if timer.OwnerID == ownerID {
			out = append(out, timer)
		}
	}

	return out
}

func (f *fakeService) Clear(_ context.Context, actor *domain.Actor, ownerID string) int {
	f.lastActor = actor
	f.cleared = append(f.cleared, ownerID)

	return 3
}

func (f *fakeService) Setup(ctx context.Context, actor *domain.Actor, ownerID string) (int, error) {
	if f.setupFn != nil {
		return f.setupFn(ctx, actor, ownerID)
	}

	f.lastActor = actor

	return 2, nil
}

func (f *fakeService) Reload(_ context.Context, actor *domain.Actor) (domain.ReloadSummary, error) {
	f.lastActor = actor

	return domain.ReloadSummary{Items: 4, Armed: 6, Cleared: 1}, nil
}

func (f *fakeService) Test(_ context.Context, actor *domain.Actor, item *domain.Item) []domain.TimerInfo {
	f.lastActor = actor
	f.tested = item

	return []domain.TimerInfo{{
		OwnerID:     item.ID,
		Spec:        item.TestSchedule[0],
		NextTrigger: time.Date(2026, time.March, 10, 8, 0, 10, 0, time.UTC),
	}}
}

func (f *fakeService) Voices(context.Context) ([]capability.Voice, error) {
	if f.voicesErr != nil {
		return nil, f.voicesErr
	}

	return []capability.Voice{
		{Name: "de-DE-Standard-A", Lang: "de-DE", Default: true},
		{Name: "en-US-Standard-C", Lang: "en-US", Default: true},
	}, nil
}

func (f *fakeService) Say(_ context.Context, text string, voice domain.VoiceOptions) bool {
	f.said = voice

	return text != ""
}

func (f *fakeService) History(_ context.Context, ownerID string, limit int) ([]domain.FiredAlarm, error) {
	return []domain.FiredAlarm{{
		OwnerID:   ownerID,
		Label:     "Aspirin",
		Spec:      domain.TimeSpec{Hour: 8},
		FiredAt:   time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC),
		Delivered: limit > 0,
	}}, nil
}

var actor = &pb.SystemActor{Hostname: "kitchen-pc", Username: "nurse"}

// TestServer_OwnerValidation ensures owner requests without actor or owner id are rejected.
func TestServer_OwnerValidation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))
	ctx := context.Background()

	for _, req := range []*pb.OwnerRequest{
		nil,
		{OwnerID: "rx-1"},
		{Actor: actor},
	} {
		_, err := s.Clear(ctx, req)
		require.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = s.Setup(ctx, req)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	}

	_, err := s.Reload(ctx, new(pb.ReloadRequest))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Test(ctx, &pb.TestRequest{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_ListActive filters by owner and converts durations to seconds.
func TestServer_ListActive(t *testing.T) {
	t.Parallel()

	next := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)
	service := &fakeService{timers: []domain.TimerInfo{
		{OwnerID: "rx-1", Label: "Aspirin", Spec: domain.TimeSpec{Hour: 20}, NextTrigger: next, Remaining: 90 * time.Minute},
		{OwnerID: "rx-2", Label: "Melatonin", Spec: domain.TimeSpec{Hour: 22}, NextTrigger: next.Add(2 * time.Hour)},
	}}

	s := NewServer(service)

	response, err := s.ListActive(context.Background(), &pb.ListActiveRequest{OwnerID: "rx-1"})
	require.NoError(t, err)
	require.Equal(t, []pb.Timer{{
		OwnerID:          "rx-1",
		Label:            "Aspirin",
		Hour:             20,
		NextTrigger:      next,
		RemainingSeconds: 5400,
	}}, response.Timers)

	response, err = s.ListActive(context.Background(), new(pb.ListActiveRequest))
	require.NoError(t, err)
	require.Len(t, response.Timers, 2)

	_, err = s.ListActive(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_ClearAndSetup pass the actor through and report counts.
func TestServer_ClearAndSetup(t *testing.T) {
	t.Parallel()

	service := new(fakeService)
	s := NewServer(service)
	ctx := context.Background()

	cleared, err := s.Clear(ctx, &pb.OwnerRequest{Actor: actor, OwnerID: "rx-1"})
	require.NoError(t, err)
	require.Equal(t, 3, cleared.Count)
	require.Equal(t, []string{"rx-1"}, service.cleared)
	require.Equal(t, &domain.Actor{Hostname: "kitchen-pc", Username: "nurse"}, service.lastActor)

	armed, err := s.Setup(ctx, &pb.OwnerRequest{Actor: actor, OwnerID: "rx-1"})
	require.NoError(t, err)
	require.Equal(t, 2, armed.Count)
}

// TestServer_ErrorMapping maps service errors to gRPC codes.
func TestServer_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("%w: rx-9", items.ErrNotFound), codes.NotFound},
		{fmt.Errorf("%w: duplicate id", items.ErrInvalidItems), codes.FailedPrecondition},
		{errors.New("disk on fire"), codes.Internal},
	}

	for _, tc := range cases {
		service := &fakeService{setupFn: func(context.Context, *domain.Actor, string) (int, error) {
			return 0, tc.err
		}}

		_, err := NewServer(service).Setup(context.Background(), &pb.OwnerRequest{Actor: actor, OwnerID: "rx-9"})
		require.Equal(t, tc.code, status.Code(err), tc.err.Error())
	}

	_, err := NewServer(&fakeService{voicesErr: capability.ErrUnavailable}).Voices(context.Background(), nil)
	require.Equal(t, codes.Unavailable, status.Code(err))
}

// TestServer_Test builds a one-shot item with defaults.
func TestServer_Test(t *testing.T) {
	t.Parallel()

	service := new(fakeService)
	s := NewServer(service)

	response, err := s.Test(context.Background(), &pb.TestRequest{Actor: actor, DelaySeconds: 5, Message: "Ping"})
	require.NoError(t, err)
	require.Equal(t, domain.TestOwnerID, response.OwnerID)
	require.Equal(t, 1, response.Armed)
	require.False(t, response.NextTrigger.IsZero())

	require.Equal(t, domain.TestOwnerID, service.tested.ID)
	require.True(t, service.tested.ReminderEnabled)
	require.Equal(t, domain.TestLabel, service.tested.Label())
	require.Equal(t, domain.TestInstructions, service.tested.Instructions)
	require.Equal(t, "Ping", service.tested.ReminderMessage)
	require.Len(t, service.tested.TestSchedule, 1)
	require.True(t, service.tested.TestSchedule[0].TestMode)
	require.Equal(t, 5*time.Second, service.tested.TestSchedule[0].Delay)

	_, err = s.Test(context.Background(), &pb.TestRequest{Actor: actor, DelaySeconds: -1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Test(context.Background(), &pb.TestRequest{Actor: actor, DelaySeconds: 7200})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_VoicesAndSay lists voices with the preferred English one and speaks.
func TestServer_VoicesAndSay(t *testing.T) {
	t.Parallel()

	service := new(fakeService)
	s := NewServer(service)
	ctx := context.Background()

	voices, err := s.Voices(ctx, new(pb.VoicesRequest))
	require.NoError(t, err)
	require.Len(t, voices.Voices, 2)
	require.Equal(t, "en-US-Standard-C", voices.Preferred)

	said, err := s.Say(ctx, &pb.SayRequest{Text: "Hello", Rate: 1.2})
	require.NoError(t, err)
	require.True(t, said.Spoken)
	require.InDelta(t, 1.2, service.said.Rate, 1e-9)

	_, err = s.Say(ctx, &pb.SayRequest{Volume: 3})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_History converts fired alarms.
func TestServer_History(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	response, err := s.History(context.Background(), &pb.HistoryRequest{OwnerID: "rx-1", Limit: 5})
	require.NoError(t, err)
	require.Equal(t, []pb.FiredAlarm{{
		OwnerID:   "rx-1",
		Label:     "Aspirin",
		Hour:      8,
		Delivered: true,
		FiredAt:   time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC),
	}}, response.Alarms)

	_, err = s.History(context.Background(), &pb.HistoryRequest{Limit: -1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
