//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oshokin/med-reminder/internal/config"
	pb "github.com/oshokin/med-reminder/internal/pb/v1"
)

// Client wraps the ReminderService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the reminder daemon.
	conn *grpc.ClientConn
	// api is the ReminderService client interface.
	api pb.ReminderServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
	// errOwnerRequired is returned when an owner id is not provided.
	errOwnerRequired = errors.New("owner id must be provided")
)

// Dial establishes a gRPC connection to the reminder daemon.
// The daemon listens on loopback by default, so the transport is insecure.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial reminder server: %w", err)
	}

	client := NewClient(pb.NewReminderServiceClient(conn), opts...)
	client.conn = conn

	return client, nil
}

// NewClient wraps an existing ReminderService client.
func NewClient(api pb.ReminderServiceClient, opts ...Option) *Client {
	client := &Client{
		api:         api,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ListActive returns the armed timers of ownerID, or of every owner when it is empty.
func (c *Client) ListActive(ctx context.Context, ownerID string) ([]pb.Timer, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListActive(callCtx, &pb.ListActiveRequest{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list active timers: %w", err)
	}

	return resp.Timers, nil
}

// Clear stops the timers and alarms of ownerID and returns how many were removed.
func (c *Client) Clear(ctx context.Context, actor *pb.SystemActor, ownerID string) (int, error) {
	request, err := ownerRequest(actor, ownerID)
	if err != nil {
		return 0, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Clear(callCtx, request)
	if err != nil {
		return 0, fmt.Errorf("clear reminders: %w", err)
	}

	return resp.Count, nil
}

// Setup re-arms ownerID from the daemon's items file and returns the timer count.
func (c *Client) Setup(ctx context.Context, actor *pb.SystemActor, ownerID string) (int, error) {
	request, err := ownerRequest(actor, ownerID)
	if err != nil {
		return 0, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Setup(callCtx, request)
	if err != nil {
		return 0, fmt.Errorf("set up reminders: %w", err)
	}

	return resp.Count, nil
}

// Reload makes the daemon re-read its items file.
func (c *Client) Reload(ctx context.Context, actor *pb.SystemActor) (*pb.ReloadResponse, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Reload(callCtx, &pb.ReloadRequest{Actor: actor})
	if err != nil {
		return nil, fmt.Errorf("reload items: %w", err)
	}

	return resp, nil
}

// Test arms a one-shot test reminder.
func (c *Client) Test(ctx context.Context, actor *pb.SystemActor, request *pb.TestRequest) (*pb.TestResponse, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req := *request
	req.Actor = actor

	resp, err := c.api.Test(callCtx, &req)
	if err != nil {
		return nil, fmt.Errorf("arm test reminder: %w", err)
	}

	return resp, nil
}

// Voices lists the daemon's speech voices.
func (c *Client) Voices(ctx context.Context) (*pb.VoicesResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Voices(callCtx, new(pb.VoicesRequest))
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	return resp, nil
}

// Say makes the daemon speak a message. Speaking may outlast the default
// call timeout, so the caller's context alone bounds it.
func (c *Client) Say(ctx context.Context, request *pb.SayRequest) (bool, error) {
	resp, err := c.api.Say(ctx, request)
	if err != nil {
		return false, fmt.Errorf("say: %w", err)
	}

	return resp.Spoken, nil
}

// History returns recently fired alarms, newest first.
func (c *Client) History(ctx context.Context, ownerID string, limit int) ([]pb.FiredAlarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.History(callCtx, &pb.HistoryRequest{OwnerID: ownerID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	return resp.Alarms, nil
}

func ownerRequest(actor *pb.SystemActor, ownerID string) (*pb.OwnerRequest, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	if ownerID == "" {
		return nil, errOwnerRequired
	}

	return &pb.OwnerRequest{Actor: actor, OwnerID: ownerID}, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
