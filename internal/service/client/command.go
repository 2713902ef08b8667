package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/oshokin/med-reminder/internal/config"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	"github.com/oshokin/med-reminder/internal/logger"
	pb "github.com/oshokin/med-reminder/internal/pb/v1"
	"github.com/oshokin/med-reminder/internal/schedule"
	"github.com/oshokin/med-reminder/internal/service/common"
)

// Options configures how reminderctl reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
}

// TestOptions describes a one-shot test reminder.
type TestOptions struct {
	// Label is the spoken medication name.
	Label string
	// Instructions are appended to the reminder text.
	Instructions string
	// Message replaces the spoken template.
	Message string
	// Delay is how long until the reminder fires.
	Delay time.Duration
}

// API is the daemon surface used by a Session; *common.Client implements it.
type API interface {
	ListActive(ctx context.Context, ownerID string) ([]pb.Timer, error)
	Clear(ctx context.Context, actor *pb.SystemActor, ownerID string) (int, error)
	Setup(ctx context.Context, actor *pb.SystemActor, ownerID string) (int, error)
	Reload(ctx context.Context, actor *pb.SystemActor) (*pb.ReloadResponse, error)
	Test(ctx context.Context, actor *pb.SystemActor, request *pb.TestRequest) (*pb.TestResponse, error)
	Voices(ctx context.Context) (*pb.VoicesResponse, error)
	Say(ctx context.Context, request *pb.SayRequest) (bool, error)
	History(ctx context.Context, ownerID string, limit int) ([]pb.FiredAlarm, error)
	Close() error
}

// timeLayout renders trigger and firing times in local time.
const timeLayout = "Mon 02 Jan 15:04:05"

var (
	// errNoValidTimes is returned by Parse when the descriptor yields nothing.
	errNoValidTimes = errors.New("no valid times in schedule")
	// errNotSpoken is returned by Say when the daemon could not speak.
	errNotSpoken = errors.New("daemon could not speak the message")
)

// Session runs reminderctl operations against one daemon connection.
type Session struct {
	// api is the daemon client.
	api API
	// actor identifies this user and host in the daemon's audit log.
	actor *pb.SystemActor
	// out receives the printed results.
	out io.Writer
}

// Connect loads the settings, identifies the actor and dials the daemon.
func Connect(ctx context.Context, opts *Options, out io.Writer) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return nil, err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to reminder server", "server_address", serverAddress)

	return NewSession(client, actor, out), nil
}

// NewSession wraps an existing daemon client.
func NewSession(api API, actor *pb.SystemActor, out io.Writer) *Session {
	return &Session{
		api:   api,
		actor: actor,
		out:   out,
	}
}

// Close releases the daemon connection.
func (s *Session) Close() error {
	return s.api.Close()
}

// List prints the armed timers of ownerID, or of every owner.
func (s *Session) List(ctx context.Context, ownerID string) error {
	timers, err := s.api.ListActive(ctx, ownerID)
	if err != nil {
		return err
	}

	if len(timers) == 0 {
		_, err = fmt.Fprintln(s.out, "No reminders armed.")

		return err
	}

	table := newTable(s.out)
	fmt.Fprintln(table, "OWNER\tLABEL\tTIME\tNEXT\tIN")

	for _, timer := range timers {
		at := schedule.Format(specOf(timer.Hour, timer.Minute))
		if timer.TestMode {
			at = "test"
		}

		remaining := time.Duration(timer.RemainingSeconds * float64(time.Second)).Round(time.Second)

		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n",
			timer.OwnerID,
			timer.Label,
			at,
			timer.NextTrigger.Local().Format(timeLayout),
			remaining)
	}

	return table.Flush()
}

// Clear stops the reminders of ownerID.
func (s *Session) Clear(ctx context.Context, ownerID string) error {
	removed, err := s.api.Clear(ctx, s.actor, ownerID)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.out, "Cleared %d timers and alarms of %s.\n", removed, ownerID)

	return err
}

// Setup re-arms ownerID from the daemon's items file.
func (s *Session) Setup(ctx context.Context, ownerID string) error {
	armed, err := s.api.Setup(ctx, s.actor, ownerID)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.out, "Armed %d reminders for %s.\n", armed, ownerID)

	return err
}

// Reload makes the daemon re-read its items file.
func (s *Session) Reload(ctx context.Context) error {
	summary, err := s.api.Reload(ctx, s.actor)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.out, "Reloaded %d items: %d timers armed, %d cleared.\n",
		summary.Items, summary.Armed, summary.Cleared)

	return err
}

// Test arms a one-shot test reminder.
func (s *Session) Test(ctx context.Context, opts TestOptions) error {
	resp, err := s.api.Test(ctx, s.actor, &pb.TestRequest{
		Label:        opts.Label,
		Instructions: opts.Instructions,
		Message:      opts.Message,
		DelaySeconds: opts.Delay.Seconds(),
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.out, "Test reminder armed, fires at %s.\n",
		resp.NextTrigger.Local().Format(timeLayout))

	return err
}

// Voices prints the daemon's speech voices.
func (s *Session) Voices(ctx context.Context) error {
	resp, err := s.api.Voices(ctx)
	if err != nil {
		return err
	}

	table := newTable(s.out)
	fmt.Fprintln(table, "NAME\tLANGUAGE\t")

	for _, voice := range resp.Voices {
		var marks []string
		if voice.Default {
			marks = append(marks, "default")
		}

		if voice.Name == resp.Preferred {
			marks = append(marks, "preferred")
		}

		fmt.Fprintf(table, "%s\t%s\t%s\n", voice.Name, voice.Lang, strings.Join(marks, ","))
	}

	return table.Flush()
}

// Say makes the daemon speak text with the given voice settings.
func (s *Session) Say(ctx context.Context, request *pb.SayRequest) error {
	spoken, err := s.api.Say(ctx, request)
	if err != nil {
		return err
	}

	if !spoken {
		return errNotSpoken
	}

	return nil
}

// History prints recently fired alarms, newest first.
func (s *Session) History(ctx context.Context, ownerID string, limit int) error {
	fired, err := s.api.History(ctx, ownerID, limit)
	if err != nil {
		return err
	}

	if len(fired) == 0 {
		_, err = fmt.Fprintln(s.out, "No alarms fired yet.")

		return err
	}

	table := newTable(s.out)
	fmt.Fprintln(table, "FIRED\tOWNER\tLABEL\tTIME\tDELIVERED")

	for _, alarm := range fired {
		at := schedule.Format(specOf(alarm.Hour, alarm.Minute))
		if alarm.TestMode {
			at = "test"
		}

		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%t\n",
			alarm.FiredAt.Local().Format(timeLayout),
			alarm.OwnerID,
			alarm.Label,
			at,
			alarm.Delivered)
	}

	return table.Flush()
}

// Parse prints the times a schedule descriptor resolves to, without a daemon.
func Parse(out io.Writer, descriptor string) error {
	specs := schedule.Parse(descriptor)
	if len(specs) == 0 {
		return fmt.Errorf("%w: %q", errNoValidTimes, descriptor)
	}

	now := time.Now()
	table := newTable(out)
	fmt.Fprintln(table, "TIME\tNEXT")

	for _, spec := range specs {
		fmt.Fprintf(table, "%s\t%s\n",
			schedule.Format(spec),
			schedule.NextTrigger(spec, now, false).Format(timeLayout))
	}

	return table.Flush()
}

func specOf(hour, minute int) domain.TimeSpec {
	return domain.TimeSpec{Hour: hour, Minute: minute}
}

func newTable(out io.Writer) *tabwriter.Writer {
	//nolint:mnd // Column padding.
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}
