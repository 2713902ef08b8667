package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/med-reminder/internal/config"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	pb "github.com/oshokin/med-reminder/internal/pb/v1"
	"github.com/oshokin/med-reminder/internal/repository/items"
	"github.com/oshokin/med-reminder/internal/service/common"
	"github.com/oshokin/med-reminder/internal/service/server"
)

const waitFor = 5 * time.Second

// startServer runs a reminder-server with audio and speech disabled over the
// given items file. Returns a stop function that waits for shutdown.
func startServer(t *testing.T, addr, itemsPath string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: addr,
		ItemsFile:     itemsPath,
		HistoryDB:     filepath.Join(dir, "history.db"),
		Timeout:       3 * time.Second,
		LogLevel:      "warn",
		Scheduler:     config.SchedulerConfig{Revalidate: config.RevalidateOff},
		Audio:         config.AudioConfig{Provider: config.ProviderNone},
		Speech:        config.SpeechConfig{Provider: config.ProviderNone},
	}))

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath})
	}()

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("server did not stop")
		}
	}
}

func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// TestServer_RemindersLifecycle drives a live daemon through the gRPC API.
func TestServer_RemindersLifecycle(t *testing.T) {
	t.Parallel()

	itemsPath := filepath.Join(t.TempDir(), "items.yaml")
	repo := items.NewFileRepository(itemsPath)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []*domain.Item{
		{ID: "rx-1", ReminderEnabled: true, Schedule: "Morning, 9:30 PM", TabletNames: []string{"Aspirin"}},
		{ID: "rx-2", ReminderEnabled: false, Schedule: "Night", TabletNames: []string{"Melatonin"}},
	}))

	addr := reservePort(t)

	stop := startServer(t, addr, itemsPath)
	defer stop()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	actor := &pb.SystemActor{Hostname: "test-hostname", Username: "test-user"}

	// The daemon arms the enabled item on start.
	require.Eventually(t, func() bool {
		timers, err := c.ListActive(ctx, "")

		return err == nil && len(timers) == 2
	}, waitFor, 50*time.Millisecond)

	timers, err := c.ListActive(ctx, "rx-1")
	require.NoError(t, err)

	for _, timer := range timers {
		require.Equal(t, "Aspirin", timer.Label)
		require.True(t, timer.NextTrigger.After(time.Now()))
	}

	// A one-shot test reminder fires and is recorded.
	resp, err := c.Test(ctx, actor, &pb.TestRequest{Label: "Vitamin D", DelaySeconds: 0.2})
	require.NoError(t, err)
	require.Equal(t, domain.TestOwnerID, resp.OwnerID)

	require.Eventually(t, func() bool {
		fired, err := c.History(ctx, domain.TestOwnerID, 0)

		return err == nil && len(fired) == 1
	}, waitFor, 50*time.Millisecond)

	// Enabling rx-2 in the file re-arms through the watcher.
	require.NoError(t, repo.Save(ctx, []*domain.Item{
		{ID: "rx-1", ReminderEnabled: true, Schedule: "Morning, 9:30 PM", TabletNames: []string{"Aspirin"}},
		{ID: "rx-2", ReminderEnabled: true, Schedule: "Night", TabletNames: []string{"Melatonin"}},
	}))

	require.Eventually(t, func() bool {
		timers, err := c.ListActive(ctx, "rx-2")

		return err == nil && len(timers) == 1
	}, waitFor, 50*time.Millisecond)

	removed, err := c.Clear(ctx, actor, "rx-1")
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	armed, err := c.Setup(ctx, actor, "rx-1")
	require.NoError(t, err)
	require.Equal(t, 2, armed)

	_, err = c.Setup(ctx, actor, "rx-9")
	require.Error(t, err)

	summary, err := c.Reload(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Items)

	spoken, err := c.Say(ctx, &pb.SayRequest{Text: "hello"})
	require.NoError(t, err)
	require.True(t, spoken)
}
