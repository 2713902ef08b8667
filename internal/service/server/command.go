package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"google.golang.org/grpc"

	"github.com/oshokin/med-reminder/internal/alarm"
	api "github.com/oshokin/med-reminder/internal/api/grpc/reminder"
	"github.com/oshokin/med-reminder/internal/config"
	"github.com/oshokin/med-reminder/internal/events"
	"github.com/oshokin/med-reminder/internal/events/mqtt"
	"github.com/oshokin/med-reminder/internal/logger"
	pb "github.com/oshokin/med-reminder/internal/pb/v1"
	"github.com/oshokin/med-reminder/internal/reminder"
	"github.com/oshokin/med-reminder/internal/repository/history"
	"github.com/oshokin/med-reminder/internal/repository/items"
)

// Options controls the reminder-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// ItemsFile overrides the items file from the settings.
	ItemsFile string
	// HistoryDB overrides the history database from the settings.
	HistoryDB string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the daemon and blocks until ctx is canceled or the gRPC server stops.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "reminder-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if err = ensureSingleInstance(); err != nil {
		return err
	}

	itemsFile := settings.ItemsFile
	if opts.ItemsFile != "" {
		itemsFile = opts.ItemsFile
	}

	historyDB := settings.HistoryDB
	if opts.HistoryDB != "" {
		historyDB = opts.HistoryDB
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	historyRepo, err := history.Open(ctx, historyDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	defer closeLogged(ctx, "history", historyRepo.Close)

	publisher := newPublisher(ctx, settings.MQTT)
	defer closeLogged(ctx, "event publisher", publisher.Close)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	caps, closeCaps := buildCapabilities(ctx, settings)
	defer closeCaps()

	player := alarm.NewPlayer(caps, settings.Audio.DefaultSound)
	defaults := voiceDefaults(settings.Speech)

	scheduler := reminder.New(player,
		reminder.WithDefaults(defaults),
		reminder.WithAlarmGrace(settings.Scheduler.AlarmGrace),
		reminder.WithDriftTolerance(settings.Scheduler.DriftTolerance),
		reminder.WithHistory(historyRepo),
		reminder.WithEvents(publisher),
		reminder.WithMetrics(reminder.NewMetrics(registry)),
	)

	itemsRepo := items.NewFileRepository(itemsFile)
	svc := newService(scheduler, itemsRepo, player, historyRepo, defaults)

	if _, err = svc.Reload(ctx, nil); err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	if settings.Scheduler.RevalidateEnabled() {
		stopCron, err := startRevalidation(ctx, settings.Scheduler.Revalidate, scheduler)
		if err != nil {
			return err
		}

		defer stopCron()
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterReminderServiceServer(grpcServer, api.NewServer(svc))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Go(func() {
		_ = scheduler.Run(ctx)
	})

	wg.Go(func() {
		err := itemsRepo.Watch(ctx, func(ctx context.Context) {
			if _, err := svc.Reload(ctx, nil); err != nil {
				logger.WarnKV(ctx, "Reloading items failed, keeping current reminders", "error", err)
			}
		})
		if err != nil {
			logger.WarnKV(ctx, "Items file is not watched, use reminderctl reload after edits", "error", err)
		}
	})

	if settings.MetricsAddress != "" {
		wg.Go(func() {
			if err := serveMetrics(ctx, settings.MetricsAddress, registry); err != nil {
				logger.ErrorKV(ctx, "Metrics server failed", "error", err)
			}
		})
	}

	logger.InfoKV(ctx, "Reminder server listening",
		"listen_address", listenAddress,
		"items_file", itemsFile,
		"history_db", historyDB)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	serveErr := grpcServer.Serve(lis)

	cancel()
	<-done
	wg.Wait()

	logger.Info(ctx, "Reminder server stopped")

	if serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", serveErr)
	}

	return nil
}

// startRevalidation runs the clock drift check on the cron spec.
func startRevalidation(ctx context.Context, spec string, scheduler *reminder.Scheduler) (func(), error) {
	c := cron.New(cron.WithLocation(time.Local))

	_, err := c.AddFunc(spec, func() {
		if n := scheduler.Revalidate(ctx); n > 0 {
			logger.InfoKV(ctx, "Reminders re-armed after clock change", "count", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule revalidation %q: %w", spec, err)
	}

	c.Start()

	return func() { <-c.Stop().Done() }, nil
}

// newPublisher connects to the MQTT broker, falling back to no events.
func newPublisher(ctx context.Context, settings config.MQTTConfig) events.Publisher {
	if settings.Broker == "" {
		return events.Noop{}
	}

	publisher, err := mqtt.NewPublisher(settings.Broker, settings.ClientID, settings.TopicPrefix)
	if err != nil {
		logger.WarnKV(ctx, "MQTT broker unavailable, events are not published", "broker", settings.Broker, "error", err)

		return events.Noop{}
	}

	logger.InfoKV(ctx, "Publishing events to MQTT", "broker", settings.Broker)

	return publisher
}

// resolveListenAddress determines the listen address for the gRPC server.
// The override wins; otherwise the configured address is used as is, so a
// loopback address keeps the unauthenticated API local.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}

func closeLogged(ctx context.Context, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.WarnKV(ctx, "Close failed", "what", what, "error", err)
	}
}
