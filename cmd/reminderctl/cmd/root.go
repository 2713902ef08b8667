package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/med-reminder/internal/config"
	"github.com/oshokin/med-reminder/internal/logger"
	pb "github.com/oshokin/med-reminder/internal/pb/v1"
	"github.com/oshokin/med-reminder/internal/service/client"
	"github.com/oshokin/med-reminder/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the server address from the configuration.
	serverAddress string

	// rootCmd represents the base command for controlling the reminder daemon.
	rootCmd = &cobra.Command{
		Use:   "reminderctl",
		Short: "Control a running medication reminder daemon.",
		Long: `Lists, arms and clears the reminders of a running reminder-server.

Every command except parse connects to the daemon over gRPC. The server address
is taken from the configuration file unless --server is given.`,
		SilenceUsage: true,
	}
)

// defaultHistoryLimit is how many fired alarms history prints by default.
const defaultHistoryLimit = 20

// errNoSpeechText is returned by say when the text is blank.
var errNoSpeechText = errors.New("text must not be blank")

// Execute runs the reminderctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withSession connects to the daemon for the duration of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, session *client.Session) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx = logger.WithName(ctx, "reminderctl")

	session, err := client.Connect(ctx, &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
	}, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	defer func() {
		_ = session.Close()
	}()

	return fn(ctx, session)
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [owner]",
		Short: "List armed reminders, of one item or of all.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var owner string
			if len(args) > 0 {
				owner = args[0]
			}

			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.List(ctx, owner)
			})
		},
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <owner>",
		Short: "Stop the timers and sounding alarms of an item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.Clear(ctx, args[0])
			})
		},
	}
}

func newSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup <owner>",
		Short: "Re-arm an item from the daemon's items file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.Setup(ctx, args[0])
			})
		},
	}
}

func newReloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Make the daemon re-read its items file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.Reload(ctx)
			})
		},
	}
}

func newTestCommand() *cobra.Command {
	var opts client.TestOptions

	command := &cobra.Command{
		Use:   "test",
		Short: "Arm a one-shot test reminder.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.Test(ctx, opts)
			})
		},
	}

	command.Flags().DurationVarP(&opts.Delay, "delay", "d", 0, "time until the reminder fires (default 10s)")
	command.Flags().StringVarP(&opts.Label, "label", "l", "", "medication name to speak")
	command.Flags().StringVar(&opts.Instructions, "instructions", "", "instructions appended to the reminder")
	command.Flags().StringVarP(&opts.Message, "message", "m", "", "custom message replacing the spoken template")

	return command
}

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the daemon's speech voices.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.Voices(ctx)
			})
		},
	}
}

func newSayCommand() *cobra.Command {
	var request pb.SayRequest

	command := &cobra.Command{
		Use:   "say [text]",
		Short: "Make the daemon speak a message.",
		Long:  "Speaks the text, or the default voice test message when no text is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Text = strings.Join(args, " ")
			if len(args) > 0 && strings.TrimSpace(request.Text) == "" {
				return errNoSpeechText
			}

			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.Say(ctx, &request)
			})
		},
	}

	command.Flags().StringVar(&request.Voice, "voice", "", "voice name")
	command.Flags().Float64Var(&request.Volume, "volume", 0, "volume, 0-1")
	command.Flags().Float64Var(&request.Rate, "rate", 0, "speech rate, 0.1-10")
	command.Flags().Float64Var(&request.Pitch, "pitch", 0, "speech pitch, 0-2")

	return command
}

func newHistoryCommand() *cobra.Command {
	var limit int

	command := &cobra.Command{
		Use:   "history [owner]",
		Short: "List recently fired alarms.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var owner string
			if len(args) > 0 {
				owner = args[0]
			}

			return withSession(cmd, func(ctx context.Context, session *client.Session) error {
				return session.History(ctx, owner, limit)
			})
		},
	}

	command.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "maximum number of alarms")

	return command
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <descriptor>",
		Short: "Show the times a schedule descriptor resolves to.",
		Long:  `Parses a schedule such as "Morning, 9:30 PM" locally, without a daemon.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Parse(cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "reminder server address (overrides config)")

	rootCmd.AddCommand(
		newListCommand(),
		newClearCommand(),
		newSetupCommand(),
		newReloadCommand(),
		newTestCommand(),
		newVoicesCommand(),
		newSayCommand(),
		newHistoryCommand(),
		newParseCommand(),
	)
}
