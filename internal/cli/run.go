package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/driftsync/internal/engine"
	"github.com/roach88/driftsync/internal/manifest"
	"github.com/roach88/driftsync/internal/store"
	"github.com/roach88/driftsync/internal/transport"
	"github.com/roach88/driftsync/internal/varstore"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Endpoint string

	// Dialer allows overriding the transport dialer (for testing).
	// If nil, defaults to a WebSocket dialer.
	Dialer transport.Dialer
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <manifest.cue>",
		Short: "Start a sync session",
		Long: `Start a cloud variable sync session from a project manifest.

The session reads variable updates from stdin, one per line, in the
form name=value. Network mode forwards updates to the manifest's host
over a WebSocket connection; persistent mode saves them to a local
SQLite snapshot database.

Example:
  driftsync run ./project.cue
  driftsync run --db ./state.db ./project.cue --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite snapshot database (persistent mode)")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "override the manifest's host endpoint (network mode)")

	return cmd
}

func runSync(opts *RunOptions, path string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	slog.Info("loading manifest", "path", path)
	m, err := manifest.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	slog.Info("manifest loaded", "id", m.ID, "mode", m.Mode, "variables", len(m.Variables))

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	adapter := varstore.NewMemory(m.Variables)

	var syncHandler engine.Handler
	switch m.Mode {
	case manifest.ModeNetwork:
		endpoint := m.Host
		if opts.Endpoint != "" {
			endpoint = opts.Endpoint
		}
		dialer := opts.Dialer
		if dialer == nil {
			dialer = &transport.WebSocketDialer{}
		}
		syncHandler = engine.NewNetworkHandler(adapter, dialer, endpoint, m.ID)

	case manifest.ModePersistent:
		dbPath := m.Database
		if opts.Database != "" {
			dbPath = opts.Database
		}
		if dbPath == "" {
			dbPath = "driftsync.db"
		}
		slog.Info("opening database", "path", dbPath)
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		latest, err := st.LatestSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read latest sequence", err)
		}
		clock := engine.NewClockAt(latest)
		syncHandler = engine.NewPersistentHandler(adapter, st.Bind(ctx, clock.Next), m.ID)

	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown mode %q", m.Mode))
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	syncHandler.OnStart()
	defer syncHandler.Destroy()

	fmt.Fprintln(cmd.OutOrStdout(), "Session started. Enter updates as name=value, one per line.")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C or close stdin to stop.")

	if err := feedUpdates(ctx, cmd, adapter, syncHandler); err != nil {
		return WrapExitError(ExitFailure, "session error", err)
	}

	slog.Info("session stopped gracefully")
	return nil
}

// feedUpdates reads name=value lines from stdin and applies each one to
// the adapter before notifying the handler. Returns on EOF or when ctx
// is cancelled.
func feedUpdates(ctx context.Context, cmd *cobra.Command, adapter *varstore.Memory, h engine.Handler) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			name, value, found := strings.Cut(line, "=")
			name = strings.TrimSpace(name)
			if !found || name == "" {
				if strings.TrimSpace(line) != "" {
					slog.Warn("ignoring malformed update", "line", line)
				}
				continue
			}
			adapter.Set(name, value)
			h.VariableChanged(name)
		}
	}
}
