package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/driftsync/internal/engine"
	"github.com/roach88/driftsync/internal/store"
)

// SnapshotOptions holds flags for the snapshot command.
type SnapshotOptions struct {
	*RootOptions
	Session string
	History bool
}

// SnapshotResult is the JSON payload for the snapshot command.
type SnapshotResult struct {
	Keys      []string          `json:"keys,omitempty"`
	Key       string            `json:"key,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
	History   []HistoryEntry    `json:"history,omitempty"`
}

// HistoryEntry is one recorded update in the JSON payload.
type HistoryEntry struct {
	Seq   int64  `json:"seq"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot <database>",
		Short: "Inspect stored snapshots",
		Long: `Inspect the snapshot database written by persistent sync sessions.

Without --session, lists every stored session key. With --session,
prints that session's saved variables; add --history for the full
update log.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to inspect")
	cmd.Flags().BoolVar(&opts.History, "history", false, "include the update history")

	return cmd
}

func runSnapshot(opts *SnapshotOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = formatter.Error("E002", fmt.Sprintf("database not found: %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Session == "" {
		return listKeys(ctx, st, formatter)
	}
	return showSession(ctx, st, formatter, opts)
}

func listKeys(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	keys, err := st.Keys(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(SnapshotResult{Keys: keys})
	}

	if len(keys) == 0 {
		fmt.Fprintln(formatter.Writer, "no snapshots stored")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(formatter.Writer, k)
	}
	return nil
}

func showSession(ctx context.Context, st *store.Store, formatter *OutputFormatter, opts *SnapshotOptions) error {
	key := engine.StorageKey(opts.Session)

	vars, err := st.LoadSnapshot(ctx, key)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}

	result := SnapshotResult{Key: key, Variables: vars}
	if opts.History {
		updates, err := st.UpdateHistory(ctx, key)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load history", err)
		}
		for _, u := range updates {
			result.History = append(result.History, HistoryEntry{Seq: u.Seq, Name: u.Name, Value: u.Value})
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s\n", key)
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(formatter.Writer, "  %s = %s\n", name, vars[name])
	}
	if opts.History {
		fmt.Fprintln(formatter.Writer, "history:")
		for _, e := range result.History {
			fmt.Fprintf(formatter.Writer, "  seq %d: %s = %s\n", e.Seq, e.Name, e.Value)
		}
	}
	return nil
}
