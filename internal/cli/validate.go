package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/driftsync/internal/manifest"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	ID        string   `json:"id,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest.cue>",
		Short: "Validate a project manifest",
		Long: `Validate a CUE project manifest without starting a sync session.

Checks syntax, required fields, and the tracked variable set. Faster
than run for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	m, err := manifest.Load(path)
	if err != nil {
		var loadErr *manifest.LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		_ = formatter.Error(manifest.ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	formatter.VerboseLog("Loaded manifest %s", path)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:     true,
			ID:        m.ID,
			Mode:      m.Mode,
			Variables: m.Variables,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Manifest valid: %s (%s mode, %d variable(s))\n", m.ID, m.Mode, len(m.Variables))
	return nil
}
