package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/masoncl/review-reply/internal/usecase/report"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ReplyService defines the dependency required to run the compile and
// history commands.
type ReplyService interface {
	CompileReply(ctx context.Context, req report.ReplyRequest) (report.ReplyResult, error)
	History(ctx context.Context, limit int) ([]report.ReportEntry, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Service       ReplyService
	Args          Arguments
	DefaultOutput string
	Version       string

	// IsTerminal reports whether stdout is a terminal. Nil uses the real
	// check; tests inject a constant.
	IsTerminal func() bool
	// DocumentsFor maps subsystem tags to the knowledge document paths
	// that apply to them. Nil means no knowledge base is configured.
	DocumentsFor func(subsystems []string) []string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "prr",
		Short: "Compile plain-text review replies for kernel patches",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	isTerminal := deps.IsTerminal
	if isTerminal == nil {
		isTerminal = IsOutputTerminal
	}

	root.AddCommand(compileCommand(deps.Service, deps.DefaultOutput, isTerminal, deps.DocumentsFor))
	root.AddCommand(historyCommand(deps.Service))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}
