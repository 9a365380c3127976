package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/masoncl/review-reply/internal/usecase/report"
)

func compileCommand(service ReplyService, defaultOutput string, isTerminal func() bool, documentsFor func([]string) []string) *cobra.Command {
	var commitRef string
	var patchFile string
	var findingsPath string
	var summary string
	var outputDir string
	var noArchive bool
	var noArtifact bool

	cmd := &cobra.Command{
		Use:   "compile [commit]",
		Short: "Compile a review reply for a commit",
		Long: "Compile a plain-text review reply from a commit and a findings file.\n" +
			"The reply body goes to stdout; when stdout is a pipe, nothing else is\n" +
			"printed, so the output can go straight into a mail client.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && commitRef == "" {
				commitRef = args[0]
			}
			if commitRef != "" && patchFile != "" {
				return fmt.Errorf("pass either a commit ref or --patch, not both")
			}
			if findingsPath == "" {
				return fmt.Errorf("--findings is required")
			}

			input, err := readFindingsFile(findingsPath)
			if err != nil {
				return err
			}
			if summary == "" {
				summary = input.Summary
			}

			resolvedOutput := outputDir
			if noArtifact {
				resolvedOutput = ""
			}

			res, err := service.CompileReply(cmd.Context(), report.ReplyRequest{
				Ref:       commitRef,
				PatchFile: patchFile,
				Findings:  input.Findings,
				Summary:   summary,
				OutputDir: resolvedOutput,
				NoArchive: noArchive,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), res.Body)

			if isTerminal() {
				printCompileSummary(cmd, res, documentsFor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&commitRef, "commit", "", "Commit to reply to (hash, branch, tag; overrides positional)")
	cmd.Flags().StringVar(&patchFile, "patch", "", "Read the commit from a git-show style patch file instead of the repository")
	cmd.Flags().StringVar(&findingsPath, "findings", "", "Path to the findings JSON file")
	cmd.Flags().StringVar(&summary, "summary", "", "Override the reply summary (at most three sentences survive)")
	if defaultOutput == "" {
		defaultOutput = "out"
	}
	cmd.Flags().StringVar(&outputDir, "output", defaultOutput, "Directory to write the reply artifact")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Skip archiving the reply in the report store")
	cmd.Flags().BoolVar(&noArtifact, "no-artifact", false, "Skip writing the reply file, print to stdout only")

	return cmd
}

// printCompileSummary writes the human-facing facts to stderr so the reply
// body on stdout stays pipeable.
func printCompileSummary(cmd *cobra.Command, res report.ReplyResult, documentsFor func([]string) []string) {
	errOut := cmd.ErrOrStderr()
	caser := cases.Title(language.English)

	_, _ = fmt.Fprintf(errOut, "\nCompiled reply for %s\n", shortRef(res.SHA))
	_, _ = fmt.Fprintf(errOut, "  Subject:    %s\n", res.Subject)
	_, _ = fmt.Fprintf(errOut, "  Findings:   %d anchored, %d unanchored\n", res.Anchored, res.Unanchored)
	if len(res.Subsystems) > 0 {
		titled := make([]string, len(res.Subsystems))
		for i, s := range res.Subsystems {
			titled[i] = caser.String(s)
		}
		_, _ = fmt.Fprintf(errOut, "  Subsystems: %s\n", strings.Join(titled, ", "))
		if documentsFor != nil {
			if docs := documentsFor(res.Subsystems); len(docs) > 0 {
				_, _ = fmt.Fprintf(errOut, "  Notes:      %s\n", strings.Join(docs, ", "))
			}
		}
	}
	if res.ArtifactPath != "" {
		_, _ = fmt.Fprintf(errOut, "  Artifact:   %s\n", res.ArtifactPath)
	}
	if res.ReportID != "" {
		_, _ = fmt.Fprintf(errOut, "  Archived:   %s\n", res.ReportID)
	}
}

func shortRef(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
