package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func historyCommand(service ReplyService) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently archived replies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := service.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "no archived replies")
				return nil
			}

			for _, entry := range entries {
				line := fmt.Sprintf("%s  %s  %s", entry.CreatedAt.Format("2006-01-02 15:04"), shortRef(entry.SHA), entry.Subject)
				if len(entry.Subsystems) > 0 {
					line += fmt.Sprintf("  [%s]", strings.Join(entry.Subsystems, ","))
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of replies to list")

	return cmd
}
