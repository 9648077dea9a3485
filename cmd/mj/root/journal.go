package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newJournalCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := a.svc.JournalRepo().ListRecent(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconJournal, "Journal"))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No entries yet. Complete a task to write the first one."))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(e.CreatedAt.Format("2006-01-02 15:04")), e.Body)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max entries to show")

	return cmd
}
