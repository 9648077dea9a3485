package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/engine"
	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [<confirmation-id> <pass|reject>]",
		Short: "List pending claims, or resolve one",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				pending, err := a.svc.ConfirmationRepo().ListByStatus(ctx, string(engine.ConfirmationPending))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Heading(ui.IconPending, "Pending claims"))
				if len(pending) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("Review queue is empty."))
					return nil
				}
				for _, c := range pending {
					line := fmt.Sprintf("%s  task #%d  %s", ui.Key.Render(c.ID), c.TaskID, c.Description)
					if c.ImageRef != nil {
						line += "  " + ui.IconImage
					}
					fmt.Fprintln(out, line)
				}
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("expected <confirmation-id> <pass|reject>")
			}

			decision, err := engine.ParseDecision(args[1])
			if err != nil {
				return err
			}
			res, err := a.svc.ReviewConfirmation(ctx, args[0], decision)
			if err != nil {
				return err
			}

			switch res.Status {
			case engine.ConfirmationCompleted:
				fmt.Fprintf(out, "%s Passed: task #%d completed\n", ui.IconDone, res.TaskID)
			default:
				fmt.Fprintf(out, "%s Rejected: task #%d is open again\n", ui.IconTrash, res.TaskID)
			}
			printProgression(out, res.Progression)
			printWarnings(out, res.Warnings)
			return nil
		},
	}
	return cmd
}
