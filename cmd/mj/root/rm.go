package root

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task together with its confirmations and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("task id must be a number: %w", err)
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.svc.DeleteTask(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted task #%d\n", ui.IconTrash, id)
			return nil
		},
	}
	return cmd
}
