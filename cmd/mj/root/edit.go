package root

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/engine"
	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newEditCmd() *cobra.Command {
	var titles []string
	var descs []string
	var xp int
	var rewards []string
	var due string
	var clearDue bool

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task's text, reward, or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("task id must be a number: %w", err)
			}

			in := engine.UpdateTaskInput{ClearDueDate: clearDue}
			if in.Title, err = parseLocalized(titles); err != nil {
				return fmt.Errorf("--title: %w", err)
			}
			if in.Description, err = parseLocalized(descs); err != nil {
				return fmt.Errorf("--desc: %w", err)
			}
			if in.SpecialReward, err = parseLocalized(rewards); err != nil {
				return fmt.Errorf("--reward: %w", err)
			}
			if cmd.Flags().Changed("xp") {
				in.XPReward = &xp
			}
			if due != "" {
				d, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("--due: expected YYYY-MM-DD: %w", err)
				}
				in.DueDate = &d
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.svc.UpdateTask(ctx, id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated task #%d\n", ui.IconDone, id)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&titles, "title", "t", nil, "Localized title, locale=text (repeatable)")
	cmd.Flags().StringArrayVarP(&descs, "desc", "d", nil, "Localized description, locale=text (repeatable)")
	cmd.Flags().IntVar(&xp, "xp", 0, "XP reward")
	cmd.Flags().StringArrayVar(&rewards, "reward", nil, "Localized special reward, locale=text (repeatable)")
	cmd.Flags().StringVar(&due, "due", "", "Due date for achievements (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")

	return cmd
}
