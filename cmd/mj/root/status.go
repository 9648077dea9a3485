package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/engine"
	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the character sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := a.svc.ProfileRepo().GetOrCreateMain(ctx)
			if err != nil {
				return err
			}
			available, err := a.svc.ListAvailableTasks(ctx)
			if err != nil {
				return err
			}
			pending, err := a.svc.ConfirmationRepo().ListByStatus(ctx, string(engine.ConfirmationPending))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Character Sheet"))
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", ui.XPBar(p.CurrentXP, p.MaxXP, 24)))
			if p.XPMultiplier != 1 {
				fmt.Fprintln(out, ui.LabelValue("Multiplier", fmt.Sprintf("x%.2f", p.XPMultiplier)))
			}
			if a.cfg.GrowMaxXP && p.LevelGrowRate != 0 {
				fmt.Fprintln(out, ui.LabelValue("Bar growth", fmt.Sprintf("+%.0f%% per level", p.LevelGrowRate)))
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.LabelValue("Open tasks", len(available)))
			fmt.Fprintln(out, ui.LabelValue("Awaiting review", len(pending)))
			return nil
		},
	}
	return cmd
}
