package root

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/engine"
	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newSubmitCmd() *cobra.Command {
	var note string
	var image string

	cmd := &cobra.Command{
		Use:   "submit <task-id>",
		Short: "Submit a completion claim for a task",
		Long:  "Submit a completion claim, optionally with an evidence image. Without auto-approval the claim waits for `mj review`; with it the claim resolves immediately.",
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

			// A broken image must not block the claim itself; submit
			// without it and say so.
			var imageRef *string
			if image != "" {
				ref, err := a.blobs.UploadFile(image)
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(fmt.Sprintf("%s image upload failed, submitting without it: %v", ui.IconWarn, err)))
				} else {
					imageRef = &ref
				}
			}

			res, err := a.svc.SubmitConfirmation(ctx, id, note, imageRef)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch res.Status {
			case engine.ConfirmationCompleted:
				fmt.Fprintf(out, "%s Task #%d completed (%s)\n", ui.IconDone, id, ui.Muted.Render(res.ConfirmationID))
			case engine.ConfirmationFailed:
				fmt.Fprintf(out, "%s Task #%d was overdue and failed (%s)\n", ui.IconFailed, id, ui.Muted.Render(res.ConfirmationID))
			default:
				fmt.Fprintf(out, "%s Claim %s waiting for review\n", ui.IconPending, ui.Muted.Render(res.ConfirmationID))
			}
			printProgression(out, res.Progression)
			printWarnings(out, res.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "What was done")
	cmd.Flags().StringVarP(&image, "image", "i", "", "Path to an evidence image")

	return cmd
}

func printProgression(out io.Writer, p *engine.ProgressionSummary) {
	if p == nil {
		return
	}
	fmt.Fprintf(out, "%s +%d XP  %s\n", ui.IconBolt, p.EffectiveXP, ui.XPBar(p.NewXP, p.MaxXP, 20))
	if p.LeveledUp {
		fmt.Fprintf(out, "%s %s %d → %d\n", ui.IconSparkle, ui.BadgeLevelUp, p.OldLevel, p.NewLevel)
	}
}

func printWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" "+w))
	}
}
