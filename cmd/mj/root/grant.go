package root

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGrantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant <xp>",
		Short: "Grant raw XP outside any task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			amount, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("xp must be a number: %w", err)
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := a.svc.AddXP(ctx, amount)
			if err != nil {
				return err
			}
			printProgression(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	return cmd
}
