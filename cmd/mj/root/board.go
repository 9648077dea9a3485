package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/cache"
	"github.com/lariod12/meosjourney-sub000/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Interactive review board for pending claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c := cache.New(a.cfg.CacheTTL, 64)
			defer c.Dispose()

			return tui.RunReviewBoard(ctx, a.svc, c, cmd.OutOrStdout())
		},
	}
	return cmd
}
