package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/engine"
	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newAddCmd() *cobra.Command {
	var titles []string
	var descs []string
	var xp int
	var rewards []string
	var due string

	cmd := &cobra.Command{
		Use:   "add <quest|achievement>",
		Short: "Add a task to the catalog",
		Example: `  mj add quest --title en="Morning pages" --title vi="Viết nhật ký sáng" --xp 50
  mj add achievement --title en="Ship v1" --xp 500 --due 2026-12-31 --reward en="New keyboard"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			kind, err := engine.ParseTaskKind(args[0])
			if err != nil {
				return err
			}
			title, err := parseLocalized(titles)
			if err != nil {
				return fmt.Errorf("--title: %w", err)
			}
			desc, err := parseLocalized(descs)
			if err != nil {
				return fmt.Errorf("--desc: %w", err)
			}
			reward, err := parseLocalized(rewards)
			if err != nil {
				return fmt.Errorf("--reward: %w", err)
			}
			var dueDate *time.Time
			if due != "" {
				d, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("--due: expected YYYY-MM-DD: %w", err)
				}
				dueDate = &d
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := a.svc.CreateTask(ctx, engine.CreateTaskInput{
				Kind:          kind,
				Title:         title,
				Description:   desc,
				XPReward:      xp,
				SpecialReward: reward,
				DueDate:       dueDate,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s #%d %s\n",
				ui.KindIcon(string(kind)), string(kind), id, ui.Gold.Render(fmt.Sprintf("(+%d XP)", xp)))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&titles, "title", "t", nil, "Localized title, locale=text (repeatable)")
	cmd.Flags().StringArrayVarP(&descs, "desc", "d", nil, "Localized description, locale=text (repeatable)")
	cmd.Flags().IntVar(&xp, "xp", 0, "XP reward")
	cmd.Flags().StringArrayVar(&rewards, "reward", nil, "Localized special reward, locale=text (repeatable)")
	cmd.Flags().StringVar(&due, "due", "", "Due date for achievements (YYYY-MM-DD)")

	return cmd
}

// parseLocalized turns repeated locale=text flag values into a map.
// An empty slice yields nil so optional fields stay unset.
func parseLocalized(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(values))
	for _, v := range values {
		locale, text, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(locale) == "" {
			return nil, fmt.Errorf("expected locale=text, got %q", v)
		}
		m[strings.TrimSpace(locale)] = text
	}
	return m, nil
}
