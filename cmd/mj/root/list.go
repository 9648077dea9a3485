package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/storage"
	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks still worth doing (or everything with --all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var tasks []storage.Task
			if all {
				tasks, err = a.svc.ListTasks(ctx)
			} else {
				tasks, err = a.svc.ListAvailableTasks(ctx)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Tasks"))
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing here. Add a quest with `mj add quest`."))
				return nil
			}
			for i := range tasks {
				printTaskLine(out, &tasks[i], a.cfg.Locales)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")

	return cmd
}

func printTaskLine(out io.Writer, t *storage.Task, locales []string) {
	line := fmt.Sprintf("%s #%d %s %s %s",
		ui.KindIcon(t.Kind), t.ID, localizedText(t.Title, locales),
		ui.Gold.Render(fmt.Sprintf("+%d XP", t.XPReward)), ui.StatusBadge(t.Status))
	if t.DueDate != nil {
		line += " " + ui.Muted.Render("due "+t.DueDate.Format("2006-01-02"))
	}
	if len(t.SpecialReward) > 0 {
		line += " " + ui.IconSparkle + " " + localizedText(t.SpecialReward, locales)
	}
	fmt.Fprintln(out, line)
}

// localizedText picks the first configured locale with text, then any.
func localizedText(m map[string]string, locales []string) string {
	for _, l := range locales {
		if m[l] != "" {
			return m[l]
		}
	}
	for _, v := range m {
		if v != "" {
			return v
		}
	}
	return ""
}
