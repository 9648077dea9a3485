package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "mj",
	Short:         "Meo's Journey — gamified journal with quests and achievements",
	Long:          "Meo's Journey is a personal gamified journal: daily quests, due-dated achievements, evidence submissions, and an XP/level character sheet.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newEditCmd(),
		newListCmd(),
		newRmCmd(),
		newSubmitCmd(),
		newReviewCmd(),
		newGrantCmd(),
		newStatusCmd(),
		newJournalCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
