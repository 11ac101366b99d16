package cmd

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/render"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		refresh, _ := cmd.Flags().GetBool("refresh")

		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		d, err := e.svc.GetDailyRecommendations(cmd.Context(), e.user, count, refresh)
		if err != nil {
			return err
		}
		return output(cmd, d, func() string { return render.Daily(d, termWidth()) })
	},
}

func init() {
	todayCmd.Flags().Int("count", 0, "Number of recommendations (default from config)")
	todayCmd.Flags().Bool("refresh", false, "Regenerate today's batch regardless of refresh rules")
}

// termWidth returns the stdout terminal width, or render.DefaultWidth
// when stdout is not a terminal.
func termWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return render.DefaultWidth
	}
	return min(w, 100)
}
