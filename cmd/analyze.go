package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze your solve history",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")

		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		a, err := e.svc.Analyze(cmd.Context(), e.user, analysis.Mode(mode))
		if err != nil {
			return err
		}
		return output(cmd, a, func() string { return render.Analysis(a) })
	},
}

func init() {
	analyzeCmd.Flags().String("mode", "", "Level classifier: breadth or simple (default from config)")
}
