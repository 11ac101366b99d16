package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/render"
)

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "Mark today's batch stale so the next request regenerates it",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := e.svc.MarkStale(cmd.Context(), e.user); err != nil {
			return err
		}
		return output(cmd, map[string]bool{"stale": true}, func() string {
			return render.Hint.Render("Today's batch is marked stale.")
		})
	},
}
