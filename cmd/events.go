package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/render"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the batch lifecycle log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		evs, err := e.svc.Events(cmd.Context(), e.user, limit)
		if err != nil {
			return err
		}
		return output(cmd, evs, func() string { return render.Events(evs) })
	},
}

func init() {
	eventsCmd.Flags().Int("limit", 20, "Maximum number of events")
}
