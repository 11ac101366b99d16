package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/render"
)

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Swap completed questions in today's batch for new ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.svc.ReplaceCompleted(cmd.Context(), e.user)
		if err != nil {
			return err
		}
		return output(cmd, res, func() string { return render.Refresh(res, termWidth()) })
	},
}
