package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/engine"
	"github.com/abhisek/dailydrill/internal/render"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenerate today's batch if the refresh rules allow it",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.svc.ForceRefresh(cmd.Context(), e.user)
		if el, denied := engine.IsRefreshDenied(err); denied {
			if outErr := output(cmd, el, func() string { return render.Eligibility(el) }); outErr != nil {
				return outErr
			}
			return err
		}
		if err != nil {
			return err
		}
		return output(cmd, res, func() string { return render.Refresh(res, termWidth()) })
	},
}
