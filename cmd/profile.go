package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/render"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your adaptive profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := e.svc.Profile(cmd.Context(), e.user)
		if err != nil {
			return err
		}
		return output(cmd, p, func() string { return render.Profile(p, termWidth()) })
	},
}

var profileAdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Adapt strategy weights to recent performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.svc.AdjustWeights(cmd.Context(), e.user)
		if err != nil {
			return err
		}
		return output(cmd, res, func() string { return render.Adjustment(res, termWidth()) })
	},
}

func init() {
	profileCmd.AddCommand(profileAdjustCmd)
}
