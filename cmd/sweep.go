package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/render"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := e.svc.SweepExpired(cmd.Context())
		if err != nil {
			return err
		}
		return output(cmd, map[string]int{"deleted": n}, func() string {
			return render.Hint.Render(fmt.Sprintf("Deleted %d expired batches.", n))
		})
	},
}
