package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/render"
)

var completeCmd = &cobra.Command{
	Use:   "complete <question-id>",
	Short: "Mark a question in today's batch as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed, _ := cmd.Flags().GetBool("failed")
		timeSpent := minutesFlag(cmd)

		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.svc.MarkCompleted(cmd.Context(), e.user, args[0], timeSpent, !failed)
		if err != nil {
			return err
		}
		return output(cmd, res, func() string { return render.Completion(args[0], res, termWidth()) })
	},
}

func init() {
	completeCmd.Flags().Float64("minutes", 0, "Time spent in minutes")
	completeCmd.Flags().Bool("failed", false, "Record the attempt as unsuccessful")
}

// minutesFlag returns --minutes when it was given.
func minutesFlag(cmd *cobra.Command) *float64 {
	if !cmd.Flags().Changed("minutes") {
		return nil
	}
	m, _ := cmd.Flags().GetFloat64("minutes")
	return &m
}
