package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/engine"
	"github.com/abhisek/dailydrill/internal/render"
	"github.com/abhisek/dailydrill/internal/strategy"
)

var solveCmd = &cobra.Command{
	Use:   "solve <question-id>",
	Short: "Record a solve in your history",
	Long:  "Record a solve in your history. Questions in today's batch are also marked completed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed, _ := cmd.Flags().GetBool("failed")
		stratFlag, _ := cmd.Flags().GetString("strategy")
		at, _ := cmd.Flags().GetString("at")

		strat, err := strategy.Parse(stratFlag)
		if err != nil {
			return err
		}
		var solvedAt time.Time
		if at != "" {
			if solvedAt, err = time.Parse(time.RFC3339, at); err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}
		}

		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.svc.RecordSolve(cmd.Context(), engine.SolveInput{
			UserID:     e.user,
			QuestionID: args[0],
			SolvedAt:   solvedAt,
			TimeSpent:  minutesFlag(cmd),
			Success:    !failed,
			Strategy:   strat,
		})
		if err != nil {
			return err
		}
		return output(cmd, res, func() string { return render.Solve(res) })
	},
}

func init() {
	solveCmd.Flags().Float64("minutes", 0, "Time spent in minutes")
	solveCmd.Flags().Bool("failed", false, "Record the attempt as unsuccessful")
	solveCmd.Flags().String("strategy", "", "Strategy that recommended the question (default: from today's batch)")
	solveCmd.Flags().String("at", "", "Solve time in RFC 3339 format (default: now)")
}
