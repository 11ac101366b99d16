package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/render"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the question catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import questions from a catalog JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.svc.ImportCatalog(cmd.Context(), f)
		if err != nil {
			return err
		}
		return output(cmd, res, func() string {
			return render.Done.Render(fmt.Sprintf("Imported %d questions (catalog %s).", res.Imported, f.Version))
		})
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, _ := cmd.Flags().GetStringSlice("topic")
		levels, _ := cmd.Flags().GetStringSlice("difficulty")
		list, _ := cmd.Flags().GetString("list")
		limit, _ := cmd.Flags().GetInt("limit")

		f := catalog.Filter{Topics: topics, List: list, Limit: limit}
		for _, l := range levels {
			d, err := catalog.ParseDifficulty(l)
			if err != nil {
				return err
			}
			f.Difficulties = append(f.Difficulties, d)
		}

		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		qs, err := e.svc.Questions(cmd.Context(), f)
		if err != nil {
			return err
		}
		return output(cmd, qs, func() string { return render.Questions(qs) })
	},
}

func init() {
	catalogListCmd.Flags().StringSlice("topic", nil, "Filter by topic (repeatable)")
	catalogListCmd.Flags().StringSlice("difficulty", nil, "Filter by difficulty: easy, medium, hard")
	catalogListCmd.Flags().String("list", "", "Filter by list name")
	catalogListCmd.Flags().Int("limit", 50, "Maximum number of questions")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
}
