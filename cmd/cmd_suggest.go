package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "List airports and cities matching text",
	Long: `Runs the same lookup the autocomplete does. Text shorter than three
characters returns nothing.

$ flightcast suggest Lond`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		query := strings.TrimSpace(strings.Join(args, " "))
		candidates := a.session.Suggester.Suggest(ctx, query)
		if len(candidates) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no matches")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderCandidates(candidates))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
