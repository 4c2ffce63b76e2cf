package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "List candidate pages matching a name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initApp(ctx, "build", false)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Service.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if searchJSON {
			return writeJSON(out, results)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no candidates found")
			return nil
		}
		for i, r := range results {
			fmt.Fprintf(out, "%3d. %s\n     %s\n", i, r.Text, r.URL)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}
