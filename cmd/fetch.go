package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	fetchIndex int
	fetchOut   string
	fetchSave  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <name>",
	Short: "Search for a name and build the n-th result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initApp(ctx, "build", fetchSave)
		if err != nil {
			return err
		}
		defer env.Close()

		m, err := env.Service.BuildNth(ctx, strings.Join(args, " "), fetchIndex)
		if err != nil {
			return err
		}
		if err := saveIfRequested(ctx, env.Store, m.Record); err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), fetchOut, m)
	},
}

func init() {
	fetchCmd.Flags().IntVar(&fetchIndex, "n", 0, "zero-based index of the search result to build")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "write JSON to this file instead of stdout")
	fetchCmd.Flags().BoolVar(&fetchSave, "save", false, "save the profile to the configured store")
	rootCmd.AddCommand(fetchCmd)
}
