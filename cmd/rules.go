package main

import (
	"github.com/spf13/cobra"

	"github.com/Drewraw/social-record-platform/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the extraction and classification rule tables",
}

var rulesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective rule set as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := rules.Load(cfg.Rules.Path)
		if err != nil {
			return err
		}
		out, err := set.Dump()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rulesCmd.AddCommand(rulesDumpCmd)
	rootCmd.AddCommand(rulesCmd)
}
