package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/model"
	"github.com/Drewraw/social-record-platform/internal/store"
)

var (
	buildURL  string
	buildOut  string
	buildSave bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the profile for one candidate page",
	RunE: func(cmd *cobra.Command, args []string) error {
		if buildURL == "" {
			return eris.New("--url is required")
		}
		ctx := cmd.Context()

		env, err := initApp(ctx, "build", buildSave)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Service.BuildURL(ctx, buildURL)
		if err != nil {
			return err
		}
		if err := saveIfRequested(ctx, env.Store, rec); err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), buildOut, rec)
	},
}

// saveIfRequested persists rec when st is non-nil.
func saveIfRequested(ctx context.Context, st store.Store, rec *model.ProfileRecord) error {
	if st == nil {
		return nil
	}
	sp, err := st.SaveProfile(ctx, rec)
	if err != nil {
		return eris.Wrap(err, "save profile")
	}
	zap.L().Info("profile saved", zap.String("id", sp.ID), zap.String("url", sp.SourceURL))
	return nil
}

func init() {
	buildCmd.Flags().StringVar(&buildURL, "url", "", "candidate page URL")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "write JSON to this file instead of stdout")
	buildCmd.Flags().BoolVar(&buildSave, "save", false, "save the profile to the configured store")
	rootCmd.AddCommand(buildCmd)
}
