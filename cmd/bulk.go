package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Drewraw/social-record-platform/internal/model"
	"github.com/Drewraw/social-record-platform/internal/store"
)

var (
	bulkPattern     string
	bulkStart       int
	bulkEnd         int
	bulkOutDir      string
	bulkConcurrency int
	bulkSave        bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Build profiles for a range of candidate ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if bulkPattern != "" {
			cfg.Source.CandidatePattern = bulkPattern
		}
		if bulkConcurrency > 0 {
			cfg.Bulk.Concurrency = bulkConcurrency
		}

		env, err := initApp(ctx, "bulk", bulkSave)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := processBulk(ctx, bulkJob{
			Pattern:     cfg.Source.CandidatePattern,
			Start:       bulkStart,
			End:         bulkEnd,
			OutDir:      bulkOutDir,
			Concurrency: cfg.Bulk.Concurrency,
			Pause:       time.Duration(cfg.Bulk.PauseMs) * time.Millisecond,
			Store:       env.Store,
		}, env.Service.BuildURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "succeeded: %d, failed: %d, output: %s\n", res.Succeeded, res.Failed, bulkOutDir)
		return nil
	},
}

// buildFunc builds the profile at a URL.
type buildFunc func(ctx context.Context, url string) (*model.ProfileRecord, error)

// bulkJob describes one id-range run.
type bulkJob struct {
	Pattern     string
	Start, End  int
	OutDir      string
	Concurrency int
	// Pause is slept by a worker after each page.
	Pause time.Duration
	Store store.Store // may be nil
}

type bulkResult struct {
	Succeeded int64
	Failed    int64
}

// processBulk builds every id in [Start, End]. Individual failures are
// counted and logged; they do not stop the run.
func processBulk(ctx context.Context, job bulkJob, build buildFunc) (bulkResult, error) {
	if job.End < job.Start {
		return bulkResult{}, eris.Errorf("bulk: end %d before start %d", job.End, job.Start)
	}
	if job.Concurrency < 1 {
		job.Concurrency = 1
	}

	zap.L().Info("processing bulk range",
		zap.String("pattern", job.Pattern),
		zap.Int("start", job.Start),
		zap.Int("end", job.End),
		zap.Int("concurrency", job.Concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(job.Concurrency)

	var succeeded, failed atomic.Int64

	for id := job.Start; id <= job.End; id++ {
		if gctx.Err() != nil {
			break
		}
		url := fmt.Sprintf(job.Pattern, id)
		g.Go(func() error {
			log := zap.L().With(zap.Int("candidate_id", id), zap.String("url", url))
			defer pause(gctx, job.Pause)

			rec, err := build(gctx, url)
			if err != nil {
				failed.Add(1)
				log.Error("bulk build failed", zap.Error(err))
				return nil // don't abort the run on individual failure
			}
			if job.OutDir != "" {
				path := filepath.Join(job.OutDir, fmt.Sprintf("candidate_%d.json", id))
				if err := writeJSONFile(path, rec); err != nil {
					failed.Add(1)
					log.Error("bulk write failed", zap.Error(err))
					return nil
				}
			}
			if err := saveIfRequested(gctx, job.Store, rec); err != nil {
				failed.Add(1)
				log.Error("bulk save failed", zap.Error(err))
				return nil
			}

			succeeded.Add(1)
			log.Info("bulk build complete", zap.String("name", rec.Name()), zap.Int("fields", rec.Fields.Len()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return bulkResult{}, eris.Wrap(err, "bulk processing")
	}

	res := bulkResult{Succeeded: succeeded.Load(), Failed: failed.Load()}
	zap.L().Info("bulk complete",
		zap.Int64("succeeded", res.Succeeded),
		zap.Int64("failed", res.Failed),
	)
	return res, nil
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func init() {
	bulkCmd.Flags().StringVar(&bulkPattern, "pattern", "", "candidate URL pattern with %d for the id (default from config)")
	bulkCmd.Flags().IntVar(&bulkStart, "start", 1, "first candidate id")
	bulkCmd.Flags().IntVar(&bulkEnd, "end", 100, "last candidate id")
	bulkCmd.Flags().StringVar(&bulkOutDir, "out-dir", "bulk_output", "directory for per-candidate JSON files")
	bulkCmd.Flags().IntVar(&bulkConcurrency, "concurrency", 0, "parallel builds (default from config)")
	bulkCmd.Flags().BoolVar(&bulkSave, "save", false, "save profiles to the configured store")
	rootCmd.AddCommand(bulkCmd)
}
