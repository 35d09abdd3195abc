package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded analysis runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Store.Path == "" {
			return eris.New("no run store configured (set store.path)")
		}

		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := s.ListRuns(ctx, limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %-9s  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.Command, r.Summary)
		}
		return nil
	},
}

// saveRunSummary records a run in the configured store. A missing store path
// means persistence is disabled and the call is a no-op.
func saveRunSummary(ctx context.Context, command string, params, summary any) error {
	if cfg.Store.Path == "" {
		return nil
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Migrate(ctx); err != nil {
		return err
	}
	run, err := s.SaveRun(ctx, command, params, summary)
	if err != nil {
		return err
	}
	zap.L().Info("run recorded", zap.String("run_id", run.ID), zap.String("command", command))
	return nil
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
