package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/layer"
	"github.com/sells-group/spatial-cli/internal/match"
	"github.com/sells-group/spatial-cli/internal/render"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Assign points to enclosing regions",
	Long:  "Loads a polygon layer and a point table, aligns their coordinate reference systems, computes the containment relation, and reports per-point region assignments and per-region point counts.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		regions, err := loadRegionsFromFlags(cmd)
		if err != nil {
			return err
		}
		points, err := loadPointsFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := layer.AlignSRID(points, regions); err != nil {
			return err
		}

		zap.L().Info("matching points to regions",
			zap.Int("regions", regions.Len()),
			zap.Int("points", points.Len()),
			zap.Int("srid", regions.SRID),
		)

		ambiguous, _ := cmd.Flags().GetString("ambiguous")
		if ambiguous == "" {
			ambiguous = cfg.Match.Ambiguous
		}

		res, err := match.Match(regions, points, match.Options{Ambiguous: ambiguous})
		if err != nil {
			return eris.Wrap(err, "match")
		}

		fmt.Printf("points: %d  assigned: %d  unassigned: %d  ambiguous: %d\n",
			points.Len(), res.Assigned(), points.Len()-res.Assigned(), len(res.Ambiguous))
		for i, r := range regions.Regions {
			if res.Counts[i] > 0 {
				fmt.Printf("  %-30s %s  %d\n", r.Name, r.Code, res.Counts[i])
			}
		}

		if doPlot, _ := cmd.Flags().GetBool("plot"); doPlot {
			r, err := render.New(cfg.Render.OutputDir, cfg.Render.Format, cfg.Render.WidthIn, cfg.Render.HeightIn)
			if err != nil {
				return err
			}
			path, err := r.Match(regions, points, res)
			if err != nil {
				return err
			}
			fmt.Printf("plot written to %s\n", path)
		}

		return saveRunSummary(ctx, "match",
			map[string]any{"ambiguous": ambiguous, "srid": regions.SRID},
			map[string]any{
				"regions":    regions.Len(),
				"points":     points.Len(),
				"assigned":   res.Assigned(),
				"ambiguous":  len(res.Ambiguous),
				"unassigned": points.Len() - res.Assigned(),
			})
	},
}

func init() {
	regionLayerFlags(matchCmd)
	pointLayerFlags(matchCmd)
	matchCmd.Flags().String("ambiguous", "", "policy for multi-region points: fail or first")
	matchCmd.Flags().Bool("plot", false, "render the match result to a plot")
	rootCmd.AddCommand(matchCmd)
}
