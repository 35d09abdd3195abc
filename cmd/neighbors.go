package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/layer"
	"github.com/sells-group/spatial-cli/internal/neighbor"
	"github.com/sells-group/spatial-cli/internal/render"
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors",
	Short: "Derive region neighbor graphs",
	Long:  "Loads a polygon layer, optionally filters it to a geographic subset, and builds adjacency graphs by shared border, k-nearest centroids, and/or centroid distance band.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		regions, err := loadRegionsFromFlags(cmd)
		if err != nil {
			return err
		}
		if prefix, _ := cmd.Flags().GetString("code-prefix"); prefix != "" {
			regions = regions.Filter(func(r layer.Region) bool {
				return strings.HasPrefix(r.Code, prefix)
			})
			if regions.Len() == 0 {
				return eris.Errorf("no regions with code prefix %q", prefix)
			}
		}

		policy, _ := cmd.Flags().GetString("policy")
		k, _ := cmd.Flags().GetInt("k")
		if k == 0 {
			k = cfg.Neighbor.K
		}
		d1, d2 := cfg.Neighbor.MinDistance, cfg.Neighbor.MaxDistance
		if cmd.Flags().Changed("min-distance") {
			d1, _ = cmd.Flags().GetFloat64("min-distance")
		}
		if cmd.Flags().Changed("max-distance") {
			d2, _ = cmd.Flags().GetFloat64("max-distance")
		}
		contiguity, _ := cmd.Flags().GetString("contiguity")
		if contiguity == "" {
			contiguity = cfg.Neighbor.Contiguity
		}
		includeSelf, _ := cmd.Flags().GetBool("include-self")

		zap.L().Info("building neighbor graphs",
			zap.Int("regions", regions.Len()),
			zap.String("policy", policy),
		)

		// Centroids are computed once and shared by the distance policies.
		cents, err := neighbor.Centroids(regions)
		if err != nil {
			return err
		}
		metric := neighbor.MetricFor(regions)

		var graphs []*neighbor.Graph
		if policy == "all" || policy == neighbor.PolicyBorder {
			g, err := neighbor.Border(regions, neighbor.BorderOptions{Contiguity: contiguity, IncludeSelf: includeSelf})
			if err != nil {
				return err
			}
			graphs = append(graphs, g)
		}
		if policy == "all" || policy == neighbor.PolicyKNearest {
			g, err := neighbor.KNearest(cents, metric, k)
			if err != nil {
				return err
			}
			graphs = append(graphs, g)
		}
		if policy == "all" || policy == neighbor.PolicyDistanceBand {
			g, err := neighbor.DistanceBand(cents, metric, d1, d2)
			if err != nil {
				return err
			}
			graphs = append(graphs, g)
		}
		if len(graphs) == 0 {
			return eris.Errorf("unknown policy %q (want border, knn, band, or all)", policy)
		}

		summary := make(map[string]any, len(graphs))
		for _, g := range graphs {
			s := g.Stats()
			fmt.Printf("%-8s regions: %d  links: %d  avg: %.2f  degree: [%d, %d]\n",
				g.Policy, s.Regions, s.Links, s.AvgLinks, s.MinDegree, s.MaxDegree)
			summary[g.Policy] = s
		}

		if doPlot, _ := cmd.Flags().GetBool("plot"); doPlot {
			r, err := render.New(cfg.Render.OutputDir, cfg.Render.Format, cfg.Render.WidthIn, cfg.Render.HeightIn)
			if err != nil {
				return err
			}
			paths, err := r.Graphs(ctx, regions, cents, graphs)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Printf("plot written to %s\n", p)
			}
		}

		return saveRunSummary(ctx, "neighbors",
			map[string]any{
				"policy": policy, "k": k, "min_distance": d1, "max_distance": d2,
				"contiguity": contiguity, "include_self": includeSelf,
			},
			summary)
	},
}

func init() {
	regionLayerFlags(neighborsCmd)
	neighborsCmd.Flags().String("policy", "all", "adjacency policy: border, knn, band, or all")
	neighborsCmd.Flags().String("code-prefix", "", "keep only regions whose code starts with this prefix")
	neighborsCmd.Flags().Int("k", 0, "neighbor count for the knn policy")
	neighborsCmd.Flags().Float64("min-distance", 0, "inclusive lower bound for the band policy")
	neighborsCmd.Flags().Float64("max-distance", 0, "inclusive upper bound for the band policy")
	neighborsCmd.Flags().String("contiguity", "", "border rule: queen or rook")
	neighborsCmd.Flags().Bool("include-self", false, "use the intersects-style border variant that includes self")
	neighborsCmd.Flags().Bool("plot", false, "render each graph to a plot")
	rootCmd.AddCommand(neighborsCmd)
}
