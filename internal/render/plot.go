// Package render draws match results and adjacency graphs for visual
// inspection. It consumes matcher and neighbor outputs without transforming
// them.
package render

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/spatial-cli/internal/layer"
	"github.com/sells-group/spatial-cli/internal/match"
	"github.com/sells-group/spatial-cli/internal/neighbor"
)

var (
	outlineColor    = color.RGBA{R: 140, G: 140, B: 140, A: 255}
	assignedColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	unassignedColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	edgeColor       = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	centroidColor   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Renderer writes plot artifacts under a timestamped run directory.
type Renderer struct {
	runDir string
	format string
	width  vg.Length
	height vg.Length
}

// New creates a renderer rooted at baseDir/<timestamp>.
func New(baseDir, format string, widthIn, heightIn float64) (*Renderer, error) {
	if format == "" {
		format = "png"
	}
	runDir := filepath.Join(baseDir, time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "render: create output dir %s", runDir)
	}
	return &Renderer{
		runDir: runDir,
		format: format,
		width:  vg.Length(widthIn) * vg.Inch,
		height: vg.Length(heightIn) * vg.Inch,
	}, nil
}

// Dir returns the run directory artifacts are written to.
func (r *Renderer) Dir() string { return r.runDir }

// Match draws region outlines with point markers colored by assignment and
// returns the artifact path.
func (r *Renderer) Match(regions *layer.RegionLayer, points *layer.PointLayer, res *match.Result) (string, error) {
	p := plot.New()
	p.Title.Text = "Points in regions"

	if err := addOutlines(p, regions); err != nil {
		return "", err
	}

	var assigned, unassigned plotter.XYs
	for i, pt := range points.Points {
		xy := plotter.XY{X: pt.X, Y: pt.Y}
		if res.Assignments[i] == match.NoRegion {
			unassigned = append(unassigned, xy)
		} else {
			assigned = append(assigned, xy)
		}
	}
	if err := addScatter(p, assigned, assignedColor, "assigned"); err != nil {
		return "", err
	}
	if err := addScatter(p, unassigned, unassignedColor, "unassigned"); err != nil {
		return "", err
	}

	return r.save(p, "match")
}

// Graphs draws one plot per adjacency graph, each showing region outlines,
// centroid markers, and a segment per directed link. The graphs render
// concurrently; each artifact is independent.
func (r *Renderer) Graphs(ctx context.Context, regions *layer.RegionLayer, cents []neighbor.Centroid, graphs []*neighbor.Graph) ([]string, error) {
	paths := make([]string, len(graphs))
	eg, _ := errgroup.WithContext(ctx)
	for i, g := range graphs {
		i, g := i, g
		eg.Go(func() error {
			path, err := r.graph(regions, cents, g)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *Renderer) graph(regions *layer.RegionLayer, cents []neighbor.Centroid, g *neighbor.Graph) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Adjacency (%s)", g.Policy)

	if err := addOutlines(p, regions); err != nil {
		return "", err
	}

	for i, ns := range g.Neighbors {
		for _, j := range ns {
			seg := plotter.XYs{
				{X: cents[i].X, Y: cents[i].Y},
				{X: cents[j].X, Y: cents[j].Y},
			}
			line, err := plotter.NewLine(seg)
			if err != nil {
				return "", eris.Wrap(err, "render: graph edge")
			}
			line.Color = edgeColor
			line.Width = vg.Points(0.75)
			p.Add(line)
		}
	}

	marks := make(plotter.XYs, len(cents))
	for i, c := range cents {
		marks[i] = plotter.XY{X: c.X, Y: c.Y}
	}
	if err := addScatter(p, marks, centroidColor, ""); err != nil {
		return "", err
	}

	return r.save(p, g.Policy)
}

func addOutlines(p *plot.Plot, regions *layer.RegionLayer) error {
	for _, region := range regions.Regions {
		mp := region.Geom
		for i := 0; i < mp.NumPolygons(); i++ {
			poly := mp.Polygon(i)
			for j := 0; j < poly.NumLinearRings(); j++ {
				flat := poly.LinearRing(j).FlatCoords()
				xys := make(plotter.XYs, 0, len(flat)/2)
				for k := 0; k+1 < len(flat); k += 2 {
					xys = append(xys, plotter.XY{X: flat[k], Y: flat[k+1]})
				}
				line, err := plotter.NewLine(xys)
				if err != nil {
					return eris.Wrap(err, "render: region outline")
				}
				line.Color = outlineColor
				line.Width = vg.Points(0.5)
				p.Add(line)
			}
		}
	}
	return nil
}

func addScatter(p *plot.Plot, xys plotter.XYs, c color.Color, label string) error {
	if len(xys) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return eris.Wrap(err, "render: scatter")
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)
	if label != "" {
		p.Legend.Add(label, s)
	}
	return nil
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	path := filepath.Join(r.runDir, fmt.Sprintf("%s.%s", name, r.format))
	if err := p.Save(r.width, r.height, path); err != nil {
		return "", eris.Wrapf(err, "render: save %s", path)
	}
	zap.L().Debug("render: wrote artifact", zap.String("path", path))
	return path, nil
}
