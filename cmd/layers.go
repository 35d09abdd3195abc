package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/spatial-cli/internal/layer"
)

// regionLayerFlags registers the flags shared by commands that read a region
// layer.
func regionLayerFlags(cmd *cobra.Command) {
	cmd.Flags().String("regions", "", "path to the polygon layer (.shp or .geojson)")
	cmd.Flags().String("manifest", "", "path to a layer manifest (overrides layer flags)")
	cmd.Flags().String("name-field", "", "region name attribute field")
	cmd.Flags().String("code-field", "", "region code attribute field")
	cmd.Flags().Int("srid", 0, "region layer SRID")
}

// loadRegionsFromFlags resolves the region layer from --manifest or the
// individual flags, falling back to configured defaults.
func loadRegionsFromFlags(cmd *cobra.Command) (*layer.RegionLayer, error) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath != "" {
		m, err := layer.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		return loadRegions(m.Regions.Path, m.Regions.FieldMapping)
	}

	path, _ := cmd.Flags().GetString("regions")
	if path == "" {
		return nil, eris.New("either --regions or --manifest is required")
	}

	fm := layer.FieldMapping{
		NameField: cfg.Layers.NameField,
		CodeField: cfg.Layers.CodeField,
		SRID:      cfg.Layers.SRID,
	}
	if v, _ := cmd.Flags().GetString("name-field"); v != "" {
		fm.NameField = v
	}
	if v, _ := cmd.Flags().GetString("code-field"); v != "" {
		fm.CodeField = v
	}
	if v, _ := cmd.Flags().GetInt("srid"); v != 0 {
		fm.SRID = v
	}
	return loadRegions(path, fm)
}

func loadRegions(path string, fm layer.FieldMapping) (*layer.RegionLayer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return layer.LoadShapefile(path, fm)
	case ".geojson", ".json":
		return layer.LoadGeoJSON(path, fm)
	default:
		return nil, eris.Errorf("unsupported region layer format %q", filepath.Ext(path))
	}
}

// pointLayerFlags registers the flags shared by commands that read a point
// table.
func pointLayerFlags(cmd *cobra.Command) {
	cmd.Flags().String("points", "", "path to the point table (.csv or .xlsx)")
	cmd.Flags().String("x-column", "", "X (longitude) coordinate column")
	cmd.Flags().String("y-column", "", "Y (latitude) coordinate column")
}

// loadPointsFromFlags resolves the point layer from --manifest or the
// individual flags.
func loadPointsFromFlags(cmd *cobra.Command) (*layer.PointLayer, error) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath != "" {
		m, err := layer.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		if m.Points.Path == "" {
			return nil, eris.New("manifest missing points.path")
		}
		return loadPoints(m.Points.Path, m.Points.TableMapping)
	}

	path, _ := cmd.Flags().GetString("points")
	if path == "" {
		return nil, eris.New("either --points or --manifest is required")
	}

	tm := layer.TableMapping{
		XColumn: cfg.Layers.XColumn,
		YColumn: cfg.Layers.YColumn,
	}
	if v, _ := cmd.Flags().GetString("x-column"); v != "" {
		tm.XColumn = v
	}
	if v, _ := cmd.Flags().GetString("y-column"); v != "" {
		tm.YColumn = v
	}
	return loadPoints(path, tm)
}

func loadPoints(path string, tm layer.TableMapping) (*layer.PointLayer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return layer.LoadPointsCSV(path, tm)
	case ".xlsx":
		return layer.LoadPointsXLSX(path, tm)
	default:
		return nil, eris.Errorf("unsupported point table format %q", filepath.Ext(path))
	}
}
