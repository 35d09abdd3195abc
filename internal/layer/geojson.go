package layer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadGeoJSON reads a GeoJSON feature collection into a RegionLayer. Polygon
// features are promoted to multipolygons; features with other geometry types
// are skipped. GeoJSON coordinates are WGS 84 by convention, so the layer
// SRID defaults to 4326 when the mapping leaves it unset.
func LoadGeoJSON(path string, fm FieldMapping) (*RegionLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: read geojson %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "layer: parse geojson %s", path)
	}

	srid := fm.SRID
	if srid == 0 {
		srid = 4326
	}

	out := &RegionLayer{SRID: srid}
	var skipped int

	for _, f := range fc.Features {
		var mp *geom.MultiPolygon
		switch g := f.Geometry.(type) {
		case *geom.MultiPolygon:
			mp = g
		case *geom.Polygon:
			mp = geom.NewMultiPolygon(geom.XY)
			if err := mp.Push(g); err != nil {
				skipped++
				continue
			}
		default:
			skipped++
			continue
		}
		mp.SetSRID(srid)

		out.Regions = append(out.Regions, Region{
			Name: propertyString(f.Properties, fm.NameField),
			Code: propertyString(f.Properties, fm.CodeField),
			Geom: mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("layer: skipped non-polygon geojson features",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(out.Regions) == 0 {
		return nil, eris.Errorf("layer: no polygon features in %s", path)
	}

	return out, nil
}

func propertyString(props map[string]any, key string) string {
	if key == "" || props == nil {
		return ""
	}
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
