package layer

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// FieldMapping names the DBF attribute fields to read per region and the SRID
// to stamp on the loaded layer.
type FieldMapping struct {
	NameField string `yaml:"name_field"`
	CodeField string `yaml:"code_field"`
	SRID      int    `yaml:"srid"`
}

// LoadShapefile reads a polygon shapefile into a RegionLayer. Polygon shapes
// become go-geom multipolygons; records with missing or malformed geometry
// are skipped, not fatal. DBF attributes are decoded from Latin-1, the usual
// encoding of Census-style shapefiles.
func LoadShapefile(path string, fm FieldMapping) (*RegionLayer, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, fm.NameField)
	codeIdx := fieldIndex(reader, fm.CodeField)
	if nameIdx < 0 {
		return nil, eris.Errorf("layer: field %q not found in %s", fm.NameField, path)
	}

	srid := fm.SRID
	if srid == 0 {
		srid = 4326
	}

	out := &RegionLayer{SRID: srid}
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly, srid)
		if mp == nil {
			skipped++
			continue
		}

		r := Region{
			Name: decodeAttribute(reader.Attribute(nameIdx)),
			Geom: mp,
		}
		if codeIdx >= 0 {
			r.Code = decodeAttribute(reader.Attribute(codeIdx))
		}
		out.Regions = append(out.Regions, r)
	}

	if skipped > 0 {
		zap.L().Debug("layer: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(out.Regions) == 0 {
		return nil, eris.Errorf("layer: no polygon records in %s", path)
	}

	return out, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Each shapefile part becomes one single-ring polygon.
func polygonToMultiPolygon(p *shp.Polygon, srid int) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("layer: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("layer: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	if name == "" {
		return -1
	}
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// decodeAttribute trims DBF padding and converts Latin-1 bytes to UTF-8.
func decodeAttribute(raw string) string {
	s := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
