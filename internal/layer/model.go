package layer

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrSRIDMismatch is returned when two layers carry different, non-zero SRIDs.
// Spatial predicates between such layers are meaningless, so no operation
// attempts to reconcile them silently.
var ErrSRIDMismatch = eris.New("layer: SRID mismatch between layers")

// Region is a single polygon record: a multipolygon geometry plus the
// descriptive attributes carried over from the source file.
type Region struct {
	Name string
	Code string
	Geom *geom.MultiPolygon
}

// RegionLayer is an ordered collection of polygon regions sharing one SRID.
type RegionLayer struct {
	SRID    int
	Regions []Region
}

// Len returns the number of regions in the layer.
func (l *RegionLayer) Len() int { return len(l.Regions) }

// Filter returns a new layer containing only the regions for which keep
// returns true. Order is preserved and the SRID carried over.
func (l *RegionLayer) Filter(keep func(Region) bool) *RegionLayer {
	out := &RegionLayer{SRID: l.SRID}
	for _, r := range l.Regions {
		if keep(r) {
			out.Regions = append(out.Regions, r)
		}
	}
	return out
}

// PointRecord is a single point observation: a coordinate pair plus the
// attribute columns of its source row.
type PointRecord struct {
	X     float64
	Y     float64
	Attrs map[string]string
}

// PointLayer is an ordered collection of point records. SRID is zero until
// one is assigned or copied from a region layer.
type PointLayer struct {
	SRID    int
	Columns []string
	Points  []PointRecord
}

// Len returns the number of points in the layer.
func (l *PointLayer) Len() int { return len(l.Points) }

// AlignSRID ensures the point layer shares the region layer's SRID before any
// cross-layer predicate runs. A point layer without an SRID adopts the region
// layer's; conflicting non-zero SRIDs are an error.
func AlignSRID(points *PointLayer, regions *RegionLayer) error {
	if regions.SRID == 0 {
		return eris.New("layer: region layer has no SRID")
	}
	if points.SRID == 0 {
		points.SRID = regions.SRID
		return nil
	}
	if points.SRID != regions.SRID {
		return eris.Wrapf(ErrSRIDMismatch, "points SRID %d, regions SRID %d", points.SRID, regions.SRID)
	}
	return nil
}

// Geographic reports whether the layer's coordinates are geographic
// (longitude/latitude) rather than projected. Distances over geographic
// layers use great-circle kilometres.
func (l *RegionLayer) Geographic() bool { return l.SRID == 4326 }
