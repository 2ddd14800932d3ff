// Package geometry builds go-spatial geometries from OSM entities.
//
// Every constructor returns either a geometry or an *Error that names the entity,
// so callers can log and skip that one entity and carry on with the rest.
package geometry

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"github.com/pdok/osmgpkg/geomhelp"
)

var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrUnknownLocation = errors.New("location of node not known")
	ErrTooFewPoints    = errors.New("not enough points")
	ErrNotClosed       = errors.New("ring is not closed")
	ErrZeroArea        = errors.New("ring has no area")
)

// Error tells which entity a geometry could not be built for.
type Error struct {
	ID  osm.FeatureID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("geometry of %s: %v", e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(id osm.FeatureID, err error) *Error {
	return &Error{ID: id, Err: err}
}

// Factory turns nodes and ways into points, linestrings and polygons (lon/lat, WGS84).
// Ways are resolved through node locations recorded with AddNode, unless their nodes
// carry locations themselves.
type Factory struct {
	locations map[osm.NodeID][2]float64
}

func NewFactory() *Factory {
	return &Factory{locations: make(map[osm.NodeID][2]float64)}
}

// AddNode records the location of n for later ways. Invalid locations are not recorded.
func (f *Factory) AddNode(n *osm.Node) {
	if validLocation(n.Lon, n.Lat) {
		f.locations[n.ID] = [2]float64{n.Lon, n.Lat}
	}
}

// Locations returns the number of recorded node locations.
func (f *Factory) Locations() int {
	return len(f.locations)
}

// Point returns the location of n.
func (f *Factory) Point(n *osm.Node) (geom.Point, error) {
	if !validLocation(n.Lon, n.Lat) {
		return geom.Point{}, newError(n.FeatureID(), errors.Wrapf(ErrInvalidLocation, "lon %v lat %v", n.Lon, n.Lat))
	}
	return geom.Point{n.Lon, n.Lat}, nil
}

// LineString returns the way as a line, with consecutive duplicate points removed.
func (f *Factory) LineString(w *osm.Way) (geom.LineString, error) {
	pts, err := f.wayPoints(w)
	if err != nil {
		return nil, err
	}
	if len(pts) < 2 {
		return nil, newError(w.FeatureID(), errors.Wrapf(ErrTooFewPoints, "%d distinct point(s)", len(pts)))
	}
	return pts, nil
}

// Polygon returns a closed way as a polygon with a single ring.
func (f *Factory) Polygon(w *osm.Way) (geom.Polygon, error) {
	pts, err := f.wayPoints(w)
	if err != nil {
		return nil, err
	}
	if len(pts) < 4 {
		return nil, newError(w.FeatureID(), errors.Wrapf(ErrTooFewPoints, "%d distinct point(s)", len(pts)))
	}
	if pts[0] != pts[len(pts)-1] {
		return nil, newError(w.FeatureID(), ErrNotClosed)
	}
	if geomhelp.Shoelace(pts) == 0 {
		return nil, newError(w.FeatureID(), ErrZeroArea)
	}
	return geom.Polygon{pts}, nil
}

func (f *Factory) wayPoints(w *osm.Way) ([][2]float64, error) {
	pts := make([][2]float64, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		pt, ok := f.locate(wn)
		if !ok {
			return nil, newError(w.FeatureID(), errors.Wrapf(ErrUnknownLocation, "node %d", wn.ID))
		}
		if len(pts) > 0 && pts[len(pts)-1] == pt {
			continue
		}
		pts = append(pts, pt)
	}
	return pts, nil
}

func (f *Factory) locate(wn osm.WayNode) ([2]float64, bool) {
	if pt, ok := f.locations[wn.ID]; ok {
		return pt, true
	}
	if (wn.Lat != 0 || wn.Lon != 0) && validLocation(wn.Lon, wn.Lat) {
		return [2]float64{wn.Lon, wn.Lat}, true
	}
	return [2]float64{}, false
}

func validLocation(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}
