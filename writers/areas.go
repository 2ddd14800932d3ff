package writers

import (
	"github.com/go-spatial/geom/encoding/gpkg"
	"github.com/paulmach/osm"

	"github.com/pdok/osmgpkg/geometry"
	"github.com/pdok/osmgpkg/layer"
)

const AreasLayer = "areas"

var areaFields = []layer.Field{
	{Name: "osm_id", Type: layer.Integer64, Width: layer.NoWidth},
	{Name: "name", Type: layer.String, Width: 255},
	{Name: "kind", Type: layer.String, Width: 64},
}

// keys that make a closed way an area, checked in this order
var areaKeys = []string{"building", "landuse", "natural", "leisure", "amenity", "waterway", "place"}

// Areas writes every closed way that is tagged as an area as a polygon.
type Areas struct {
	w       *layer.Writer
	factory *geometry.Factory
}

func NewAreas(root *layer.OutputRoot, factory *geometry.Factory, opts layer.Options) (*Areas, error) {
	w, err := open(root, AreasLayer, gpkg.Polygon, areaFields, opts)
	if err != nil {
		return nil, err
	}
	return &Areas{w: w, factory: factory}, nil
}

func (a *Areas) FeedNode(*osm.Node) error { return nil }

func (a *Areas) FeedWay(way *osm.Way) error {
	kind, isArea := areaKind(way)
	if !isArea {
		return nil
	}
	polygon, err := a.factory.Polygon(way)
	if err != nil {
		if a.w.SkipInvalid(err) {
			return nil
		}
		return err
	}
	return a.w.WriteFeature(layer.Feature{
		Geometry: polygon,
		Values: map[string]any{
			"osm_id": int64(way.ID),
			"name":   nullable(way.Tags.Find("name")),
			"kind":   nullable(kind),
		},
	})
}

func (a *Areas) FeedRelation(*osm.Relation) error { return nil }

func (a *Areas) Close() error {
	return a.w.Close()
}

// Name of the underlying layer.
func (a *Areas) Name() string {
	return a.w.Name()
}

// Stats of the underlying layer.
func (a *Areas) Stats() layer.Stats {
	return a.w.Stats()
}

// areaKind reports whether way is a closed way meant as an area, and what kind of area.
func areaKind(way *osm.Way) (string, bool) {
	n := len(way.Nodes)
	if n < 4 || way.Nodes[0].ID != way.Nodes[n-1].ID {
		return "", false
	}
	area := way.Tags.Find("area")
	if area == "no" {
		return "", false
	}
	for _, key := range areaKeys {
		if v := way.Tags.Find(key); v != "" {
			return key + "=" + v, true
		}
	}
	if area == "yes" {
		return "area=yes", true
	}
	return "", false
}
