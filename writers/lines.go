package writers

import (
	"github.com/go-spatial/geom/encoding/gpkg"
	"github.com/paulmach/osm"

	"github.com/pdok/osmgpkg/geometry"
	"github.com/pdok/osmgpkg/layer"
)

const LinesLayer = "lines"

var lineFields = []layer.Field{
	{Name: "osm_id", Type: layer.Integer64, Width: layer.NoWidth},
	{Name: "name", Type: layer.String, Width: 255},
	{Name: "highway", Type: layer.String, Width: 64},
	{Name: "node_count", Type: layer.Integer, Width: layer.NoWidth},
}

// Lines writes every way that is not an area as a linestring.
type Lines struct {
	w       *layer.Writer
	factory *geometry.Factory
}

func NewLines(root *layer.OutputRoot, factory *geometry.Factory, opts layer.Options) (*Lines, error) {
	w, err := open(root, LinesLayer, gpkg.Linestring, lineFields, opts)
	if err != nil {
		return nil, err
	}
	return &Lines{w: w, factory: factory}, nil
}

func (l *Lines) FeedNode(*osm.Node) error { return nil }

func (l *Lines) FeedWay(way *osm.Way) error {
	if _, isArea := areaKind(way); isArea {
		return nil
	}
	line, err := l.factory.LineString(way)
	if err != nil {
		if l.w.SkipInvalid(err) {
			return nil
		}
		return err
	}
	return l.w.WriteFeature(layer.Feature{
		Geometry: line,
		Values: map[string]any{
			"osm_id":     int64(way.ID),
			"name":       nullable(way.Tags.Find("name")),
			"highway":    nullable(way.Tags.Find("highway")),
			"node_count": len(way.Nodes),
		},
	})
}

func (l *Lines) FeedRelation(*osm.Relation) error { return nil }

func (l *Lines) Close() error {
	return l.w.Close()
}

// Name of the underlying layer.
func (l *Lines) Name() string {
	return l.w.Name()
}

// Stats of the underlying layer.
func (l *Lines) Stats() layer.Stats {
	return l.w.Stats()
}
