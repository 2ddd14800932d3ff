package writers

import (
	"github.com/go-spatial/geom/encoding/gpkg"
	"github.com/paulmach/osm"

	"github.com/pdok/osmgpkg/geometry"
	"github.com/pdok/osmgpkg/layer"
)

const PointsLayer = "points"

var pointFields = []layer.Field{
	{Name: "osm_id", Type: layer.Integer64, Width: layer.NoWidth},
	{Name: "name", Type: layer.String, Width: 255},
	{Name: "tags", Type: layer.String, Width: layer.NoWidth},
}

// Points writes every tagged node as a point.
type Points struct {
	w       *layer.Writer
	factory *geometry.Factory
}

func NewPoints(root *layer.OutputRoot, factory *geometry.Factory, opts layer.Options) (*Points, error) {
	w, err := open(root, PointsLayer, gpkg.Point, pointFields, opts)
	if err != nil {
		return nil, err
	}
	return &Points{w: w, factory: factory}, nil
}

func (p *Points) FeedNode(n *osm.Node) error {
	if len(n.Tags) == 0 {
		return nil
	}
	pt, err := p.factory.Point(n)
	if err != nil {
		if p.w.SkipInvalid(err) {
			return nil
		}
		return err
	}
	return p.w.WriteFeature(layer.Feature{
		Geometry: pt,
		Values: map[string]any{
			"osm_id": int64(n.ID),
			"name":   nullable(n.Tags.Find("name")),
			"tags":   tagsString(n.Tags),
		},
	})
}

func (p *Points) FeedWay(*osm.Way) error { return nil }

func (p *Points) FeedRelation(*osm.Relation) error { return nil }

func (p *Points) Close() error {
	return p.w.Close()
}

// Name of the underlying layer.
func (p *Points) Name() string {
	return p.w.Name()
}

// Stats of the underlying layer.
func (p *Points) Stats() layer.Stats {
	return p.w.Stats()
}
