// Package writers holds the layers the tool can produce. Each one is a processing.Handler
// that picks the entities it cares about, builds their geometry and fields and hands them
// to its own layer.Writer.
package writers

import (
	"fmt"
	"strings"

	"github.com/go-spatial/geom/encoding/gpkg"
	"github.com/paulmach/osm"

	"github.com/pdok/osmgpkg/geometry"
	"github.com/pdok/osmgpkg/layer"
	"github.com/pdok/osmgpkg/mapslicehelp"
	"github.com/pdok/osmgpkg/processing"
)

// Layer is a handler that writes one layer.
type Layer interface {
	processing.Handler
	Name() string
	Stats() layer.Stats
}

type constructor func(*layer.OutputRoot, *geometry.Factory, layer.Options) (processing.Handler, error)

var registry = map[string]constructor{
	PointsLayer: func(r *layer.OutputRoot, f *geometry.Factory, o layer.Options) (processing.Handler, error) {
		return NewPoints(r, f, o)
	},
	LinesLayer: func(r *layer.OutputRoot, f *geometry.Factory, o layer.Options) (processing.Handler, error) {
		return NewLines(r, f, o)
	},
	AreasLayer: func(r *layer.OutputRoot, f *geometry.Factory, o layer.Options) (processing.Handler, error) {
		return NewAreas(r, f, o)
	},
}

// Names returns the names of all layers, sorted.
func Names() []string {
	return mapslicehelp.SortedKeys(registry)
}

// New returns the handlers for the named layers, preceded by the handler that
// records node locations for factory. Nothing is left open when it fails.
func New(names []string, root *layer.OutputRoot, factory *geometry.Factory, opts layer.Options) ([]processing.Handler, error) {
	handlers := []processing.Handler{Locations{Factory: factory}}
	trimmed := make([]string, len(names))
	for i, name := range names {
		trimmed[i] = strings.TrimSpace(name)
	}
	for _, name := range mapslicehelp.Dedupe(trimmed) {
		c, ok := registry[name]
		if !ok {
			closeAll(handlers)
			return nil, fmt.Errorf("unknown layer '%s', known layers: %s", name, strings.Join(Names(), ", "))
		}
		h, err := c(root, factory, opts)
		if err != nil {
			closeAll(handlers)
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

func closeAll(handlers []processing.Handler) {
	for _, h := range handlers {
		_ = h.Close()
	}
}

// open creates the layer and declares its fields straight away.
func open(root *layer.OutputRoot, name string, geometryType gpkg.GeometryType, fields []layer.Field, opts layer.Options) (*layer.Writer, error) {
	pending, err := layer.New(root, name, geometryType, opts)
	if err != nil {
		return nil, err
	}
	w, err := pending.DeclareFields(fields)
	if err != nil {
		_ = pending.Close()
		return nil, err
	}
	return w, nil
}

// Locations records the location of every node, so ways can be turned into geometries.
type Locations struct {
	Factory *geometry.Factory
}

func (l Locations) FeedNode(n *osm.Node) error {
	l.Factory.AddNode(n)
	return nil
}

func (l Locations) FeedWay(*osm.Way) error { return nil }

func (l Locations) FeedRelation(*osm.Relation) error { return nil }

func (l Locations) Close() error { return nil }

// tagsString renders tags as k=v pairs separated by semicolons, in their original order.
func tagsString(tags osm.Tags) string {
	var sb strings.Builder
	for i, t := range tags {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(t.Key)
		sb.WriteByte('=')
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// nullable turns the empty string into NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
