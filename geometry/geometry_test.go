package geometry

import (
	"math"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factoryWithNodes(nodes ...*osm.Node) *Factory {
	f := NewFactory()
	for _, n := range nodes {
		f.AddNode(n)
	}
	return f
}

func wayOf(id osm.WayID, nodeIDs ...osm.NodeID) *osm.Way {
	w := &osm.Way{ID: id}
	for _, nid := range nodeIDs {
		w.Nodes = append(w.Nodes, osm.WayNode{ID: nid})
	}
	return w
}

var square = []*osm.Node{
	{ID: 1, Lon: 4, Lat: 52},
	{ID: 2, Lon: 5, Lat: 52},
	{ID: 3, Lon: 5, Lat: 53},
	{ID: 4, Lon: 4, Lat: 53},
}

func TestFactory_Point(t *testing.T) {
	tests := []struct {
		name    string
		node    *osm.Node
		want    geom.Point
		wantErr error
	}{
		{name: "valid", node: &osm.Node{ID: 1, Lon: 4.9, Lat: 52.3}, want: geom.Point{4.9, 52.3}},
		{name: "null island", node: &osm.Node{ID: 2}, want: geom.Point{0, 0}},
		{name: "lon out of range", node: &osm.Node{ID: 3, Lon: 181, Lat: 52}, wantErr: ErrInvalidLocation},
		{name: "lat out of range", node: &osm.Node{ID: 4, Lon: 4, Lat: -90.5}, wantErr: ErrInvalidLocation},
		{name: "NaN", node: &osm.Node{ID: 5, Lon: math.NaN(), Lat: 52}, wantErr: ErrInvalidLocation},
	}
	f := NewFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Point(tt.node)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var gerr *Error
				require.ErrorAs(t, err, &gerr)
				assert.Equal(t, tt.node.FeatureID(), gerr.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactory_AddNode(t *testing.T) {
	f := factoryWithNodes(square...)
	f.AddNode(&osm.Node{ID: 9, Lon: 200, Lat: 52})
	assert.Equal(t, 4, f.Locations())
}

func TestFactory_LineString(t *testing.T) {
	tests := []struct {
		name    string
		way     *osm.Way
		want    geom.LineString
		wantErr error
	}{
		{name: "two points", way: wayOf(1, 1, 2), want: geom.LineString{{4, 52}, {5, 52}}},
		{name: "consecutive duplicates removed", way: wayOf(2, 1, 1, 2, 2, 3), want: geom.LineString{{4, 52}, {5, 52}, {5, 53}}},
		{name: "one node", way: wayOf(3, 1), wantErr: ErrTooFewPoints},
		{name: "same node twice", way: wayOf(4, 2, 2), wantErr: ErrTooFewPoints},
		{name: "unknown node", way: wayOf(5, 1, 99), wantErr: ErrUnknownLocation},
	}
	f := factoryWithNodes(square...)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.LineString(tt.way)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var gerr *Error
				require.ErrorAs(t, err, &gerr)
				assert.Equal(t, tt.way.FeatureID(), gerr.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactory_LineString_annotatedNodes(t *testing.T) {
	f := factoryWithNodes(&osm.Node{ID: 1, Lon: 4, Lat: 52})
	way := &osm.Way{ID: 7, Nodes: osm.WayNodes{
		{ID: 1, Lon: 10, Lat: 10}, // recorded location wins
		{ID: 2, Lon: 6, Lat: 51},
	}}
	got, err := f.LineString(way)
	require.NoError(t, err)
	assert.Equal(t, geom.LineString{{4, 52}, {6, 51}}, got)
}

func TestFactory_Polygon(t *testing.T) {
	tests := []struct {
		name    string
		way     *osm.Way
		want    geom.Polygon
		wantErr error
	}{
		{
			name: "square",
			way:  wayOf(1, 1, 2, 3, 4, 1),
			want: geom.Polygon{{{4, 52}, {5, 52}, {5, 53}, {4, 53}, {4, 52}}},
		},
		{name: "triangle without closing node", way: wayOf(2, 1, 2, 3), wantErr: ErrTooFewPoints},
		{name: "not closed", way: wayOf(3, 1, 2, 3, 4), wantErr: ErrNotClosed},
		{name: "collapsed", way: wayOf(4, 1, 2, 1, 2, 1), wantErr: ErrZeroArea},
		{name: "unknown node", way: wayOf(5, 1, 2, 99, 1), wantErr: ErrUnknownLocation},
	}
	f := factoryWithNodes(square...)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Polygon(tt.way)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestError(t *testing.T) {
	_, err := NewFactory().LineString(wayOf(42, 1, 2))
	require.Error(t, err)
	assert.Equal(t, "geometry of way/42: node 1: location of node not known", err.Error())
}
