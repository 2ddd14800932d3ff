package processing

import (
	"github.com/paulmach/osm"
)

//go:generate mockgen -destination=./mock_handler_test.go -package=processing github.com/pdok/osmgpkg/processing Handler

// Handler gets every entity a Source produces. Entities a Handler has no interest in are
// ignored without error. Close is called once, after the last entity or after a failure.
type Handler interface {
	FeedNode(*osm.Node) error
	FeedWay(*osm.Way) error
	FeedRelation(*osm.Relation) error
	Close() error
}

// Source produces OSM entities. The osmxml and osmpbf scanners are Sources.
type Source interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}
