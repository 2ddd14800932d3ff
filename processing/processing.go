// Package processing takes care of the logistics around reading entities from a Source and
// feeding them to Handlers. Not what the Handlers do with them.
package processing

import (
	"context"
	"sync"

	"github.com/paulmach/osm"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const bufferSize = 1024

// Options for Process.
type Options struct {
	Logger *zap.Logger
	// Progress is called for every object read, when set.
	Progress func(osm.Object)
}

// Stats counts the entities that were fed to the handlers.
type Stats struct {
	Nodes     uint64
	Ways      uint64
	Relations uint64
	Other     uint64
}

// Process reads all objects from source and feeds them to every handler, in handler order.
// The first handler or source error stops the feeding. Handlers are always closed,
// so whatever they accepted up to that point is committed.
func Process(ctx context.Context, source Source, handlers []Handler, opts Options) (Stats, error) {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := make(chan osm.Object, bufferSize)
	var readErr error
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		readErr = readObjects(ctx, source, objects)
	}()

	stats, err := feedHandlers(objects, handlers, opts.Progress)
	// unblock the reader if feeding stopped early
	cancel()
	wg.Wait()
	if err == nil {
		err = readErr
	}

	for _, h := range handlers {
		err = multierr.Append(err, h.Close())
	}

	log.Info("finished feeding",
		zap.Uint64("nodes", stats.Nodes),
		zap.Uint64("ways", stats.Ways),
		zap.Uint64("relations", stats.Relations))
	if stats.Other > 0 {
		log.Debug("ignored objects", zap.Uint64("other", stats.Other))
	}
	return stats, err
}

// readObjects reads the objects from the source until it is exhausted or ctx is done
func readObjects(ctx context.Context, source Source, objects chan<- osm.Object) error {
	defer close(objects)
	for source.Scan() {
		select {
		case objects <- source.Object():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return source.Err()
}

// feedHandlers dispatches the objects on their kind
func feedHandlers(objects <-chan osm.Object, handlers []Handler, progress func(osm.Object)) (Stats, error) {
	var stats Stats
	for o := range objects {
		if progress != nil {
			progress(o)
		}
		var err error
		switch e := o.(type) {
		case *osm.Node:
			stats.Nodes++
			for _, h := range handlers {
				if err = h.FeedNode(e); err != nil {
					break
				}
			}
		case *osm.Way:
			stats.Ways++
			for _, h := range handlers {
				if err = h.FeedWay(e); err != nil {
					break
				}
			}
		case *osm.Relation:
			stats.Relations++
			for _, h := range handlers {
				if err = h.FeedRelation(e); err != nil {
					break
				}
			}
		default:
			stats.Other++
		}
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}
