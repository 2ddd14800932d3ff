package layer

import (
	"database/sql"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/gpkg"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pdok/osmgpkg/geometry"
	"github.com/pdok/osmgpkg/geomhelp"
	"github.com/pdok/osmgpkg/mapslicehelp"
)

const maxWktLen = 80

// Feature is one record for a layer. Values are keyed by declared field name,
// fields without a value are written as NULL.
type Feature struct {
	Geometry geom.Geometry
	Values   map[string]any
}

// Stats counts what a Writer did so far.
type Stats struct {
	Written uint64
	Skipped uint64
	Commits uint64
}

// Writer inserts features into a layer whose fields are declared.
type Writer struct {
	*core
	schema    *schema
	columns   []string
	insertSQL string

	tx      *sql.Tx
	stmt    *sql.Stmt
	pending int

	extent *geom.Extent
	stats  Stats
	closed bool
	// err is the commit or begin failure that left the writer without a statement
	err error
}

func newWriter(c *core, s *schema) (*Writer, error) {
	w := &Writer{core: c, schema: s, columns: mapslicehelp.OrderedMapKeys(s)}

	quoted := make([]string, 0, len(w.columns)+1)
	for _, name := range w.columns {
		quoted = append(quoted, quote(name))
	}
	quoted = append(quoted, geomColumn)
	query, _, err := c.sq.Insert(quote(c.name)).
		Columns(quoted...).
		Values(make([]any, len(quoted))...).
		ToSql()
	if err != nil {
		return nil, newError(KindSchema, "declare fields", c.name, errors.Wrap(err, "could not build insert statement"))
	}
	w.insertSQL = query

	if c.opts.UseTransactions {
		err = w.begin()
	} else {
		w.stmt, err = c.handle.Prepare(w.insertSQL)
	}
	if err != nil {
		return nil, newError(KindEngine, "declare fields", c.name, err)
	}
	return w, nil
}

// WriteFeature inserts f. With transactions enabled, the running transaction is committed
// and a new one begun once more than Options.BatchSize features went into it.
func (w *Writer) WriteFeature(f Feature) error {
	if w.closed {
		return ErrClosed
	}
	if w.stmt == nil {
		if w.err != nil {
			return w.err
		}
		return ErrClosed
	}
	for name := range f.Values {
		if _, declared := w.schema.Get(name); !declared {
			return newError(KindSchema, "write feature", w.name, errors.Errorf("field '%s' is not declared", name))
		}
	}

	args := make([]any, 0, len(w.columns)+1)
	for _, name := range w.columns {
		args = append(args, f.Values[name])
	}
	if f.Geometry == nil {
		args = append(args, nil)
	} else {
		sb, err := gpkg.NewBinary(SRSID, f.Geometry)
		if err != nil {
			return newError(KindEngine, "write feature", w.name, errors.Wrap(err, "could not create a binary geometry"))
		}
		args = append(args, sb)
	}

	if _, err := w.stmt.Exec(args...); err != nil {
		return newError(KindEngine, "write feature", w.name, errors.Wrapf(err, "failed to create feature %s", geomhelp.WktEncodeTruncated(f.Geometry, maxWktLen)))
	}
	w.stats.Written++
	w.addToExtent(f.Geometry)

	return w.maybeCommit()
}

// SkipInvalid logs and counts err when it is a geometry construction error, so the caller can
// drop that entity and carry on. It returns false for any other error.
func (w *Writer) SkipInvalid(err error) bool {
	var gerr *geometry.Error
	if !errors.As(err, &gerr) {
		return false
	}
	w.stats.Skipped++
	w.log.Warn("ignoring illegal geometry", zap.Stringer("id", gerr.ID), zap.Error(gerr.Err))
	return true
}

// Stats returns the counts so far.
func (w *Writer) Stats() Stats {
	return w.stats
}

// Close commits what is pending, records the layer extent, builds the spatial index if asked for
// and closes the GeoPackage. The handle is closed even if an earlier step failed.
// After a failed batch commit, Close returns that failure.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.err
	if w.tx != nil {
		err = w.commit()
	} else if w.stmt != nil {
		err = w.stmt.Close()
	}
	if err == nil && w.extent != nil {
		if uerr := w.handle.UpdateGeometryExtent(w.name, w.extent); uerr != nil {
			err = newError(KindEngine, "update extent", w.name, uerr)
		}
	}
	if err == nil && w.opts.SpatialIndex {
		err = w.buildSpatialIndex()
	}
	if cerr := w.handle.Close(); cerr != nil && err == nil {
		err = newError(KindEngine, "close data source", w.name, cerr)
	}

	w.log.Info("closed layer",
		zap.Uint64("written", w.stats.Written),
		zap.Uint64("skipped", w.stats.Skipped),
		zap.Uint64("commits", w.stats.Commits))
	return err
}

func (w *Writer) maybeCommit() error {
	if !w.opts.UseTransactions {
		return nil
	}
	w.pending++
	if w.pending <= w.opts.BatchSize {
		return nil
	}
	if err := w.commit(); err != nil {
		w.err = err
		return err
	}
	w.pending = 0
	if err := w.begin(); err != nil {
		w.err = newError(KindEngine, "start transaction", w.name, err)
		return w.err
	}
	return nil
}

func (w *Writer) begin() error {
	tx, err := w.handle.Begin()
	if err != nil {
		return errors.Wrap(err, "could not start a transaction")
	}
	stmt, err := tx.Prepare(w.insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "could not prepare a statement")
	}
	w.tx, w.stmt = tx, stmt
	return nil
}

func (w *Writer) commit() error {
	tx, stmt := w.tx, w.stmt
	w.tx, w.stmt = nil, nil
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		return newError(KindEngine, "commit transaction", w.name, err)
	}
	w.stats.Commits++
	w.log.Debug("committed transaction", zap.Int("features", w.pending), zap.Uint64("total", w.stats.Written))
	return nil
}

func (w *Writer) addToExtent(g geom.Geometry) {
	if g == nil {
		return
	}
	if w.extent == nil {
		ext, err := geom.NewExtentFromGeometry(g)
		if err != nil {
			w.log.Debug("failed to create new extent", zap.Error(err))
			return
		}
		w.extent = ext
		return
	}
	if err := w.extent.AddGeometry(g); err != nil {
		w.log.Debug("failed to extend extent", zap.Error(err))
	}
}
