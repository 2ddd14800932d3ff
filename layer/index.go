package layer

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/gpkg"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const createExtensionsSQL = `CREATE TABLE IF NOT EXISTS gpkg_extensions (
	table_name TEXT,
	column_name TEXT,
	extension_name TEXT NOT NULL,
	definition TEXT NOT NULL,
	scope TEXT NOT NULL,
	CONSTRAINT ge_tce UNIQUE (table_name, column_name, extension_name)
);`

type envelope struct {
	fid int64
	ext *geom.Extent
}

// buildSpatialIndex fills a GeoPackage RTree index for the finished layer in one pass.
// The index has no update triggers, the layer is not written to afterwards.
func (w *Writer) buildSpatialIndex() error {
	envelopes, err := w.readEnvelopes()
	if err != nil {
		return newError(KindEngine, "build spatial index", w.name, err)
	}

	rtree := quote(fmt.Sprintf("rtree_%s_%s", w.name, geomColumn))
	tx, err := w.handle.Begin()
	if err != nil {
		return newError(KindEngine, "build spatial index", w.name, err)
	}
	statements := []string{
		createExtensionsSQL,
		fmt.Sprintf(`CREATE VIRTUAL TABLE %s USING rtree(id, minx, maxx, miny, maxy);`, rtree),
	}
	for _, s := range statements {
		if _, err = tx.Exec(s); err != nil {
			_ = tx.Rollback()
			return newError(KindEngine, "build spatial index", w.name, err)
		}
	}
	_, err = w.sq.Insert("gpkg_extensions").
		Columns("table_name", "column_name", "extension_name", "definition", "scope").
		Values(w.name, geomColumn, "gpkg_rtree_index", "http://www.geopackage.org/spec120/#extension_rtree", "write-only").
		RunWith(tx).
		Exec()
	if err != nil {
		_ = tx.Rollback()
		return newError(KindEngine, "build spatial index", w.name, err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s (id, minx, maxx, miny, maxy) VALUES (?, ?, ?, ?, ?)`, rtree))
	if err != nil {
		_ = tx.Rollback()
		return newError(KindEngine, "build spatial index", w.name, err)
	}
	for _, e := range envelopes {
		if _, err = stmt.Exec(e.fid, e.ext.MinX(), e.ext.MaxX(), e.ext.MinY(), e.ext.MaxY()); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return newError(KindEngine, "build spatial index", w.name, errors.Wrapf(err, "fid %d", e.fid))
		}
	}
	_ = stmt.Close()
	if err = tx.Commit(); err != nil {
		return newError(KindEngine, "build spatial index", w.name, err)
	}
	w.log.Info("built spatial index", zap.Int("entries", len(envelopes)))
	return nil
}

// readEnvelopes collects all envelopes before inserting any, the single connection can't
// interleave reading the layer with writing the index.
func (w *Writer) readEnvelopes() ([]envelope, error) {
	rows, err := w.sq.Select(fidColumn, geomColumn).
		From(quote(w.name)).
		Where(geomColumn + " IS NOT NULL").
		RunWith(w.handle).
		Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var envelopes []envelope
	for rows.Next() {
		var fid int64
		var blob []byte
		if err = rows.Scan(&fid, &blob); err != nil {
			return nil, err
		}
		sb, err := gpkg.DecodeGeometry(blob)
		if err != nil {
			return nil, errors.Wrapf(err, "error decoding the geometry of fid %d", fid)
		}
		ext, err := geom.NewExtentFromGeometry(sb.Geometry)
		if err != nil {
			// empty geometries have no envelope and are not indexed
			continue
		}
		envelopes = append(envelopes, envelope{fid: fid, ext: ext})
	}
	return envelopes, rows.Err()
}
