// Package layer writes one GeoPackage feature layer: it creates the container and the layer,
// declares the field schema, inserts features in batched transactions and commits on Close.
//
// The ordering of the lifecycle is carried by the types: New returns a Pending layer,
// only Pending.DeclareFields hands out a Writer, and only a Writer can write features.
package layer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/go-spatial/geom/encoding/gpkg"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pdok/osmgpkg/mapslicehelp"
)

const (
	// Extension of the files New creates.
	Extension = ".gpkg"
	// SRSID of WGS84, the only reference system layers are written in.
	SRSID = 4326
)

var wgs84 = gpkg.SpatialReferenceSystem{
	Name:                   "WGS 84 geodetic",
	ID:                     SRSID,
	Organization:           "EPSG",
	OrganizationCoordsysID: SRSID,
	Definition: `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],` +
		`AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],` +
		`UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`,
	Description: "longitude/latitude coordinates in decimal degrees on the WGS 84 spheroid",
}

// core is the state shared by a Pending layer and the Writer it turns into.
type core struct {
	name         string
	path         string
	geometryType gpkg.GeometryType
	opts         Options
	log          *zap.Logger
	handle       *gpkg.Handle
	sq           squirrel.StatementBuilderType
}

// Pending is a created layer whose fields are not declared yet.
type Pending struct {
	*core
	consumed bool
	closed   bool
}

// New creates <root>/<name>.gpkg with an empty layer called name.
// On error nothing is left open.
func New(root *OutputRoot, name string, geometryType gpkg.GeometryType, opts Options) (*Pending, error) {
	if err := opts.validate(); err != nil {
		return nil, newError(KindConfig, "validate options", name, err)
	}
	if strings.TrimSpace(name) == "" {
		return nil, newError(KindConfig, "validate options", name, errors.New("empty layer name"))
	}
	dir, err := root.Prepare()
	if err != nil {
		return nil, err
	}

	c := &core{
		name:         name,
		path:         filepath.Join(dir, name+Extension),
		geometryType: geometryType,
		opts:         opts,
		log:          opts.logger().With(zap.String("layer", name)),
		sq:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
	if err = c.claimPath(root); err != nil {
		return nil, err
	}

	c.handle, err = gpkg.Open(c.path)
	if err != nil {
		return nil, newError(KindEngine, "create data source", name, errors.Wrapf(err, "could not open %s", c.path))
	}
	// pragmas are per connection and a transaction must own the only one there is
	c.handle.SetMaxOpenConns(1)

	if err = c.configure(); err != nil {
		c.handle.Close()
		return nil, err
	}
	if err = c.createLayer(); err != nil {
		c.handle.Close()
		return nil, err
	}

	c.log.Info("created layer", zap.String("path", c.path), zap.String("geometry", geometryTypeName(geometryType)))
	return &Pending{core: c}, nil
}

// Path of the GeoPackage file.
func (c *core) Path() string {
	return c.path
}

// Name of the layer.
func (c *core) Name() string {
	return c.name
}

func (c *core) claimPath(root *OutputRoot) error {
	exists, err := root.exists(c.path)
	if err != nil {
		return newError(KindEnvironment, "stat target", c.name, err)
	}
	if !exists {
		return nil
	}
	if !c.opts.Overwrite {
		return newError(KindEngine, "create data source", c.name, fmt.Errorf("%s already exists", c.path))
	}
	if err = root.remove(c.path); err != nil {
		return newError(KindEnvironment, "remove target", c.name, errors.Wrapf(err, "could not remove %s", c.path))
	}
	return nil
}

// configure applies the bulk loading pragmas and makes sure WGS84 is registered.
func (c *core) configure() error {
	synchronous := "OFF"
	if c.opts.Synchronous {
		synchronous = "NORMAL"
	}
	pragmas := []string{
		`PRAGMA synchronous = ` + synchronous,
		fmt.Sprintf(`PRAGMA cache_size = -%d`, c.opts.CacheSize*1024),
		`PRAGMA journal_mode = ` + c.opts.JournalMode,
	}
	for _, pragma := range pragmas {
		if _, err := c.handle.Exec(pragma); err != nil {
			return newError(KindEngine, "configure data source", c.name, errors.Wrapf(err, "%s failed", pragma))
		}
	}

	var n int
	err := c.sq.Select("COUNT(*)").
		From("gpkg_spatial_ref_sys").
		Where(squirrel.Eq{"srs_id": SRSID}).
		RunWith(c.handle).
		QueryRow().
		Scan(&n)
	if err != nil {
		return newError(KindEngine, "configure data source", c.name, errors.Wrap(err, "could not read gpkg_spatial_ref_sys"))
	}
	if n == 0 {
		if err = c.handle.UpdateSRS(wgs84); err != nil {
			return newError(KindEngine, "configure data source", c.name, errors.Wrap(err, "could not register WGS84"))
		}
	}
	return nil
}

// createLayer creates the feature table with only its key and geometry column,
// fields are added by DeclareFields. No spatial index is maintained while inserting.
func (c *core) createLayer() error {
	query := fmt.Sprintf(`CREATE TABLE %s (%s INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL, %s %s);`,
		quote(c.name), fidColumn, geomColumn, geometryTypeName(c.geometryType))
	if _, err := c.handle.Exec(query); err != nil {
		return newError(KindEngine, "create layer", c.name, err)
	}

	err := c.handle.AddGeometryTable(gpkg.TableDescription{
		Name:          c.name,
		ShortName:     c.name,
		Description:   c.name,
		GeometryField: geomColumn,
		GeometryType:  c.geometryType,
		SRS:           SRSID,
		//
		Z: gpkg.Prohibited,
		M: gpkg.Prohibited,
	})
	if err != nil {
		return newError(KindEngine, "create layer", c.name, err)
	}
	return nil
}

// DeclareFields adds the fields to the layer, in order, and returns the Writer for it.
// It can be called once. If it fails the Pending layer must still be closed.
func (p *Pending) DeclareFields(fields []Field) (*Writer, error) {
	if p.consumed {
		return nil, ErrConsumed
	}
	if p.closed {
		return nil, ErrClosed
	}
	p.consumed = true

	s, err := newSchema(fields)
	if err != nil {
		return nil, newError(KindSchema, "declare fields", p.name, err)
	}
	for pair := s.Oldest(); pair != nil; pair = pair.Next() {
		f := pair.Value
		sqlType, err := f.Type.sqlType(f.Width)
		if err != nil {
			return nil, newError(KindSchema, "declare fields", p.name, errors.Wrapf(err, "field '%s'", f.Name))
		}
		query := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s;`, quote(p.name), quote(f.Name), sqlType)
		if _, err = p.handle.Exec(query); err != nil {
			return nil, newError(KindEngine, "declare fields", p.name,
				errors.Wrapf(err, "creating field '%s' failed", f.Name))
		}
	}

	w, err := newWriter(p.core, s)
	if err != nil {
		return nil, err
	}
	p.closed = true
	p.log.Debug("declared fields", zap.Strings("fields", mapslicehelp.OrderedMapKeys(s)))
	return w, nil
}

// Close releases a layer that never got a Writer. It is a no-op once DeclareFields succeeded.
func (p *Pending) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.handle.Close(); err != nil {
		return newError(KindEngine, "close data source", p.name, err)
	}
	return nil
}

func geometryTypeName(t gpkg.GeometryType) string {
	switch t {
	case gpkg.Point:
		return "POINT"
	case gpkg.Linestring:
		return "LINESTRING"
	case gpkg.Polygon:
		return "POLYGON"
	case gpkg.MultiPoint:
		return "MULTIPOINT"
	case gpkg.MultiLinestring:
		return "MULTILINESTRING"
	case gpkg.MultiPolygon:
		return "MULTIPOLYGON"
	case gpkg.GeometryCollection:
		return "GEOMETRYCOLLECTION"
	default:
		return "GEOMETRY"
	}
}
