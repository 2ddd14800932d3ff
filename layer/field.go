package layer

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NoWidth declares a field without a width constraint. A zero Width means the same.
const NoWidth = -1

// FieldType is the storage type of a declared field.
type FieldType int

const (
	Integer FieldType = iota
	Integer64
	Real
	String
	Boolean
	Date
	DateTime
	Blob
)

func (t FieldType) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Integer64:
		return "Integer64"
	case Real:
		return "Real"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case Date:
		return "Date"
	case DateTime:
		return "DateTime"
	case Blob:
		return "Blob"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// sqlType returns the GeoPackage column type for t. The width only constrains TEXT and BLOB,
// like the GeoPackage TEXT(maxchar) and BLOB(maxsize) forms.
func (t FieldType) sqlType(width int) (string, error) {
	var base string
	switch t {
	case Integer:
		base = "MEDIUMINT"
	case Integer64:
		base = "INTEGER"
	case Real:
		base = "DOUBLE"
	case String:
		base = "TEXT"
	case Boolean:
		base = "BOOLEAN"
	case Date:
		base = "DATE"
	case DateTime:
		base = "DATETIME"
	case Blob:
		base = "BLOB"
	default:
		return "", fmt.Errorf("unsupported field type %v", t)
	}
	if width > 0 && (t == String || t == Blob) {
		return fmt.Sprintf("%s(%d)", base, width), nil
	}
	return base, nil
}

// Field is one entry of a layer's schema.
type Field struct {
	Name  string
	Type  FieldType
	Width int
}

// F is shorthand for a Field without a width constraint.
func F(name string, t FieldType) Field {
	return Field{Name: name, Type: t, Width: NoWidth}
}

const (
	fidColumn  = "fid"
	geomColumn = "geom"
)

// schema keeps the declared fields in declaration order and answers lookups by name.
type schema = orderedmap.OrderedMap[string, Field]

func newSchema(fields []Field) (*schema, error) {
	s := orderedmap.New[string, Field]()
	// column names are case-insensitive
	lowered := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("field without a name")
		case strings.EqualFold(name, fidColumn), strings.EqualFold(name, geomColumn):
			return nil, fmt.Errorf("field '%s' collides with a reserved column", name)
		}
		if _, present := lowered[strings.ToLower(name)]; present {
			return nil, fmt.Errorf("field '%s' declared twice", name)
		}
		lowered[strings.ToLower(name)] = struct{}{}
		f.Name = name
		s.Set(name, f)
	}
	return s, nil
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
