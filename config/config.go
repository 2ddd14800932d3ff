// Package config loads an optional JSON run configuration. Flags given on the command line
// override what is loaded here.
package config

import (
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/perimeterx/marshmallow"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/pdok/osmgpkg/layer"
	"github.com/pdok/osmgpkg/mapslicehelp"
)

// Config describes one conversion run.
type Config struct {
	OutputDir string   `json:"outputDir" default:"." validate:"required"`
	Layers    []string `json:"layers" validate:"omitempty,dive,required"`
	Overwrite bool     `json:"overwrite"`

	UseTransactions bool   `json:"useTransactions" default:"true"`
	BatchSize       int    `json:"batchSize" default:"10000" validate:"min=1"`
	CacheSize       int    `json:"cacheSize" default:"1024" validate:"min=0"`
	Synchronous     bool   `json:"synchronous"`
	JournalMode     string `json:"journalMode" default:"MEMORY" validate:"oneof=DELETE TRUNCATE PERSIST MEMORY WAL OFF"`
	SpatialIndex    bool   `json:"spatialIndex"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

func (c *Config) UnmarshalJSON(data []byte) error {
	err := defaults.Set(c)
	if err != nil {
		return err
	}
	type plain Config // without UnmarshalJSON
	specials, err := marshmallow.Unmarshal(data, (*plain)(c), marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	if len(specials) > 0 {
		return errors.Errorf("unknown key(s) %s", strings.Join(mapslicehelp.SortedKeys(specials), ", "))
	}
	return nil
}

// Validate checks the values against their constraints.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// Load reads and validates the JSON configuration at path.
func Load(fs afero.Fs, path string) (Config, error) {
	var c Config
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return c, errors.Wrap(err, "could not read config")
	}
	if err = c.UnmarshalJSON(data); err != nil {
		return c, errors.Wrapf(err, "could not parse config %s", path)
	}
	if err = c.Validate(); err != nil {
		return c, errors.Wrapf(err, "invalid config %s", path)
	}
	return c, nil
}

// LayerOptions returns the layer options this configuration asks for.
func (c Config) LayerOptions() layer.Options {
	opts := layer.DefaultOptions()
	opts.UseTransactions = c.UseTransactions
	opts.BatchSize = c.BatchSize
	opts.CacheSize = c.CacheSize
	opts.Synchronous = c.Synchronous
	opts.JournalMode = c.JournalMode
	opts.SpatialIndex = c.SpatialIndex
	opts.Overwrite = c.Overwrite
	return opts
}
