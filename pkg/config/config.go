// Package config loads circuitry settings from a TOML file.
//
// The file is optional. Without one every setting keeps its default, the
// store is the local JSON snapshot and the registry is [registry.Default].
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[graph]
//	default_viz = "tree"
//	root_class_types = ["Receptacle", "Outlet"]
//
//	[classes."Fog Machine"]
//	color = "#64748b"
//	acronym = "FOG"
//	shape = "triangle"
//
//	[connections.illuminates]
//	dasharray = "2,4"
//
// Class, connection and zone tables are merged onto the default registry,
// so an entry only needs the fields it changes.
//
// A few settings can also come from the environment, which wins over the
// file:
//
//	CIRCUITRY_STORE_PATH   store.path
//	CIRCUITRY_MONGO_URI    store.mongo_uri
//	CIRCUITRY_REDIS_ADDR   store.redis_addr
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/graph"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/registry"
	redisstore "github.com/spookydecs/circuitry/pkg/store/redis"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

// Backends lists the accepted values of store.backend.
var Backends = []string{BackendFile, BackendMemory, BackendMongo, BackendRedis}

// Environment variables read by Load.
const (
	EnvStorePath = "CIRCUITRY_STORE_PATH"
	EnvMongoURI  = "CIRCUITRY_MONGO_URI"
	EnvRedisAddr = "CIRCUITRY_REDIS_ADDR"
)

const (
	DefaultMongoURI      = "mongodb://localhost:27017"
	DefaultMongoDatabase = "circuitry"
	DefaultRedisAddr     = "localhost:6379"
	DefaultRetryAttempts = 3
)

// Config is the decoded configuration file.
type Config struct {
	Store       StoreConfig                   `toml:"store"`
	Graph       GraphConfig                   `toml:"graph"`
	Classes     map[string]registry.ClassStyle `toml:"classes,omitempty"`
	Connections map[string]registry.EdgeStyle  `toml:"connections,omitempty"`
	Zones       map[string]registry.ZoneStyle  `toml:"zones,omitempty"`

	path string
}

// StoreConfig selects and configures the store backend.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path,omitempty"` // file backend; empty means the default data dir
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPrefix   string `toml:"redis_prefix"`
	RetryAttempts int    `toml:"retry_attempts"` // 0 or 1 disables retries
}

// GraphConfig holds graph builder defaults.
type GraphConfig struct {
	DefaultViz     string   `toml:"default_viz"`
	RootClassTypes []string `toml:"root_class_types"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:       BackendFile,
			MongoURI:      DefaultMongoURI,
			MongoDatabase: DefaultMongoDatabase,
			RedisAddr:     DefaultRedisAddr,
			RedisPrefix:   redisstore.DefaultPrefix,
			RetryAttempts: DefaultRetryAttempts,
		},
		Graph: GraphConfig{
			DefaultViz:     graph.VizTypeNetwork,
			RootClassTypes: slices.Clone(graph.DefaultRootClassTypes),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/circuitry/config.toml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "circuitry", "config.toml"), nil
}

// Load reads the file at path on top of [Default] and applies environment
// overrides. An empty path means [DefaultPath], which may be missing; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	optional := path == ""
	if optional {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	cfg.path = path

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist) && optional:
		cfg.path = ""
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "read %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Store.RedisAddr = v
	}
}

// Path returns the file the config was read from, or "" when defaults
// were used.
func (c *Config) Path() string { return c.path }

// Validate checks the store and graph sections. Registry tables are
// checked by [Config.Registry].
func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Store.Backend) {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig,
			"store.backend %q (must be one of: %s)", c.Store.Backend, strings.Join(Backends, ", "))
	}
	if c.Store.RetryAttempts < 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "store.retry_attempts must not be negative")
	}
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "mongo backend needs store.mongo_uri and store.mongo_database")
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "redis backend needs store.redis_addr")
		}
	}
	if !slices.Contains(graph.VizTypes, c.Graph.DefaultViz) {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig,
			"graph.default_viz %q (must be one of: %s)", c.Graph.DefaultViz, strings.Join(graph.VizTypes, ", "))
	}
	return nil
}

// Registry merges the class, connection and zone tables onto
// [registry.Default] and validates the result.
func (c *Config) Registry() (*registry.Registry, error) {
	edges := make(map[inventory.ConnectionType]registry.EdgeStyle, len(c.Connections))
	for name, style := range c.Connections {
		edges[inventory.ConnectionType(name)] = style
	}
	reg := registry.Default().Merge(c.Classes, edges, c.Zones)
	if errs := reg.Validate(); len(errs) > 0 {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, errors.Join(errs...), "registry")
	}
	return reg, nil
}

// Builder returns a graph builder over [Config.Registry].
func (c *Config) Builder() (*graph.Builder, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return graph.NewBuilder(reg), nil
}

// GraphOptions returns builder options for vizType and zone, filling in
// the configured defaults. An empty vizType means graph.default_viz.
func (c *Config) GraphOptions(vizType, zone string) graph.Options {
	if vizType == "" {
		vizType = c.Graph.DefaultViz
	}
	return graph.Options{
		VizType:        vizType,
		Zone:           zone,
		RootClassTypes: slices.Clone(c.Graph.RootClassTypes),
	}
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
