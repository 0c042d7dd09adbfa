package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/graph"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/registry"
	"github.com/spookydecs/circuitry/pkg/store"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := load("", noEnv)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendFile)
	}
	if cfg.Graph.DefaultViz != graph.VizTypeNetwork {
		t.Errorf("Graph.DefaultViz = %q, want %q", cfg.Graph.DefaultViz, graph.VizTypeNetwork)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.toml"), noEnv)
	if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidConfig) {
		t.Fatalf("load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "memory"
retry_attempts = 5

[graph]
default_viz = "tree"
root_class_types = ["Receptacle", "Outlet"]

[classes."Fog Machine"]
color = "#64748b"
acronym = "FOG"
size = 20
shape = "triangle"

[classes.Cord]
color = "#000000"

[connections.illuminates]
dasharray = "2,4"

[zones.Garage]
fill = "#eeeeee"
border = "#cccccc"
`)

	cfg, err := load(path, noEnv)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}

	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Store.RetryAttempts != 5 {
		t.Errorf("Store.RetryAttempts = %d, want 5", cfg.Store.RetryAttempts)
	}
	// Untouched keys keep their defaults.
	if cfg.Store.MongoDatabase != DefaultMongoDatabase {
		t.Errorf("Store.MongoDatabase = %q, want %q", cfg.Store.MongoDatabase, DefaultMongoDatabase)
	}

	opts := cfg.GraphOptions("", "A")
	if opts.VizType != graph.VizTypeTree || opts.Zone != "A" {
		t.Errorf("GraphOptions() = %+v", opts)
	}
	if got := strings.Join(opts.RootClassTypes, ","); got != "Receptacle,Outlet" {
		t.Errorf("RootClassTypes = %q", got)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error: %v", err)
	}
	if fog := reg.Class("Fog Machine"); fog.Acronym != "FOG" || fog.Shape != "triangle" {
		t.Errorf("Class(Fog Machine) = %+v", fog)
	}
	cord := reg.Class("Cord")
	if cord.Color != "#000000" {
		t.Errorf("Cord color = %q, want override", cord.Color)
	}
	if cord.Acronym != "CRD" {
		t.Errorf("Cord acronym = %q, want default CRD kept", cord.Acronym)
	}
	lit := reg.Edge(inventory.Illuminates)
	if lit.Dasharray != "2,4" || lit.Color != "#facc15" {
		t.Errorf("Edge(illuminates) = %+v", lit)
	}
	if z := reg.Zone("Garage"); z.Fill != "#eeeeee" {
		t.Errorf("Zone(Garage) = %+v", z)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[store`},
		{"unknown key", "[store]\nbackend = \"file\"\ncolour = \"red\"\n"},
		{"bad backend", "[store]\nbackend = \"sqlite\"\n"},
		{"negative retries", "[store]\nretry_attempts = -1\n"},
		{"bad viz", "[graph]\ndefault_viz = \"tower\"\n"},
		{"redis without addr", "[store]\nbackend = \"redis\"\nredis_addr = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeConfig(t, tt.body), noEnv)
			if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidConfig) {
				t.Errorf("load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[store]\nmongo_uri = \"mongodb://file\"\n")
	env := map[string]string{
		EnvMongoURI:  "mongodb://env",
		EnvRedisAddr: "redis:6380",
		EnvStorePath: "/tmp/inventory.json",
	}

	cfg, err := load(path, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Store.MongoURI != "mongodb://env" {
		t.Errorf("MongoURI = %q, want env value", cfg.Store.MongoURI)
	}
	if cfg.Store.RedisAddr != "redis:6380" {
		t.Errorf("RedisAddr = %q, want env value", cfg.Store.RedisAddr)
	}
	if cfg.Store.Path != "/tmp/inventory.json" {
		t.Errorf("Path = %q, want env value", cfg.Store.Path)
	}
}

func TestRegistryInvalid(t *testing.T) {
	cfg := Default()
	cfg.Classes = map[string]registry.ClassStyle{"Cord": {Color: "blue"}}

	if _, err := cfg.Registry(); !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidConfig) {
		t.Errorf("Registry() error = %v, want INVALID_CONFIG", err)
	}
	if _, err := cfg.Builder(); err == nil {
		t.Error("Builder() should fail on an invalid registry")
	}
}

func TestGraphOptionsExplicitViz(t *testing.T) {
	cfg := Default()
	opts := cfg.GraphOptions(graph.VizTypeTree, "")
	if opts.VizType != graph.VizTypeTree {
		t.Errorf("VizType = %q, want tree", opts.VizType)
	}
	if opts.RootClassTypes[0] != "Receptacle" {
		t.Errorf("RootClassTypes = %v", opts.RootClassTypes)
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[store]", `backend = "file"`, "[graph]", `default_viz = "network"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Encode() output missing %q:\n%s", want, out)
		}
	}

	path := writeConfig(t, out)
	if _, err := load(path, noEnv); err != nil {
		t.Errorf("encoded default config does not load: %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Backend = BackendMemory
		s, err := cfg.OpenStore(ctx, nil, nil)
		if err != nil {
			t.Fatalf("OpenStore() error: %v", err)
		}
		defer s.Close()

		items, err := s.ListItems(ctx, "")
		if err != nil || len(items) != 0 {
			t.Errorf("ListItems() = %v, %v", items, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Path = filepath.Join(t.TempDir(), "data", "inventory.json")
		s, err := cfg.OpenStore(ctx, nil, nil)
		if err != nil {
			t.Fatalf("OpenStore() error: %v", err)
		}
		defer s.Close()

		if err := s.(store.ItemWriter).PutItems(ctx, []inventory.Item{{ID: "R1", ClassType: "Receptacle", FemaleEnds: 2}}); err != nil {
			t.Fatalf("PutItems() error: %v", err)
		}
		if _, err := os.Stat(cfg.Store.Path); err != nil {
			t.Errorf("snapshot not written: %v", err)
		}
	})
}
