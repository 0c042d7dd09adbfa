package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Snapshot is the on-disk layout of a File store.
type Snapshot struct {
	Items       []inventory.Item                  `json:"items"`
	Deployments map[string][]inventory.Connection `json:"deployments"`
}

// File is a Store backed by one JSON snapshot file. Every call reads the
// file afresh; writes replace it atomically through a temp file and rename.
// It is safe for concurrent use within one process.
type File struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFile returns a File store at path, creating the parent directory.
// The file itself is created on the first write.
// If path is empty, defaults to ~/.local/share/circuitry/inventory.json
func NewFile(path string) (*File, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".local", "share", "circuitry", "inventory.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{path: path, now: time.Now}, nil
}

// Path returns the snapshot file path.
func (f *File) Path() string { return f.path }

func (f *File) ListItems(ctx context.Context, zone string) ([]inventory.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	return FilterZone(snap.Items, zone), nil
}

func (f *File) ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	return snap.Deployments[deployment], nil
}

func (f *File) CreateConnection(ctx context.Context, deployment string, c inventory.Connection) (inventory.Connection, error) {
	c, err := Prepare(c, f.now())
	if err != nil {
		return inventory.Connection{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.load()
	if err != nil {
		return inventory.Connection{}, err
	}
	if err := checkConflict(snap.Deployments[deployment], c); err != nil {
		return inventory.Connection{}, err
	}
	snap.Deployments[deployment] = append(snap.Deployments[deployment], c)
	if err := f.save(snap); err != nil {
		return inventory.Connection{}, err
	}
	return c, nil
}

func (f *File) DeleteConnection(ctx context.Context, deployment, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.load()
	if err != nil {
		return err
	}
	conns, ok := removeConnection(snap.Deployments[deployment], id)
	if !ok {
		return ErrNotFound
	}
	snap.Deployments[deployment] = conns
	return f.save(snap)
}

// PutItems adds items to the snapshot, replacing any with the same ID.
func (f *File) PutItems(ctx context.Context, items []inventory.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.load()
	if err != nil {
		return err
	}
	snap.Items = upsertItems(snap.Items, items)
	return f.save(snap)
}

func (f *File) Close() error { return nil }

// load reads the snapshot. A missing file is an empty snapshot.
func (f *File) load() (*Snapshot, error) {
	snap := &Snapshot{}
	data, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, Unavailable("read "+f.path, err)
	default:
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.path, err)
		}
	}
	if snap.Deployments == nil {
		snap.Deployments = make(map[string][]inventory.Connection)
	}
	return snap, nil
}

func (f *File) save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".inventory-*.json")
	if err != nil {
		return Unavailable("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Unavailable("write snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		return Unavailable("write snapshot", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return Unavailable("replace snapshot", err)
	}
	return nil
}

var (
	_ Store      = (*File)(nil)
	_ ItemWriter = (*File)(nil)
)
