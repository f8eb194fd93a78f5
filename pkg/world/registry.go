package world

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSavePeriod is the interval between automatic full-registry saves.
const DefaultSavePeriod = 90 * time.Second

// Registry is the name -> world map, the sole source of truth for which
// worlds are loaded. Individual maps guard their own block volume; the
// registry only guards the name -> *DmfMap index.
type Registry struct {
	mu     sync.RWMutex
	worlds map[string]*DmfMap
	paths  map[string]string
	dir    string
	log    *zap.Logger
}

// NewRegistry creates a registry rooted at dir, the directory LoadAll
// reads world files from. SaveAll writes each world back to the path it
// was registered with.
func NewRegistry(dir string, log *zap.Logger) *Registry {
	return &Registry{
		worlds: make(map[string]*DmfMap),
		paths:  make(map[string]string),
		dir:    dir,
		log:    log,
	}
}

// LoadAll loads every regular file in dir as a world named by its base
// filename without extension. Per-file failures are logged and do not
// prevent other files from loading.
func (r *Registry) LoadAll() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, err := r.Load(name, path); err != nil {
			r.log.Error("failed to load world", zap.String("path", path), zap.Error(err))
			continue
		}
	}
	return nil
}

// Load reads one DMF file from path and registers it under name.
func (r *Registry) Load(name, path string) (*DmfMap, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	r.Put(name, path, m)
	return m, nil
}

// Put registers an already-constructed map under name, remembering path
// for future saves.
func (r *Registry) Put(name, path string, m *DmfMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.worlds[name] = m
	r.paths[name] = path
}

// Get returns the world registered under name, if any.
func (r *Registry) Get(name string) (*DmfMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.worlds[name]
	return m, ok
}

// Unload removes name from the registry without saving it.
func (r *Registry) Unload(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.worlds, name)
	delete(r.paths, name)
}

// Names returns a snapshot of the currently loaded world names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.worlds))
	for name := range r.worlds {
		names = append(names, name)
	}
	return names
}

// SaveAll writes every loaded world to its backing file. A failure on
// one world is logged and does not prevent the others from saving.
func (r *Registry) SaveAll() {
	r.mu.RLock()
	type job struct {
		name, path string
		m          *DmfMap
	}
	jobs := make([]job, 0, len(r.worlds))
	for name, m := range r.worlds {
		jobs = append(jobs, job{name: name, path: r.paths[name], m: m})
	}
	r.mu.RUnlock()

	for _, j := range jobs {
		if err := j.m.Save(j.path); err != nil {
			r.log.Error("failed to save world", zap.String("world", j.name), zap.Error(err))
		}
	}
}

// SaveAllLoop runs SaveAll every period until ctx is cancelled.
func (r *Registry) SaveAllLoop(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.SaveAll()
		}
	}
}
