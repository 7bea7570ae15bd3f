// Package registry implements the Registry Store (C2): it persists the
// Source Scanner's output (handler records and type records) to disk,
// one manifest file per server, and serves lookups to the rest of the
// toolkit through an mtime-revalidated in-process cache so repeated
// calls within a single run don't re-read and re-decode the manifest
// file on every lookup.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/muesli/cache2go"

	"github.com/mcptoolkit/forge/pkg/handler"
)

const defaultCacheName = "forge-registry-cache"

// Manifest is the on-disk shape of a single server's registry file.
type Manifest struct {
	ServerName string                `json:"server_name"`
	Handlers   []handler.Record      `json:"handlers"`
	Types      []handler.TypeRecord  `json:"types"`
}

type cachedManifest struct {
	mtime    time.Time
	manifest *Manifest
	byName   map[string]*handler.Record
}

// Store loads and caches registry manifests from a directory, one JSON
// file per server named "<server_name>.registry.json".
type Store struct {
	dir    string
	mu     sync.Mutex
	cache  *cache2go.CacheTable
	logger *slog.Logger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithCacheName overrides the cache2go table name, useful for isolating
// test instances from each other and from production use.
func WithCacheName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.cache = cache2go.Cache(name)
		}
	}
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:   dir,
		cache: cache2go.Cache(defaultCacheName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) manifestPath(serverName string) string {
	return filepath.Join(s.dir, serverName+".registry.json")
}

// Save writes a server's manifest to disk and primes the cache with it,
// so a subsequent LookupService in the same process sees the write
// immediately without needing to re-stat and re-read the file.
func (s *Store) Save(serverName string, handlers []handler.Record, types []handler.TypeRecord) error {
	m := &Manifest{ServerName: serverName, Handlers: handlers, Types: types}

	path := s.manifestPath(serverName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%d.tmp", serverName, os.Getpid()))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return &LoadError{Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &LoadError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &LoadError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &LoadError{Path: path, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	s.prime(serverName, m, info.ModTime())
	return nil
}

func (s *Store) prime(serverName string, m *Manifest, mtime time.Time) {
	byName := make(map[string]*handler.Record, len(m.Handlers))
	for i := range m.Handlers {
		byName[m.Handlers[i].ServiceName] = &m.Handlers[i]
	}
	entry := &cachedManifest{mtime: mtime, manifest: m, byName: byName}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(serverName, 0, entry)
}

// load reads and decodes a manifest from disk without touching the cache.
func (s *Store) load(serverName string) (*Manifest, time.Time, error) {
	path := s.manifestPath(serverName)
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, &LoadError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, &LoadError{Path: path, Err: err}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, time.Time{}, &LoadError{Path: path, Err: err}
	}
	return &m, info.ModTime(), nil
}

// get returns the cached entry for serverName, reloading from disk if
// the cache is empty or the file's mtime has advanced since the entry
// was cached. This is the file-mtime revalidation the registry's
// caching contract requires: callers may cache, but must revalidate.
func (s *Store) get(serverName string) (*cachedManifest, error) {
	s.mu.Lock()
	item, err := s.cache.Value(serverName)
	var cached *cachedManifest
	if err == nil {
		cached = item.Data().(*cachedManifest)
	}
	s.mu.Unlock()

	info, statErr := os.Stat(s.manifestPath(serverName))
	if statErr != nil {
		return nil, &LoadError{Path: s.manifestPath(serverName), Err: statErr}
	}

	if cached != nil && !info.ModTime().After(cached.mtime) {
		s.logDebug(fmt.Sprintf("registry cache hit for server %s", serverName))
		return cached, nil
	}

	s.logDebug(fmt.Sprintf("registry cache miss/stale for server %s, reloading", serverName))
	m, mtime, err := s.load(serverName)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*handler.Record, len(m.Handlers))
	for i := range m.Handlers {
		byName[m.Handlers[i].ServiceName] = &m.Handlers[i]
	}
	entry := &cachedManifest{mtime: mtime, manifest: m, byName: byName}

	s.mu.Lock()
	s.cache.Add(serverName, 0, entry)
	s.mu.Unlock()

	return entry, nil
}

// LookupService returns the handler record for serviceName on serverName,
// revalidating the in-process cache against the manifest file's mtime
// before trusting it.
func (s *Store) LookupService(serverName, serviceName string) (*handler.Record, error) {
	entry, err := s.get(serverName)
	if err != nil {
		return nil, err
	}
	rec, ok := entry.byName[serviceName]
	if !ok {
		return nil, &ServiceNotFoundError{ServerName: serverName, ServiceName: serviceName}
	}
	return rec, nil
}

// AllServices returns every handler record registered for serverName.
func (s *Store) AllServices(serverName string) ([]handler.Record, error) {
	entry, err := s.get(serverName)
	if err != nil {
		return nil, err
	}
	return entry.manifest.Handlers, nil
}

// AllTypes returns every type record registered for serverName.
func (s *Store) AllTypes(serverName string) ([]handler.TypeRecord, error) {
	entry, err := s.get(serverName)
	if err != nil {
		return nil, err
	}
	return entry.manifest.Types, nil
}

func (s *Store) logDebug(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg)
}
