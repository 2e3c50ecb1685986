package storage

import (
	"github.com/dgraph-io/ristretto"
	"summarycube/cubeerr"
	"summarycube/frame"
)

// CachedBackend memoizes drained query results per cube and query
// fingerprint. Snapshots are immutable, so entries never go stale; a new
// snapshot gets a new CachedBackend. A cache miss drains the underlying
// iterator before returning.
type CachedBackend struct {
	backend Backend
	cache   *ristretto.Cache
}

type CacheConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		NumCounters: 1e5,
		MaxCost:     1 << 22,
		BufferItems: 64,
	}
}

func NewCachedBackend(backend Backend, config CacheConfig) (*CachedBackend, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
	})
	if err != nil {
		return nil, cubeerr.WrapStore(err, "creating query cache")
	}
	return &CachedBackend{backend: backend, cache: cache}, nil
}

func (store *CachedBackend) Cube(name string) (Cube, error) {
	cube, err := store.backend.Cube(name)
	if err != nil {
		return nil, err
	}
	return &cachedCube{Cube: cube, cache: store.cache}, nil
}

func (store *CachedBackend) CubeNames() ([]string, error) {
	return store.backend.CubeNames()
}

func (store *CachedBackend) Close() error {
	store.cache.Close()
	return store.backend.Close()
}

type cachedCube struct {
	Cube
	cache *ristretto.Cache
}

func (cube *cachedCube) Query(q Query) (ChunkIterator, error) {
	key := cube.Name() + "\x00" + q.Fingerprint()
	if cached, found := cube.cache.Get(key); found {
		return newSliceIterator(cached.([]*frame.Frame)), nil
	}

	iter, err := cube.Cube.Query(q)
	if err != nil {
		return nil, err
	}
	chunks, err := Drain(iter)
	if err != nil {
		return nil, err
	}

	cost := int64(1)
	for _, chunk := range chunks {
		cost += int64(chunk.Len())
	}
	cube.cache.Set(key, chunks, cost)
	return newSliceIterator(chunks), nil
}
