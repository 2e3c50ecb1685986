package storage

import (
	"io"
	"sort"
	"summarycube/cubeerr"
	"summarycube/frame"
	"sync"
)

// Cube is a read handle on one multi-dimensional array.
type Cube interface {
	Name() string
	Schema() *Schema
	Query(q Query) (ChunkIterator, error)
}

type Backend interface {
	Cube(name string) (Cube, error)
	CubeNames() ([]string, error)
	Close() error
}

// CubeWriter populates a backend. The query layer never writes; loaders
// and tests do.
type CubeWriter interface {
	CreateCube(schema *Schema) error
	PutRows(cube string, rows []Row) error
}

type InMemoryBackend struct {
	cubes     map[string]*inMemoryCube
	chunkRows int
	mu        sync.RWMutex
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		cubes:     make(map[string]*inMemoryCube),
		chunkRows: DefaultChunkRows,
	}
}

// SetChunkRows bounds the number of rows per chunk returned by queries.
func (backend *InMemoryBackend) SetChunkRows(n int) *InMemoryBackend {
	if n > 0 {
		backend.chunkRows = n
	}
	return backend
}

func (backend *InMemoryBackend) CreateCube(schema *Schema) error {
	if err := schema.validate(); err != nil {
		return err
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if _, ok := backend.cubes[schema.Name]; ok {
		return cubeerr.Storef("cube %s already exists", schema.Name)
	}
	backend.cubes[schema.Name] = &inMemoryCube{backend: backend, schema: schema}
	return nil
}

func (backend *InMemoryBackend) PutRows(name string, rows []Row) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	cube, ok := backend.cubes[name]
	if !ok {
		return cubeerr.Storef("cube %s not found", name)
	}
	for _, row := range rows {
		if err := cube.schema.checkRow(row); err != nil {
			return err
		}
	}
	cube.rows = append(cube.rows, rows...)
	return nil
}

func (backend *InMemoryBackend) Cube(name string) (Cube, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()
	cube, ok := backend.cubes[name]
	if !ok {
		return nil, cubeerr.Storef("cube %s not found", name)
	}
	return cube, nil
}

func (backend *InMemoryBackend) CubeNames() ([]string, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()
	names := make([]string, 0, len(backend.cubes))
	for name := range backend.cubes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (backend *InMemoryBackend) Close() error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.cubes = nil
	return nil
}

type inMemoryCube struct {
	backend *InMemoryBackend
	schema  *Schema
	rows    []Row
}

func (cube *inMemoryCube) Name() string {
	return cube.schema.Name
}

func (cube *inMemoryCube) Schema() *Schema {
	return cube.schema
}

func (cube *inMemoryCube) Query(q Query) (ChunkIterator, error) {
	cq, err := compileQuery(cube.schema, q)
	if err != nil {
		return nil, err
	}
	cube.backend.mu.RLock()
	rows := cube.rows
	chunkRows := cube.backend.chunkRows
	cube.backend.mu.RUnlock()
	return &inMemoryIterator{query: cq, rows: rows, chunkRows: chunkRows}, nil
}

type inMemoryIterator struct {
	query     *compiledQuery
	rows      []Row
	chunkRows int
	pos       int
}

func (iter *inMemoryIterator) Next() (*frame.Frame, error) {
	chunk := iter.query.newChunk()
	for iter.pos < len(iter.rows) && chunk.Len() < iter.chunkRows {
		row := iter.rows[iter.pos]
		iter.pos++
		if iter.query.match(row) {
			chunk.AppendRow(iter.query.project(row)...)
		}
	}
	if chunk.Len() == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

func (iter *inMemoryIterator) Rewind() {
	iter.pos = 0
}
