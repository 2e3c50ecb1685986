package storage

import (
	"bytes"
	"github.com/dgraph-io/badger/v2"
	"github.com/tinylib/msgp/msgp"
	"io"
	"sort"
	"summarycube/cubeerr"
	"summarycube/frame"
	"sync"
)

// OpenBadger opens a badger database at path, or an in-memory one when
// inMemory is set.
func OpenBadger(path string, inMemory bool) (*badger.DB, error) {
	options := badger.DefaultOptions(path).WithLogger(nil)
	if inMemory {
		options = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, cubeerr.WrapStore(err, "opening badger at %q", path)
	}
	return db, nil
}

func TestBadgerDB() *badger.DB {
	db, err := OpenBadger("", true)
	if err != nil {
		panic(err)
	}
	return db
}

// BadgerBackend stores each cube as a schema record plus one key per row.
// Row keys start with the dimension coordinates in schema order, so a
// constraint on the first dimension becomes a set of prefix scans.
type BadgerBackend struct {
	db        *badger.DB
	chunkRows int
	cubes     map[string]*badgerCube
	mu        sync.Mutex
}

func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{
		db:        db,
		chunkRows: DefaultChunkRows,
		cubes:     make(map[string]*badgerCube),
	}
}

func (backend *BadgerBackend) SetChunkRows(n int) *BadgerBackend {
	if n > 0 {
		backend.chunkRows = n
	}
	return backend
}

func (backend *BadgerBackend) Close() error {
	return cubeerr.WrapStore(backend.db.Close(), "closing badger")
}

func (backend *BadgerBackend) txnGet(key []byte) ([]byte, error) {
	var buf []byte
	err := backend.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		buf, err = item.ValueCopy(nil)
		return err
	})
	return buf, err
}

func (backend *BadgerBackend) CreateCube(schema *Schema) error {
	if err := schema.validate(); err != nil {
		return err
	}
	key := GetSchemaKey(schema.Name)
	err := backend.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return cubeerr.Storef("cube %s already exists", schema.Name)
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, encodeSchema(schema))
	})
	return cubeerr.WrapStore(err, "creating cube %s", schema.Name)
}

func (backend *BadgerBackend) PutRows(name string, rows []Row) error {
	cube, err := backend.cube(name)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := cube.schema.checkRow(row); err != nil {
			return err
		}
	}

	seq, err := backend.db.GetSequence(GetSequenceKey(name), uint64(len(rows)+1))
	if err != nil {
		return cubeerr.WrapStore(err, "leasing row ids for cube %s", name)
	}
	defer seq.Release()

	batch := backend.db.NewWriteBatch()
	for _, row := range rows {
		id, err := seq.Next()
		if err == nil {
			err = batch.Set(GetRowKey(name, row.Dims, id), encodeAttrs(row.Attrs))
		}
		if err != nil {
			batch.Cancel()
			return cubeerr.WrapStore(err, "writing rows of cube %s", name)
		}
	}
	return cubeerr.WrapStore(batch.Flush(), "flushing rows of cube %s", name)
}

func (backend *BadgerBackend) Cube(name string) (Cube, error) {
	return backend.cube(name)
}

func (backend *BadgerBackend) cube(name string) (*badgerCube, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if cube, ok := backend.cubes[name]; ok {
		return cube, nil
	}
	buf, err := backend.txnGet(GetSchemaKey(name))
	if err == badger.ErrKeyNotFound {
		return nil, cubeerr.Storef("cube %s not found", name)
	}
	if err != nil {
		return nil, cubeerr.WrapStore(err, "reading schema of cube %s", name)
	}
	schema, err := decodeSchema(buf)
	if err != nil {
		return nil, cubeerr.WrapStore(err, "decoding schema of cube %s", name)
	}
	cube := &badgerCube{backend: backend, schema: schema}
	backend.cubes[name] = cube
	return cube, nil
}

func (backend *BadgerBackend) CubeNames() ([]string, error) {
	var names []string
	prefix := []byte{SchemaTag}
	err := backend.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer iter.Close()
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			name, _, err := msgp.ReadStringBytes(iter.Item().Key()[1:])
			if err != nil {
				return err
			}
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, cubeerr.WrapStore(err, "listing cubes")
	}
	return names, nil
}

type badgerCube struct {
	backend *BadgerBackend
	schema  *Schema
}

func (cube *badgerCube) Name() string {
	return cube.schema.Name
}

func (cube *badgerCube) Schema() *Schema {
	return cube.schema
}

func (cube *badgerCube) Query(q Query) (ChunkIterator, error) {
	cq, err := compileQuery(cube.schema, q)
	if err != nil {
		return nil, err
	}

	var prefixes [][]byte
	if len(q.DimSlices) > 0 && len(q.DimSlices[0]) > 0 {
		leading := make([]string, 0, len(q.DimSlices[0]))
		seen := make(map[string]bool)
		for _, v := range q.DimSlices[0] {
			if !seen[v] {
				seen[v] = true
				leading = append(leading, v)
			}
		}
		sort.Strings(leading)
		for _, v := range leading {
			prefixes = append(prefixes, GetRowPrefix(cube.schema.Name, v))
		}
	} else {
		prefixes = [][]byte{GetRowPrefix(cube.schema.Name)}
	}

	return &badgerIterator{
		cube:      cube,
		query:     cq,
		prefixes:  prefixes,
		chunkRows: cube.backend.chunkRows,
	}, nil
}

// badgerIterator pages through the row prefixes of a query. Each Next opens
// its own read transaction and resumes after the last key it visited.
type badgerIterator struct {
	cube      *badgerCube
	query     *compiledQuery
	prefixes  [][]byte
	chunkRows int

	prefixIdx int
	lastKey   []byte
}

func (iter *badgerIterator) Next() (*frame.Frame, error) {
	chunk := iter.query.newChunk()
	schema := iter.cube.schema
	err := iter.cube.backend.db.View(func(txn *badger.Txn) error {
		for iter.prefixIdx < len(iter.prefixes) && chunk.Len() < iter.chunkRows {
			prefix := iter.prefixes[iter.prefixIdx]
			exhausted, err := iter.scan(txn, prefix, schema, chunk)
			if err != nil {
				return err
			}
			if exhausted {
				iter.prefixIdx++
				iter.lastKey = nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, cubeerr.WrapStore(err, "reading cube %s", schema.Name)
	}
	if chunk.Len() == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

func (iter *badgerIterator) scan(
	txn *badger.Txn,
	prefix []byte,
	schema *Schema,
	chunk *frame.Frame) (bool, error) {

	it := txn.NewIterator(badger.IteratorOptions{
		Prefix:         prefix,
		PrefetchValues: true,
		PrefetchSize:   100,
	})
	defer it.Close()

	start := prefix
	if iter.lastKey != nil {
		start = iter.lastKey
	}
	it.Seek(start)
	if iter.lastKey != nil && it.ValidForPrefix(prefix) && bytes.Equal(it.Item().Key(), iter.lastKey) {
		it.Next()
	}

	for ; it.ValidForPrefix(prefix); it.Next() {
		if chunk.Len() >= iter.chunkRows {
			return false, nil
		}
		item := it.Item()
		iter.lastKey = item.KeyCopy(nil)

		dims, err := GetDimsFromRowKey(item.Key(), schema.Name, len(schema.Dimensions))
		if err != nil {
			return false, err
		}
		var attrs []frame.Value
		err = item.Value(func(val []byte) error {
			var decodeErr error
			attrs, decodeErr = decodeAttrs(val)
			return decodeErr
		})
		if err != nil {
			return false, err
		}
		if len(attrs) != len(schema.Attributes) {
			return false, cubeerr.Storef("cube %s: row has %d attributes, schema has %d",
				schema.Name, len(attrs), len(schema.Attributes))
		}

		row := Row{Dims: dims, Attrs: attrs}
		if iter.query.match(row) {
			chunk.AppendRow(iter.query.project(row)...)
		}
	}
	return true, nil
}

func (iter *badgerIterator) Rewind() {
	iter.prefixIdx = 0
	iter.lastKey = nil
}
