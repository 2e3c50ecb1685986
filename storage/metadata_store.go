package storage

import (
	"summarycube/cubeerr"
	"summarycube/frame"
	"sync"
)

// Manifest describes a published snapshot: which physical cube plays each
// role, the differential-expression cube registry, per-dimension
// cardinality and the names of the side tables.
type Manifest struct {
	Version      string
	Cubes        map[string]string
	DiffExpCubes map[string]string
	Cardinality  map[string]int
	SideTables   []string
}

type MetadataStore interface {
	PutManifest(*Manifest) error
	GetManifest() (*Manifest, error)

	PutSideTable(string, *frame.Frame) error
	GetSideTable(string) (*frame.Frame, error)
}

type SimpleMetadataStore struct {
	manifest   []byte
	sideTables map[string][]byte
	mu         sync.Mutex
}

func NewSimpleMetadataStore() *SimpleMetadataStore {
	return &SimpleMetadataStore{
		manifest:   nil,
		sideTables: make(map[string][]byte),
	}
}

func (smm *SimpleMetadataStore) PutManifest(m *Manifest) error {
	smm.mu.Lock()
	defer smm.mu.Unlock()
	smm.manifest = encodeManifest(m)
	return nil
}

func (smm *SimpleMetadataStore) GetManifest() (*Manifest, error) {
	smm.mu.Lock()
	defer smm.mu.Unlock()
	if smm.manifest == nil {
		return nil, cubeerr.Storef("manifest not found")
	}
	m, err := decodeManifest(smm.manifest)
	return m, cubeerr.WrapStore(err, "decoding manifest")
}

func (smm *SimpleMetadataStore) PutSideTable(name string, f *frame.Frame) error {
	smm.mu.Lock()
	defer smm.mu.Unlock()
	smm.sideTables[name] = encodeFrame(f)
	return nil
}

func (smm *SimpleMetadataStore) GetSideTable(name string) (*frame.Frame, error) {
	smm.mu.Lock()
	defer smm.mu.Unlock()
	buf, ok := smm.sideTables[name]
	if !ok {
		return nil, cubeerr.Storef("side table %s not found", name)
	}
	f, err := decodeFrame(buf)
	return f, cubeerr.WrapStore(err, "decoding side table %s", name)
}
