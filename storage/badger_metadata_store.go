package storage

import (
	"github.com/dgraph-io/badger/v2"
	"summarycube/cubeerr"
	"summarycube/frame"
)

const ManifestKey = "MANIFEST"

func sideTableKey(name string) []byte {
	return GetMetaKey("side_table/" + name)
}

type BadgerMetadataStore struct {
	db *badger.DB
}

func NewBadgerMetadataStore(db *badger.DB) *BadgerMetadataStore {
	return &BadgerMetadataStore{db: db}
}

func (bms *BadgerMetadataStore) put(key, buf []byte) error {
	return bms.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

func (bms *BadgerMetadataStore) get(key []byte) ([]byte, error) {
	var buf []byte
	err := bms.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		buf, err = item.ValueCopy(nil)
		return err
	})
	return buf, err
}

func (bms *BadgerMetadataStore) PutManifest(m *Manifest) error {
	return cubeerr.WrapStore(bms.put(GetMetaKey(ManifestKey), encodeManifest(m)), "writing manifest")
}

func (bms *BadgerMetadataStore) GetManifest() (*Manifest, error) {
	buf, err := bms.get(GetMetaKey(ManifestKey))
	if err == badger.ErrKeyNotFound {
		return nil, cubeerr.Storef("manifest not found")
	}
	if err != nil {
		return nil, cubeerr.WrapStore(err, "reading manifest")
	}
	m, err := decodeManifest(buf)
	return m, cubeerr.WrapStore(err, "decoding manifest")
}

func (bms *BadgerMetadataStore) PutSideTable(name string, f *frame.Frame) error {
	return cubeerr.WrapStore(bms.put(sideTableKey(name), encodeFrame(f)), "writing side table %s", name)
}

func (bms *BadgerMetadataStore) GetSideTable(name string) (*frame.Frame, error) {
	buf, err := bms.get(sideTableKey(name))
	if err == badger.ErrKeyNotFound {
		return nil, cubeerr.Storef("side table %s not found", name)
	}
	if err != nil {
		return nil, cubeerr.WrapStore(err, "reading side table %s", name)
	}
	f, err := decodeFrame(buf)
	return f, cubeerr.WrapStore(err, "decoding side table %s", name)
}
