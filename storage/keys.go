package storage

import (
	"encoding/binary"
	"github.com/tinylib/msgp/msgp"
	"summarycube/cubeerr"
)

const (
	SchemaTag   = byte('s')
	RowTag      = byte('r')
	SequenceTag = byte('q')
	MetaTag     = byte('m')
)

// <tag> <msgp cube name>
func GetSchemaKey(cube string) []byte {
	return msgp.AppendString([]byte{SchemaTag}, cube)
}

func GetSequenceKey(cube string) []byte {
	return msgp.AppendString([]byte{SequenceTag}, cube)
}

// GetRowPrefix returns the prefix shared by every row of a cube. Appending
// msgp-encoded leading dimension values narrows it to an index slice; the
// length header of each value keeps prefixes from matching longer values.
func GetRowPrefix(cube string, leading ...string) []byte {
	buf := msgp.AppendString([]byte{RowTag}, cube)
	for _, v := range leading {
		buf = msgp.AppendString(buf, v)
	}
	return buf
}

// <row prefix> <msgp dim values...> <8-byte big-endian sequence>
func GetRowKey(cube string, dims []string, seq uint64) []byte {
	buf := GetRowPrefix(cube, dims...)
	var suffix [8]byte
	binary.BigEndian.PutUint64(suffix[:], seq)
	return append(buf, suffix[:]...)
}

func GetDimsFromRowKey(key []byte, cube string, ndims int) ([]string, error) {
	prefix := GetRowPrefix(cube)
	if len(key) < len(prefix)+8 {
		return nil, cubeerr.Storef("row key for cube %s is too short", cube)
	}
	rest := key[len(prefix) : len(key)-8]
	dims := make([]string, ndims)
	var err error
	for i := range dims {
		dims[i], rest, err = msgp.ReadStringBytes(rest)
		if err != nil {
			return nil, cubeerr.WrapStore(err, "decoding row key of cube %s", cube)
		}
	}
	return dims, nil
}

func GetSequenceFromRowKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

// <tag> <msgp metadata key>
func GetMetaKey(name string) []byte {
	return msgp.AppendString([]byte{MetaTag}, name)
}
