package storage

import (
	"github.com/tinylib/msgp/msgp"
	"sort"
	"summarycube/cubeerr"
	"summarycube/frame"
)

// Encodings for everything the badger backend and metadata store persist.
// All payloads are msgpack, written with the msgp runtime.

func appendValue(b []byte, v frame.Value) []byte {
	switch v.Kind() {
	case frame.StringKind:
		return msgp.AppendString(b, v.Str())
	case frame.FloatKind:
		f, _ := v.Float()
		return msgp.AppendFloat64(b, f)
	}
	return msgp.AppendNil(b)
}

func readValue(b []byte) (frame.Value, []byte, error) {
	switch msgp.NextType(b) {
	case msgp.NilType:
		rest, err := msgp.ReadNilBytes(b)
		return frame.Null(), rest, err
	case msgp.StrType:
		s, rest, err := msgp.ReadStringBytes(b)
		return frame.Str(s), rest, err
	case msgp.Float64Type:
		f, rest, err := msgp.ReadFloat64Bytes(b)
		return frame.Float(f), rest, err
	}
	return frame.Null(), b, cubeerr.Storef("unexpected msgpack type %s", msgp.NextType(b))
}

func encodeAttrs(values []frame.Value) []byte {
	b := msgp.AppendArrayHeader(nil, uint32(len(values)))
	for _, v := range values {
		b = appendValue(b, v)
	}
	return b
}

func decodeAttrs(b []byte) ([]frame.Value, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	values := make([]frame.Value, n)
	for i := range values {
		values[i], b, err = readValue(b)
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

func appendStrings(b []byte, values []string) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(values)))
	for _, v := range values {
		b = msgp.AppendString(b, v)
	}
	return b
}

func readStrings(b []byte) ([]string, []byte, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	values := make([]string, n)
	for i := range values {
		values[i], b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
	}
	return values, b, nil
}

func encodeSchema(schema *Schema) []byte {
	b := msgp.AppendArrayHeader(nil, 3)
	b = msgp.AppendString(b, schema.Name)
	b = appendStrings(b, schema.DimensionNames())
	b = msgp.AppendArrayHeader(b, uint32(len(schema.Attributes)))
	for _, attr := range schema.Attributes {
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendString(b, attr.Name)
		b = msgp.AppendBool(b, attr.Numeric)
	}
	return b
}

func decodeSchema(b []byte) (*Schema, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return nil, err
	}
	name, b, err := msgp.ReadStringBytes(b)
	if err != nil {
		return nil, err
	}
	dims, b, err := readStrings(b)
	if err != nil {
		return nil, err
	}
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, n)
	for i := range attrs {
		if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
			return nil, err
		}
		if attrs[i].Name, b, err = msgp.ReadStringBytes(b); err != nil {
			return nil, err
		}
		if attrs[i].Numeric, b, err = msgp.ReadBoolBytes(b); err != nil {
			return nil, err
		}
	}
	return NewSchema(name, dims, attrs...), nil
}

func appendStringMap(b []byte, m map[string]string) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b = msgp.AppendMapHeader(b, uint32(len(m)))
	for _, k := range keys {
		b = msgp.AppendString(b, k)
		b = msgp.AppendString(b, m[k])
	}
	return b
}

func readStringMap(b []byte) (map[string]string, []byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	m := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		var k, v string
		if k, b, err = msgp.ReadStringBytes(b); err != nil {
			return nil, b, err
		}
		if v, b, err = msgp.ReadStringBytes(b); err != nil {
			return nil, b, err
		}
		m[k] = v
	}
	return m, b, nil
}

func appendIntMap(b []byte, m map[string]int) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b = msgp.AppendMapHeader(b, uint32(len(m)))
	for _, k := range keys {
		b = msgp.AppendString(b, k)
		b = msgp.AppendInt(b, m[k])
	}
	return b
}

func readIntMap(b []byte) (map[string]int, []byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	m := make(map[string]int, n)
	for i := uint32(0); i < n; i++ {
		var k string
		var v int
		if k, b, err = msgp.ReadStringBytes(b); err != nil {
			return nil, b, err
		}
		if v, b, err = msgp.ReadIntBytes(b); err != nil {
			return nil, b, err
		}
		m[k] = v
	}
	return m, b, nil
}

func encodeManifest(m *Manifest) []byte {
	b := msgp.AppendArrayHeader(nil, 5)
	b = msgp.AppendString(b, m.Version)
	b = appendStringMap(b, m.Cubes)
	b = appendStringMap(b, m.DiffExpCubes)
	b = appendIntMap(b, m.Cardinality)
	b = appendStrings(b, m.SideTables)
	return b
}

func decodeManifest(b []byte) (*Manifest, error) {
	var err error
	m := &Manifest{}
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return nil, err
	}
	if m.Version, b, err = msgp.ReadStringBytes(b); err != nil {
		return nil, err
	}
	if m.Cubes, b, err = readStringMap(b); err != nil {
		return nil, err
	}
	if m.DiffExpCubes, b, err = readStringMap(b); err != nil {
		return nil, err
	}
	if m.Cardinality, b, err = readIntMap(b); err != nil {
		return nil, err
	}
	if m.SideTables, _, err = readStrings(b); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeFrame(f *frame.Frame) []byte {
	names := f.Columns()
	b := msgp.AppendArrayHeader(nil, 3)
	b = appendStrings(b, names)
	b = appendStrings(b, f.NumericColumns())
	b = msgp.AppendArrayHeader(b, uint32(len(names)))
	for _, name := range names {
		col, _ := f.Column(name)
		b = encodeColumn(b, col)
	}
	return b
}

func encodeColumn(b []byte, col []frame.Value) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(col)))
	for _, v := range col {
		b = appendValue(b, v)
	}
	return b
}

func decodeFrame(b []byte) (*frame.Frame, error) {
	fields, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	if fields != 3 {
		return nil, cubeerr.Storef("frame has %d fields, expected 3", fields)
	}
	names, b, err := readStrings(b)
	if err != nil {
		return nil, err
	}
	numeric, b, err := readStrings(b)
	if err != nil {
		return nil, err
	}
	ncols, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	if int(ncols) != len(names) {
		return nil, cubeerr.Storef("frame has %d names and %d columns", len(names), ncols)
	}
	cols := make([][]frame.Value, ncols)
	nrows := -1
	for i := range cols {
		var n uint32
		if n, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
			return nil, err
		}
		if nrows >= 0 && int(n) != nrows {
			return nil, cubeerr.Storef("frame column %s has %d rows, expected %d", names[i], n, nrows)
		}
		nrows = int(n)
		cols[i] = make([]frame.Value, n)
		for r := range cols[i] {
			if cols[i][r], b, err = readValue(b); err != nil {
				return nil, err
			}
		}
	}

	out := frame.New(names...).SetNumeric(numeric...)
	for r := 0; r < nrows; r++ {
		row := make([]frame.Value, len(cols))
		for i := range cols {
			row[i] = cols[i][r]
		}
		out.AppendRow(row...)
	}
	return out, nil
}
