package storage

import (
	"io"
	"strconv"
	"strings"
	"summarycube/cubeerr"
	"summarycube/frame"
)

const DefaultChunkRows = 4096

// Query is a single read against a cube.
//
// DimSlices holds one entry per schema dimension; an empty entry leaves the
// dimension unconstrained. A nil DimSlices leaves every dimension
// unconstrained. A nil Attrs or Dims selects every attribute or dimension;
// an empty non-nil slice selects none.
type Query struct {
	Cond      Expr
	DimSlices [][]string
	Attrs     []string
	Dims      []string
}

// Fingerprint is a stable textual identity of the query, used as a cache
// key.
func (q Query) Fingerprint() string {
	var b strings.Builder
	writeFingerprint(&b, q.Cond)
	b.WriteString("|s")
	for _, slice := range q.DimSlices {
		b.WriteString(strconv.Itoa(len(slice)))
		b.WriteByte('[')
		for _, v := range slice {
			b.WriteString(strconv.Quote(v))
		}
		b.WriteByte(']')
	}
	writeNames := func(tag string, names []string) {
		b.WriteString(tag)
		if names == nil {
			b.WriteByte('*')
			return
		}
		for _, n := range names {
			b.WriteString(strconv.Quote(n))
		}
	}
	writeNames("|a", q.Attrs)
	writeNames("|d", q.Dims)
	return b.String()
}

// ChunkIterator is a finite, restartable sequence of result chunks. Next
// returns io.EOF once the sequence is drained; Rewind restarts it.
type ChunkIterator interface {
	Next() (*frame.Frame, error)
	Rewind()
}

// Drain reads every remaining chunk of iter.
func Drain(iter ChunkIterator) ([]*frame.Frame, error) {
	var chunks []*frame.Frame
	for {
		chunk, err := iter.Next()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
}

type sliceIterator struct {
	chunks []*frame.Frame
	pos    int
}

func newSliceIterator(chunks []*frame.Frame) *sliceIterator {
	return &sliceIterator{chunks: chunks}
}

func (iter *sliceIterator) Next() (*frame.Frame, error) {
	if iter.pos >= len(iter.chunks) {
		return nil, io.EOF
	}
	chunk := iter.chunks[iter.pos]
	iter.pos++
	return chunk, nil
}

func (iter *sliceIterator) Rewind() {
	iter.pos = 0
}

// compiledQuery is a Query resolved against a schema.
type compiledQuery struct {
	schema  *Schema
	cond    Expr
	dimSets []map[string]struct{}
	dimIdx  []int
	attrIdx []int
	columns []string
}

func compileQuery(schema *Schema, q Query) (*compiledQuery, error) {
	if len(q.DimSlices) != 0 && len(q.DimSlices) != len(schema.Dimensions) {
		return nil, cubeerr.Storef("cube %s: query has %d dimension slices, cube has %d dimensions",
			schema.Name, len(q.DimSlices), len(schema.Dimensions))
	}

	cq := &compiledQuery{
		schema:  schema,
		cond:    q.Cond,
		dimSets: make([]map[string]struct{}, len(schema.Dimensions)),
	}
	for i, slice := range q.DimSlices {
		if len(slice) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(slice))
		for _, v := range slice {
			set[v] = struct{}{}
		}
		cq.dimSets[i] = set
	}

	if q.Dims == nil {
		for i := range schema.Dimensions {
			cq.dimIdx = append(cq.dimIdx, i)
		}
	} else {
		wanted := make(map[string]bool, len(q.Dims))
		for _, name := range q.Dims {
			if !schema.HasDimension(name) {
				return nil, cubeerr.Storef("cube %s has no dimension %q", schema.Name, name)
			}
			wanted[name] = true
		}
		for i, d := range schema.Dimensions {
			if wanted[d.Name] {
				cq.dimIdx = append(cq.dimIdx, i)
			}
		}
	}

	if q.Attrs == nil {
		for i := range schema.Attributes {
			cq.attrIdx = append(cq.attrIdx, i)
		}
	} else {
		for _, name := range q.Attrs {
			i := schema.AttributeIndex(name)
			if i < 0 {
				return nil, cubeerr.Storef("cube %s has no attribute %q", schema.Name, name)
			}
			cq.attrIdx = append(cq.attrIdx, i)
		}
	}

	if q.Cond != nil {
		for _, name := range q.Cond.Names() {
			if !schema.HasAttribute(name) && !schema.HasDimension(name) {
				return nil, cubeerr.Storef("cube %s: condition references unknown column %q",
					schema.Name, name)
			}
		}
	}

	for _, i := range cq.dimIdx {
		cq.columns = append(cq.columns, schema.Dimensions[i].Name)
	}
	for _, i := range cq.attrIdx {
		cq.columns = append(cq.columns, schema.Attributes[i].Name)
	}
	return cq, nil
}

func (cq *compiledQuery) match(row Row) bool {
	for i, set := range cq.dimSets {
		if set == nil {
			continue
		}
		if _, ok := set[row.Dims[i]]; !ok {
			return false
		}
	}
	if cq.cond == nil {
		return true
	}
	return cq.cond.Eval(func(name string) frame.Value {
		if i := cq.schema.AttributeIndex(name); i >= 0 {
			return row.Attrs[i]
		}
		if i := cq.schema.DimensionIndex(name); i >= 0 {
			return frame.Str(row.Dims[i])
		}
		return frame.Null()
	})
}

func (cq *compiledQuery) project(row Row) []frame.Value {
	out := make([]frame.Value, 0, len(cq.columns))
	for _, i := range cq.dimIdx {
		out = append(out, frame.Str(row.Dims[i]))
	}
	for _, i := range cq.attrIdx {
		out = append(out, row.Attrs[i])
	}
	return out
}

func (cq *compiledQuery) newChunk() *frame.Frame {
	return frame.New(cq.columns...).SetNumeric(cq.schema.NumericAttributeNames()...)
}
