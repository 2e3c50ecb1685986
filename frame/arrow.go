package frame

import (
	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/memory"
)

// ToArrowRecord converts the frame into an arrow record. Columns marked
// numeric, or holding only numbers and nulls, become float64 columns;
// everything else becomes utf8. The caller owns the returned record and must Release it.
func (frame *Frame) ToArrowRecord(mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, len(frame.names))
	arrays := make([]arrow.Array, len(frame.names))
	for i, name := range frame.names {
		col := frame.cols[i]
		if frame.numeric[i] || isNumericColumn(col) {
			fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
			arrays[i] = buildFloat64(mem, col)
		} else {
			fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
			arrays[i] = buildString(mem, col)
		}
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	schema := arrow.NewSchema(fields, nil)
	return array.NewRecord(schema, arrays, int64(frame.Len()))
}

func isNumericColumn(col []Value) bool {
	numeric := false
	for _, v := range col {
		switch v.kind {
		case StringKind:
			return false
		case FloatKind:
			numeric = true
		}
	}
	return numeric
}

func buildFloat64(mem memory.Allocator, col []Value) arrow.Array {
	builder := array.NewFloat64Builder(mem)
	defer builder.Release()
	builder.Reserve(len(col))
	for _, v := range col {
		if f, ok := v.Float(); ok {
			builder.Append(f)
		} else {
			builder.AppendNull()
		}
	}
	return builder.NewArray()
}

func buildString(mem memory.Allocator, col []Value) arrow.Array {
	builder := array.NewStringBuilder(mem)
	defer builder.Release()
	builder.Reserve(len(col))
	for _, v := range col {
		if v.IsNull() {
			builder.AppendNull()
		} else {
			builder.Append(v.Str())
		}
	}
	return builder.NewArray()
}
