// Package frame implements the column-major result tables returned by cube
// queries.
package frame

import (
	"github.com/cockroachdb/errors"
	"strings"
)

// Frame is a column-major table. Frames handed out by queries are treated
// as read-only; every transformation returns a new Frame.
type Frame struct {
	names   []string
	cols    [][]Value
	numeric []bool
}

func New(names ...string) *Frame {
	cols := make([][]Value, len(names))
	for i := range cols {
		cols[i] = make([]Value, 0)
	}
	copied := make([]string, len(names))
	copy(copied, names)
	return &Frame{names: copied, cols: cols, numeric: make([]bool, len(names))}
}

// SetNumeric marks columns as numeric regardless of the values they hold.
// Unknown names are ignored. It returns the frame.
func (frame *Frame) SetNumeric(names ...string) *Frame {
	for _, name := range names {
		if i := frame.index(name); i >= 0 {
			frame.numeric[i] = true
		}
	}
	return frame
}

func (frame *Frame) IsNumeric(name string) bool {
	i := frame.index(name)
	return i >= 0 && frame.numeric[i]
}

// NumericColumns returns the names of the columns marked numeric.
func (frame *Frame) NumericColumns() []string {
	var names []string
	for i, name := range frame.names {
		if frame.numeric[i] {
			names = append(names, name)
		}
	}
	return names
}

// AppendRow adds one row; values follow column order.
func (frame *Frame) AppendRow(values ...Value) {
	if len(values) != len(frame.names) {
		panic(errors.AssertionFailedf("row has %d values, frame has %d columns",
			len(values), len(frame.names)))
	}
	for i, v := range values {
		frame.cols[i] = append(frame.cols[i], v)
	}
}

func (frame *Frame) Len() int {
	if len(frame.cols) == 0 {
		return 0
	}
	return len(frame.cols[0])
}

func (frame *Frame) Columns() []string {
	names := make([]string, len(frame.names))
	copy(names, frame.names)
	return names
}

func (frame *Frame) index(name string) int {
	for i, n := range frame.names {
		if n == name {
			return i
		}
	}
	return -1
}

func (frame *Frame) HasColumn(name string) bool {
	return frame.index(name) >= 0
}

// Column returns the values of a column. The slice must not be modified.
func (frame *Frame) Column(name string) ([]Value, bool) {
	i := frame.index(name)
	if i < 0 {
		return nil, false
	}
	return frame.cols[i], true
}

func (frame *Frame) Value(row int, name string) (Value, bool) {
	i := frame.index(name)
	if i < 0 || row < 0 || row >= frame.Len() {
		return Null(), false
	}
	return frame.cols[i][row], true
}

func (frame *Frame) Row(row int) map[string]Value {
	out := make(map[string]Value, len(frame.names))
	for i, name := range frame.names {
		out[name] = frame.cols[i][row]
	}
	return out
}

// Records converts the frame into one map per row, suitable for encoders.
func (frame *Frame) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, frame.Len())
	for r := range records {
		rec := make(map[string]interface{}, len(frame.names))
		for i, name := range frame.names {
			rec[name] = frame.cols[i][r].Interface()
		}
		records[r] = rec
	}
	return records
}

// Concat stacks frames with identical columns. It returns nil when no
// frames are given.
func Concat(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	first := frames[0]
	total := 0
	for _, f := range frames {
		if !sameColumns(first.names, f.names) {
			return nil, errors.Newf("cannot concat frames with columns [%s] and [%s]",
				strings.Join(first.names, ", "), strings.Join(f.names, ", "))
		}
		total += f.Len()
	}

	out := &Frame{
		names:   first.Columns(),
		cols:    make([][]Value, len(first.names)),
		numeric: make([]bool, len(first.names)),
	}
	for _, f := range frames {
		for i, numeric := range f.numeric {
			out.numeric[i] = out.numeric[i] || numeric
		}
	}
	for i := range out.cols {
		col := make([]Value, 0, total)
		for _, f := range frames {
			col = append(col, f.cols[i]...)
		}
		out.cols[i] = col
	}
	return out, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Filter keeps the rows whose mask entry is true.
func (frame *Frame) Filter(mask []bool) *Frame {
	out := New(frame.names...)
	copy(out.numeric, frame.numeric)
	for r := 0; r < frame.Len() && r < len(mask); r++ {
		if !mask[r] {
			continue
		}
		for i := range frame.cols {
			out.cols[i] = append(out.cols[i], frame.cols[i][r])
		}
	}
	return out
}

// Rename returns a frame whose columns are renamed by mapping. Columns not
// in mapping keep their names.
func (frame *Frame) Rename(mapping map[string]string) *Frame {
	names := make([]string, len(frame.names))
	for i, name := range frame.names {
		if renamed, ok := mapping[name]; ok {
			names[i] = renamed
		} else {
			names[i] = name
		}
	}
	numeric := make([]bool, len(frame.numeric))
	copy(numeric, frame.numeric)
	return &Frame{names: names, cols: frame.cols, numeric: numeric}
}

// Select projects the named columns in the given order.
func (frame *Frame) Select(names ...string) (*Frame, error) {
	out := &Frame{
		names:   make([]string, len(names)),
		cols:    make([][]Value, len(names)),
		numeric: make([]bool, len(names)),
	}
	for i, name := range names {
		idx := frame.index(name)
		if idx < 0 {
			return nil, errors.Newf("column %q not found", name)
		}
		out.names[i] = name
		out.cols[i] = frame.cols[idx]
		out.numeric[i] = frame.numeric[idx]
	}
	return out, nil
}

// Distinct drops repeated rows, keeping first occurrences in order.
func (frame *Frame) Distinct() *Frame {
	seen := make(map[string]struct{}, frame.Len())
	mask := make([]bool, frame.Len())
	var key strings.Builder
	for r := 0; r < frame.Len(); r++ {
		key.Reset()
		for i := range frame.cols {
			v := frame.cols[i][r]
			key.WriteByte(byte(v.kind))
			key.WriteString(v.Str())
			key.WriteByte(0)
		}
		if _, dup := seen[key.String()]; dup {
			continue
		}
		seen[key.String()] = struct{}{}
		mask[r] = true
	}
	return frame.Filter(mask)
}

// IsIn reports, per row, whether the string value of column name is one of
// values. ok is false when the column does not exist.
func (frame *Frame) IsIn(name string, values []string) (mask []bool, ok bool) {
	col, ok := frame.Column(name)
	if !ok {
		return nil, false
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	mask = make([]bool, len(col))
	for r, v := range col {
		if v.IsNull() {
			continue
		}
		_, mask[r] = set[v.Str()]
	}
	return mask, true
}
