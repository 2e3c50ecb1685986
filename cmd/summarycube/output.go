package main

import (
	"github.com/apache/arrow/go/v11/arrow/ipc"
	"github.com/apache/arrow/go/v11/arrow/memory"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"io"
	"summarycube/frame"
)

func writeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(v), "encoding output")
}

func writeArrow(out io.Writer, result *frame.Frame) error {
	mem := memory.NewGoAllocator()
	record := result.ToArrowRecord(mem)
	defer record.Release()

	writer := ipc.NewWriter(out, ipc.WithSchema(record.Schema()), ipc.WithAllocator(mem))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return errors.Wrap(err, "writing arrow record")
	}
	return errors.Wrap(writer.Close(), "closing arrow stream")
}

func humanizeRows(n int) string {
	return humanize.Comma(int64(n))
}
