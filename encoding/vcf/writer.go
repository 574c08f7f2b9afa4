package vcf

import (
	"bufio"
	"io"
	"strings"
)

var headerCols = []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

// Writer writes a VCF stream to an underlying io.Writer. The header is
// emitted on construction. Write errors are sticky; the caller must Flush
// before closing the underlying stream.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter emits the header h to w and returns a Writer for the records.
func NewWriter(w io.Writer, h *Header) (*Writer, error) {
	vw := &Writer{w: bufio.NewWriter(w)}
	for _, meta := range h.Meta {
		vw.writeln(meta)
	}
	cols := headerCols
	if len(h.Samples) > 0 {
		cols = append(append(append([]string{}, headerCols...), "FORMAT"), h.Samples...)
	}
	vw.writeln(strings.Join(cols, "\t"))
	if vw.err != nil {
		return nil, vw.err
	}
	return vw, nil
}

// Write writes one record. An error, once returned, is returned by every
// subsequent call.
func (w *Writer) Write(rec *Record) error {
	w.writeln(rec.String())
	return w.err
}

// Flush writes any buffered output to the underlying stream.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	if _, w.err = w.w.WriteString(line); w.err == nil {
		w.err = w.w.WriteByte('\n')
	}
}
