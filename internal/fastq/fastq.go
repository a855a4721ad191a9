// Package fastq reads and writes FASTQ records, optionally through gzip or
// zstd compression chosen by file extension.
package fastq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformed is returned when a record does not follow the four-line
	// FASTQ layout or its sequence and quality lengths differ.
	ErrMalformed = errors.New("malformed FASTQ record")
	// ErrShort is returned when the stream ends in the middle of a record.
	ErrShort = errors.New("truncated FASTQ record")
)

// Record is a single FASTQ read. Records are treated as immutable once read;
// trimming produces new records that share the underlying strings.
type Record struct {
	Header   string
	Sequence string
	Plus     string
	Quality  string
}

// Len is the number of bases in the record.
func (r Record) Len() int {
	return len(r.Sequence)
}

const maxLineSize = 16 << 20

// Reader yields records in file order. It is not safe for concurrent use.
type Reader struct {
	s   *bufio.Scanner
	n   int
	err error
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{s: s}
}

// Next returns the next record, or io.EOF once the stream is exhausted.
// Any other error is sticky.
func (r *Reader) Next() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}
	rec, err := r.next()
	if err != nil {
		r.err = err
	}
	return rec, err
}

func (r *Reader) next() (Record, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, io.EOF
	}
	r.n++
	var rec Record

	rec.Header = r.s.Text()
	if !strings.HasPrefix(rec.Header, "@") {
		return Record{}, fmt.Errorf("%w %d: expected '@' at the beginning of header line, got: %q", ErrMalformed, r.n, rec.Header)
	}
	if !r.line(&rec.Sequence) || !r.line(&rec.Plus) {
		return Record{}, r.short()
	}
	if !strings.HasPrefix(rec.Plus, "+") {
		return Record{}, fmt.Errorf("%w %d: expected '+' line, got: %q", ErrMalformed, r.n, rec.Plus)
	}
	if !r.line(&rec.Quality) {
		return Record{}, r.short()
	}
	if len(rec.Sequence) != len(rec.Quality) {
		return Record{}, fmt.Errorf("%w %d: sequence and quality strings must have the same length, got: %d and %d",
			ErrMalformed, r.n, len(rec.Sequence), len(rec.Quality))
	}
	return rec, nil
}

func (r *Reader) line(dst *string) bool {
	if !r.s.Scan() {
		return false
	}
	*dst = r.s.Text()
	return true
}

func (r *Reader) short() error {
	if err := r.s.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w %d", ErrShort, r.n)
}

// Writer writes records in the four-line layout.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 256*1024)}
}

func (w *Writer) Write(rec Record) error {
	plus := rec.Plus
	if plus == "" {
		plus = "+"
	}
	w.w.WriteString(rec.Header)
	w.w.WriteByte('\n')
	w.w.WriteString(rec.Sequence)
	w.w.WriteByte('\n')
	w.w.WriteString(plus)
	w.w.WriteByte('\n')
	w.w.WriteString(rec.Quality)
	_, err := w.w.WriteString("\n")
	return err
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}
