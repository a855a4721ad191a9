package fastq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// Compression is a supported stream encoding.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

// CompressionFor picks the compression from the path suffix.
func CompressionFor(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"), strings.HasSuffix(path, ".bgz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	default:
		return None
	}
}

const gzipBlockSize = 1 << 20

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for _, cl := range c {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type readCloser struct {
	io.Reader
	io.Closer
}

type writeCloser struct {
	io.Writer
	io.Closer
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Sniff reports the compression of a stream from its leading bytes.
// It returns false when there are too few bytes to tell.
func Sniff(head []byte) (Compression, bool) {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip, true
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd, true
	case len(head) >= len(zstdMagic):
		return None, true
	default:
		return None, false
	}
}

// Open opens path for reading. "-" is stdin. Compression is detected from
// the content, falling back to the extension for very short inputs.
// threads bounds the decompressor's concurrency.
func Open(path string, threads int) (io.ReadCloser, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}
	rc, err := newReader(f, f, path, threads)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rc, nil
}

// newReader wraps r in the decompressor matching its content. c is closed
// along with the returned reader.
func newReader(r io.Reader, c io.Closer, path string, threads int) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, _ := br.Peek(len(zstdMagic))
	comp, ok := Sniff(head)
	if !ok {
		comp = CompressionFor(path)
	}

	switch comp {
	case Gzip:
		gr, err := pgzip.NewReaderN(br, gzipBlockSize, threads)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		return readCloser{gr, closers{gr, c}}, nil
	case Zstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(threads))
		if err != nil {
			return nil, fmt.Errorf("open zstd %s: %w", path, err)
		}
		return readCloser{zr, closers{zstdReadCloser{zr}, c}}, nil
	default:
		return readCloser{br, c}, nil
	}
}

type zstdReadCloser struct {
	d *zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.d.Close()
	return nil
}

// Create opens path for writing. "-" is stdout. level is the gzip level
// (-1 for the default); for zstd it is mapped onto the nearest encoder level.
func Create(path string, threads, level int) (io.WriteCloser, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdout
	} else {
		var err error
		if f, err = os.Create(path); err != nil {
			return nil, err
		}
	}

	switch CompressionFor(path) {
	case Gzip:
		gw, err := pgzip.NewWriterLevel(f, level)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := gw.SetConcurrency(gzipBlockSize, threads); err != nil {
			f.Close()
			return nil, err
		}
		return writeCloser{gw, closers{gw, f}}, nil
	case Zstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(threads)}
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		zw, err := zstd.NewWriter(f, opts...)
		if err != nil {
			f.Close()
			return nil, err
		}
		return writeCloser{zw, closers{zw, f}}, nil
	default:
		return f, nil
	}
}
