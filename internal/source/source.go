// Package source opens dataset files as plain text streams.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a dataset file is encoded on disk
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gz"
	CompressionZstd Compression = "zst"
	CompressionLZ4  Compression = "lz4"
)

var ErrUnsupportedCompression = errors.New("unsupported compression")

// Extensions lists the file suffixes accepted after ".arff"
var Extensions = map[string]Compression{
	"":     CompressionNone,
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
	".lz4": CompressionLZ4,
}

// DetectCompression returns the compression implied by a file name
func DetectCompression(name string) Compression {
	for ext, c := range Extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return c
		}
	}

	return CompressionNone
}

// Reader is a decompressed view of a dataset that fingerprints the raw bytes as they are read
type Reader struct {
	r       io.Reader
	raw     io.Reader
	digest  *xxhash.Digest
	closers []func() error
}

// Open opens a dataset file, decompressing it according to its name
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	reader, err := NewReader(file, DetectCompression(path))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}

	reader.closers = append(reader.closers, file.Close)

	return reader, nil
}

// NewReader wraps raw, which is encoded with c. Closing the Reader does not close raw.
func NewReader(raw io.Reader, c Compression) (*Reader, error) {
	digest := xxhash.New()
	tee := io.TeeReader(raw, digest)

	reader := &Reader{raw: tee, digest: digest}

	switch c {
	case CompressionNone:
		reader.r = tee
	case CompressionGzip:
		gz, err := gzip.NewReader(tee)
		if err != nil {
			return nil, fmt.Errorf("gzip header: %w", err)
		}

		reader.r = gz
		reader.closers = append(reader.closers, gz.Close)
	case CompressionZstd:
		dec, err := zstd.NewReader(tee, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}

		reader.r = dec
		reader.closers = append(reader.closers, func() error {
			dec.Close()
			return nil
		})
	case CompressionLZ4:
		reader.r = lz4.NewReader(tee)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, string(c))
	}

	return reader, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// Finish consumes whatever raw bytes the decoder left unread and returns the
// digest of the whole file.
func (r *Reader) Finish() (uint64, error) {
	_, err := io.Copy(io.Discard, r.raw)
	if err != nil {
		return 0, fmt.Errorf("failed to drain dataset: %w", err)
	}

	return r.digest.Sum64(), nil
}

func (r *Reader) Close() error {
	var errs []error

	for _, closeFn := range r.closers {
		err := closeFn()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
