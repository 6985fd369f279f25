package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = "@attribute WordCount numeric\n@data\n0 5\n"

func compress(t *testing.T, c Compression, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer

	switch c {
	case CompressionNone:
		buf.Write(data)
	case CompressionGzip:
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionZstd:
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionLZ4:
		w := lz4.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	return buf.Bytes()
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name     string
		expected Compression
	}{
		{"12.arff", CompressionNone},
		{"12.arff.gz", CompressionGzip},
		{"12.arff.zst", CompressionZstd},
		{"12.arff.lz4", CompressionLZ4},
		{"12.arff.bz2", CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectCompression(tt.name))
		})
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name        string
		compression Compression
	}{
		{"1.arff", CompressionNone},
		{"2.arff.gz", CompressionGzip},
		{"3.arff.zst", CompressionZstd},
		{"4.arff.lz4", CompressionLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := compress(t, tt.compression, []byte(dataset))
			path := filepath.Join(t.TempDir(), tt.name)
			require.NoError(t, os.WriteFile(path, raw, 0o644))

			reader, err := Open(path)
			require.NoError(t, err)
			defer reader.Close()

			content, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, dataset, string(content))

			digest, err := reader.Finish()
			require.NoError(t, err)
			assert.Equal(t, xxhash.Sum64(raw), digest)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "7.arff"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "7.arff.gz")
		require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))

		_, err := Open(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gzip header")
	})

	t.Run("unknown compression", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader(nil), Compression("bz2"))
		assert.ErrorIs(t, err, ErrUnsupportedCompression)
	})
}

func TestReader_DigestPlain(t *testing.T) {
	reader, err := NewReader(bytes.NewReader([]byte(dataset)), CompressionNone)
	require.NoError(t, err)

	_, err = io.ReadAll(reader)
	require.NoError(t, err)

	digest, err := reader.Finish()
	require.NoError(t, err)
	assert.Equal(t, xxhash.Sum64String(dataset), digest)
	require.NoError(t, reader.Close())
}
