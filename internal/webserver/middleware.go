package webserver

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type compressResponseWriter struct {
	http.ResponseWriter
	writer io.Writer
}

func (w *compressResponseWriter) Write(b []byte) (int, error) {
	return w.writer.Write(b)
}

func CompressionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acceptEncoding := r.Header.Get("Accept-Encoding")

		var writer io.WriteCloser

		switch {
		case strings.Contains(acceptEncoding, "zstd"):
			encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
			if err != nil {
				slog.Error("Failed to create zstd encoder", "error", err)
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set("Content-Encoding", "zstd")
			writer = encoder
		case strings.Contains(acceptEncoding, "gzip"):
			w.Header().Set("Content-Encoding", "gzip")
			writer = gzip.NewWriter(w)
		default:
			next.ServeHTTP(w, r)
			return
		}

		defer writer.Close()

		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length") // Can't know compressed size
		next.ServeHTTP(&compressResponseWriter{ResponseWriter: w, writer: writer}, r)
	})
}
