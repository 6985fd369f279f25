// Package webserver serves dataset analysis over HTTP.
package webserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"arffstats/internal/analyzer"
	"arffstats/internal/report"
	"arffstats/internal/source"
	"arffstats/internal/types"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies an analysis by upload content, user and variant
type cacheKey struct {
	digest   uint64
	userID   string
	extended bool
}

// Server answers dataset uploads with their statistics
type Server struct {
	extended      *analyzer.Analyzer
	basic         *analyzer.Analyzer
	cache         *lru.Cache[cacheKey, types.Result]
	maxUploadSize int64
}

// NewServer builds a server whose default variant follows opts.Extended
func NewServer(opts analyzer.Options, cacheSize int, maxUploadSize int64) (*Server, error) {
	cache, err := lru.New[cacheKey, types.Result](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	extendedOpts, basicOpts := opts, opts
	extendedOpts.Extended = true
	basicOpts.Extended = false

	return &Server{
		extended:      analyzer.New(extendedOpts),
		basic:         analyzer.New(basicOpts),
		cache:         cache,
		maxUploadSize: maxUploadSize,
	}, nil
}

// Router wires the handlers and middleware
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/analyze", s.AnalyzeHandler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", HealthHandler).Methods(http.MethodGet, http.MethodHead)
	r.Use(CompressionMiddleware)

	return r
}

// ListenAndServe runs the HTTP server until it fails
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Server started", "addr", addr)

	return srv.ListenAndServe()
}

func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// AnalyzeHandler analyzes the dataset uploaded as form field "file"
func (s *Server) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	log := slog.With("handler", "AnalyzeHandler")
	log.Info("Received analyze request", "remote_addr", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	err := r.ParseMultipartForm(MaxFormSize)
	if err != nil {
		log.Error("Failed to parse form", "error", err)
		WriteErrorResponse(w, fmt.Errorf("form parsing error: %w", err), http.StatusBadRequest)

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("Failed to retrieve file", "error", err)
		WriteErrorResponse(w, fmt.Errorf("file retrieval error: %w", err), http.StatusBadRequest)

		return
	}
	defer file.Close()

	err = ValidateFileUpload(file, header, s.maxUploadSize)
	if err != nil {
		log.Error("Upload rejected", "filename", header.Filename, "error", err)
		WriteErrorResponse(w, err, http.StatusBadRequest)

		return
	}

	userID, err := ResolveUserID(r.FormValue("userid"), header.Filename)
	if err != nil {
		log.Error("Upload rejected", "filename", header.Filename, "error", err)
		WriteErrorResponse(w, err, http.StatusBadRequest)

		return
	}

	an := s.extended
	if r.FormValue("basic") == "true" {
		an = s.basic
	}

	result, cached, err := s.analyzeUpload(an, file, header.Filename, userID)
	if err != nil {
		log.Error("Analysis failed", "filename", header.Filename, "error", err)
		WriteErrorResponse(w, err, http.StatusInternalServerError)

		return
	}

	cacheStatus := "miss"
	if cached {
		cacheStatus = "hit"
	}

	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(report.NewRecord(result, result.Extended))
	if err != nil {
		log.Error("Failed to send response", "error", err)
		return
	}

	log.Info("Request processed", "userid", userID, "cache", cacheStatus)
}

// analyzeUpload fingerprints the upload, answers from the cache when possible,
// and otherwise streams the upload through the analyzer.
func (s *Server) analyzeUpload(an *analyzer.Analyzer, file multipart.File, filename, userID string) (types.Result, bool, error) {
	hasher := xxhash.New()

	_, err := io.Copy(hasher, file)
	if err != nil {
		return types.Result{}, false, fmt.Errorf("file reading error: %w", err)
	}

	key := cacheKey{digest: hasher.Sum64(), userID: userID, extended: an.Options().Extended}
	if result, ok := s.cache.Get(key); ok {
		return result, true, nil
	}

	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return types.Result{}, false, fmt.Errorf("file rewind error: %w", err)
	}

	reader, err := source.NewReader(file, source.DetectCompression(filename))
	if err != nil {
		return types.Result{}, false, err
	}
	defer reader.Close()

	result, err := an.Analyze(reader, userID)
	if err != nil {
		return types.Result{}, false, err
	}

	result.Digest = key.digest
	s.cache.Add(key, result)

	return result, false, nil
}
