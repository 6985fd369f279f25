// Package folder discovers user datasets in a directory and analyzes them one by one.
package folder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"arffstats/internal/analyzer"
	"arffstats/internal/source"
	"arffstats/internal/types"
)

var fileRegex = regexp.MustCompile(`^([0-9]+)\.arff(\.gz|\.zst|\.lz4)?$`)

// Entry is a dataset file and the user it belongs to
type Entry struct {
	UserID string
	Path   string
}

// Sink receives finished results in discovery order
type Sink interface {
	Begin() error
	Write(result types.Result) error
}

// MatchName returns the user id encoded in a dataset file name.
// Compressed names such as 7.arff.gz match as well.
func MatchName(name string) (string, bool) {
	userID, _, ok := matchName(name)
	return userID, ok
}

func matchName(name string) (userID string, compressed, ok bool) {
	match := fileRegex.FindStringSubmatch(name)
	if match == nil {
		return "", false, false
	}

	return match[1], match[2] != "", true
}

// List returns the dataset entries of dir in directory listing order.
// Subdirectories and non-matching names are skipped. Compressed datasets are
// listed only when compressed is set, and never when the plain <id>.arff or
// an earlier compressed copy of the same user is present.
func List(dir string, compressed bool) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input folder: %w", err)
	}

	plain := make(map[string]bool)

	for _, de := range dirEntries {
		userID, isCompressed, ok := matchName(de.Name())
		if ok && !isCompressed && !de.IsDir() {
			plain[userID] = true
		}
	}

	var entries []Entry

	seen := make(map[string]bool)

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}

		userID, isCompressed, ok := matchName(de.Name())
		if !ok {
			continue
		}

		if isCompressed {
			if !compressed || plain[userID] || seen[userID] {
				slog.Debug("Skipping compressed dataset", "file", de.Name(), "userid", userID)
				continue
			}

			seen[userID] = true
		}

		entries = append(entries, Entry{UserID: userID, Path: filepath.Join(dir, de.Name())})
	}

	return entries, nil
}

// AnalyzeFile runs the analyzer over a single dataset file
func AnalyzeFile(an *analyzer.Analyzer, entry Entry) (types.Result, error) {
	reader, err := source.Open(entry.Path)
	if err != nil {
		return types.Result{}, err
	}
	defer reader.Close()

	result, err := an.Analyze(reader, entry.UserID)
	if err != nil {
		return types.Result{}, err
	}

	result.Digest, err = reader.Finish()
	if err != nil {
		return types.Result{}, err
	}

	return result, nil
}

// Run analyzes every dataset in dir sequentially and hands each result to sink.
// The first failing file aborts the run. Cancellation is honoured between files.
func Run(ctx context.Context, dir string, compressed bool, an *analyzer.Analyzer, sink Sink) error {
	log := slog.With("folder", dir)

	entries, err := List(dir, compressed)
	if err != nil {
		return err
	}

	err = sink.Begin()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := AnalyzeFile(an, entry)
		if err != nil {
			return fmt.Errorf("analysis of %s failed: %w", entry.Path, err)
		}

		log.Debug("Dataset analyzed",
			"userid", result.UserID,
			"file", entry.Path,
			"instances", result.Instances,
			"attributes", result.Attributes,
			"digest", fmt.Sprintf("%016x", result.Digest))

		err = sink.Write(result)
		if err != nil {
			return err
		}
	}

	log.Info("Folder processed", "datasets", len(entries))

	return nil
}
