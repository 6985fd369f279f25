// Package analyzer computes per-user statistics from sparse ARFF-like datasets
// in a single streaming pass.
package analyzer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"arffstats/internal/types"
)

// Analyzer streams dataset lines through the classifier and a fresh aggregate
type Analyzer struct {
	opts Options
}

func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// Options returns the options every aggregate of this analyzer is created with
func (an *Analyzer) Options() Options {
	return an.opts
}

// AnalyzeLines drains a finite line sequence and returns the finalized result
func (an *Analyzer) AnalyzeLines(lines iter.Seq[string], userID string) types.Result {
	agg := NewAggregate(an.opts)
	phase := PhaseHeader

	for line := range lines {
		classified := Classify(line, phase)
		agg.Consume(classified)
		phase = classified.Next(phase)
	}

	return agg.Finalize(userID)
}

// Analyze reads r line by line until EOF. Lines have no length limit.
// A read error aborts the analysis; no partial result is returned.
func (an *Analyzer) Analyze(r io.Reader, userID string) (types.Result, error) {
	reader := bufio.NewReader(r)

	var readErr error

	result := an.AnalyzeLines(func(yield func(string) bool) {
		for {
			line, err := reader.ReadString('\n')
			if line != "" && !yield(trimEOL(line)) {
				return
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr = err
				}

				return
			}
		}
	}, userID)

	if readErr != nil {
		return types.Result{}, fmt.Errorf("failed to read dataset of user %s: %w", userID, readErr)
	}

	return result, nil
}

// trimEOL drops the line terminator, "\n" or "\r\n"
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
