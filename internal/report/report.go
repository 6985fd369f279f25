// Package report renders analysis results as a semicolon-delimited table or JSON lines.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"arffstats/internal/types"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExtendedHeader lists the columns of the extended variant
var ExtendedHeader = []string{"userid", "instances", "attributes", "charAttributesPerCharacter", "posAttributesPerWord"}

// Writer prints one line per result.
// The CSV header is written before the first result only in the extended variant.
type Writer struct {
	format   string
	extended bool
	csv      *csv.Writer
	json     *json.Encoder
	started  bool
}

// Record is the JSON form of a result. Non-finite densities are strings.
type Record struct {
	UserID      string `json:"userid"`
	Instances   int    `json:"instances"`
	Attributes  int    `json:"attributes"`
	CharDensity any    `json:"charAttributesPerCharacter,omitempty"`
	WordDensity any    `json:"posAttributesPerWord,omitempty"`
	Digest      string `json:"digest,omitempty"`
}

func NewWriter(w io.Writer, format string, extended bool) (*Writer, error) {
	rw := &Writer{format: format, extended: extended}

	switch format {
	case FormatCSV:
		rw.csv = csv.NewWriter(w)
		rw.csv.Comma = ';'
	case FormatJSON:
		rw.json = json.NewEncoder(w)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return rw, nil
}

// Begin writes the header if the format has one. It is a no-op after the first call.
func (w *Writer) Begin() error {
	if w.started {
		return nil
	}

	w.started = true

	if w.csv == nil || !w.extended {
		return nil
	}

	err := w.csv.Write(ExtendedHeader)
	if err != nil {
		return fmt.Errorf("CSV write error: %w", err)
	}

	return w.flush()
}

// Write prints a single result line
func (w *Writer) Write(result types.Result) error {
	err := w.Begin()
	if err != nil {
		return err
	}

	if w.json != nil {
		err = w.json.Encode(NewRecord(result, w.extended))
		if err != nil {
			return fmt.Errorf("JSON write error: %w", err)
		}

		return nil
	}

	err = w.csv.Write(Fields(result, w.extended))
	if err != nil {
		return fmt.Errorf("CSV write error: %w", err)
	}

	return w.flush()
}

func (w *Writer) flush() error {
	w.csv.Flush()

	err := w.csv.Error()
	if err != nil {
		return fmt.Errorf("CSV finalization error: %w", err)
	}

	return nil
}

// Fields returns the table columns of a result
func Fields(result types.Result, extended bool) []string {
	fields := []string{
		result.UserID,
		strconv.Itoa(result.Instances),
		strconv.Itoa(result.Attributes),
	}

	if extended {
		fields = append(fields, FormatNumber(result.CharDensity), FormatNumber(result.WordDensity))
	}

	return fields
}

// NewRecord converts a result to its JSON form
func NewRecord(result types.Result, extended bool) Record {
	record := Record{
		UserID:     result.UserID,
		Instances:  result.Instances,
		Attributes: result.Attributes,
	}

	if extended {
		record.CharDensity = jsonNumber(result.CharDensity)
		record.WordDensity = jsonNumber(result.WordDensity)
	}

	if result.Digest != 0 {
		record.Digest = fmt.Sprintf("%016x", result.Digest)
	}

	return record
}

func jsonNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return FormatNumber(f)
	}

	return json.Number(FormatNumber(f))
}

// FormatNumber renders f the shortest way that reads back to the same value:
// plain decimals between 1e-6 and 1e21, exponent notation outside,
// and NaN, Infinity or -Infinity for non-finite values.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")

	return mantissa + "e" + sign + digits
}
