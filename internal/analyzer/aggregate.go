package analyzer

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"arffstats/internal/types"
)

const unresolved = -1

// floatPrefix matches the longest leading decimal number of a value token
var floatPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)`)

// Options controls which attributes and rows the aggregate tracks
type Options struct {
	Extended          bool
	SentinelClass     string
	CharPrefix        string
	PosPrefix         string
	WordCountName     string
	AverageLengthName string
	ClassName         string
}

// DefaultOptions returns the extended variant with the stock attribute names
func DefaultOptions() Options {
	return Options{
		Extended:          true,
		SentinelClass:     "Mine",
		CharPrefix:        "char",
		PosPrefix:         "pos",
		WordCountName:     "WordCount",
		AverageLengthName: "AverageWordLength",
		ClassName:         "Class",
	}
}

// Aggregate holds the running state of one file scan.
// It must not be shared between files.
type Aggregate struct {
	opts Options

	attributes     int
	instances      int
	charAttributes int
	posAttributes  int

	wordCountIndex     int
	averageLengthIndex int
	classIndex         int

	wordSum    float64
	charSum    float64
	matchCount int

	finalized bool
}

// rowValues holds the role values extracted from a single data row
type rowValues struct {
	class         string
	wordCount     float64
	averageLength float64
}

func NewAggregate(opts Options) *Aggregate {
	return &Aggregate{
		opts:               opts,
		wordCountIndex:     unresolved,
		averageLengthIndex: unresolved,
		classIndex:         unresolved,
	}
}

// Consume folds one classified line into the aggregate
func (a *Aggregate) Consume(line Line) {
	switch line.Kind {
	case KindAttribute:
		a.consumeAttribute(line.Name)
	case KindDataRow:
		a.consumeRow(line.Raw)
	case KindDataMarker, KindBlank:
	}
}

func (a *Aggregate) consumeAttribute(name string) {
	ordinal := a.attributes

	switch name {
	case a.opts.WordCountName:
		resolve(&a.wordCountIndex, ordinal)
	case a.opts.AverageLengthName:
		resolve(&a.averageLengthIndex, ordinal)
	case a.opts.ClassName:
		resolve(&a.classIndex, ordinal)
	}

	if strings.HasPrefix(name, a.opts.CharPrefix) {
		a.charAttributes++
	} else if strings.HasPrefix(name, a.opts.PosPrefix) {
		a.posAttributes++
	}

	a.attributes++
}

// resolve records the first ordinal seen for a role
func resolve(index *int, ordinal int) {
	if *index == unresolved {
		*index = ordinal
	}
}

func (a *Aggregate) consumeRow(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}

	values := a.extract(raw)

	if values.class == a.opts.SentinelClass {
		a.wordSum += values.wordCount
		a.charSum += values.wordCount * values.averageLength
		a.matchCount++
	}

	a.instances++
}

// extract pulls the role values out of a sparse "index value, index value" row.
// Entries without a leading integer index are ignored.
func (a *Aggregate) extract(raw string) rowValues {
	values := rowValues{wordCount: -1, averageLength: -1}

	for _, entry := range strings.Split(raw, ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}

		index, ok := parseIndex(fields[0])
		if !ok || index < 0 {
			continue
		}

		var value string
		if len(fields) > 1 {
			value = fields[1]
		}

		switch index {
		case a.wordCountIndex:
			values.wordCount = parseFloat(value)
		case a.averageLengthIndex:
			values.averageLength = parseFloat(value)
		case a.classIndex:
			values.class = value
		}
	}

	return values
}

// parseIndex reads the leading integer of s, ignoring anything after it.
// A 0x prefix selects hexadecimal.
func parseIndex(s string) (int, bool) {
	sign := 1

	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}

	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], base, 0)
	if err != nil {
		return 0, false
	}

	return sign * int(n), true
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16:
		return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}

	return false
}

// parseFloat reads the leading decimal number of s, ignoring anything after it.
// A token without one is NaN; out of range values saturate to Inf.
func parseFloat(s string) float64 {
	prefix := floatPrefix.FindString(s)
	if prefix == "" {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}

	return f
}

// Finalize converts the aggregate into a result record.
// Averages are divided by the sentinel match count without guarding against zero.
func (a *Aggregate) Finalize(userID string) types.Result {
	result := types.Result{
		UserID:     userID,
		Instances:  a.instances,
		Attributes: a.attributes,
	}

	if !a.opts.Extended {
		return result
	}

	if !a.finalized {
		a.charSum /= float64(a.matchCount)
		a.wordSum /= float64(a.matchCount)
		a.finalized = true
	}

	result.Extended = true
	result.CharAttributes = a.charAttributes
	result.PosAttributes = a.posAttributes
	result.AverageCharacterCount = a.charSum
	result.AverageWordCount = a.wordSum
	result.CharDensity = float64(a.charAttributes) / a.charSum / float64(a.instances)
	result.WordDensity = float64(a.posAttributes) / a.wordSum / float64(a.instances)

	return result
}

// counts exposes the running sentinel sums. Finalize divides the sums in place.
func (a *Aggregate) counts() (wordSum, charSum float64, matches int) {
	return a.wordSum, a.charSum, a.matchCount
}
