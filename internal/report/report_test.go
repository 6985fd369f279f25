package report

import (
	"bytes"
	"math"
	"testing"

	"arffstats/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0.05, "0.05"},
		{1, "1"},
		{-2.5, "-2.5"},
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1.0 / 3.0, "0.3333333333333333"},
		{123456789, "123456789"},
		{1e-6, "0.000001"},
		{1e-7, "1e-7"},
		{1.5e-10, "1.5e-10"},
		{1e21, "1e+21"},
		{1e20, "100000000000000000000"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.in))
		})
	}
}

func TestWriter_CSV(t *testing.T) {
	results := []types.Result{
		{UserID: "7", Instances: 1, Attributes: 4, CharDensity: 0.05, WordDensity: 0, Extended: true},
		{UserID: "8", Instances: 0, Attributes: 2, CharDensity: math.NaN(), WordDensity: math.NaN(), Extended: true},
	}

	t.Run("extended", func(t *testing.T) {
		var buf bytes.Buffer

		w, err := NewWriter(&buf, FormatCSV, true)
		require.NoError(t, err)
		require.NoError(t, w.Begin())

		for _, r := range results {
			require.NoError(t, w.Write(r))
		}

		expected := "userid;instances;attributes;charAttributesPerCharacter;posAttributesPerWord\n" +
			"7;1;4;0.05;0\n" +
			"8;0;2;NaN;NaN\n"
		assert.Equal(t, expected, buf.String())
	})

	t.Run("extended header without results", func(t *testing.T) {
		var buf bytes.Buffer

		w, err := NewWriter(&buf, FormatCSV, true)
		require.NoError(t, err)
		require.NoError(t, w.Begin())
		require.NoError(t, w.Begin())

		assert.Equal(t, "userid;instances;attributes;charAttributesPerCharacter;posAttributesPerWord\n", buf.String())
	})

	t.Run("basic", func(t *testing.T) {
		var buf bytes.Buffer

		w, err := NewWriter(&buf, FormatCSV, false)
		require.NoError(t, err)

		for _, r := range results {
			require.NoError(t, w.Write(r))
		}

		assert.Equal(t, "7;1;4\n8;0;2\n", buf.String())
	})
}

func TestWriter_JSON(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, FormatJSON, true)
	require.NoError(t, err)

	require.NoError(t, w.Write(types.Result{UserID: "7", Instances: 1, Attributes: 4, CharDensity: 0.05, WordDensity: math.Inf(1), Digest: 0xabc}))
	require.NoError(t, w.Write(types.Result{UserID: "8", CharDensity: math.NaN(), WordDensity: 1e-7}))

	expected := `{"userid":"7","instances":1,"attributes":4,"charAttributesPerCharacter":0.05,"posAttributesPerWord":"Infinity","digest":"0000000000000abc"}` + "\n" +
		`{"userid":"8","instances":0,"attributes":0,"charAttributesPerCharacter":"NaN","posAttributesPerWord":1e-7}` + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_JSONBasic(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, FormatJSON, false)
	require.NoError(t, err)
	require.NoError(t, w.Write(types.Result{UserID: "3", Instances: 2, Attributes: 5}))

	assert.Equal(t, `{"userid":"3","instances":2,"attributes":5}`+"\n", buf.String())
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "xml", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
