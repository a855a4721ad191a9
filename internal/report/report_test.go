package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestComma(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{name: "Less than 1000", input: 123, expected: "123"},
		{name: "Thousand", input: 1234, expected: "1,234"},
		{name: "Million", input: 1234567, expected: "1,234,567"},
		{name: "Billion", input: 1234567890, expected: "1,234,567,890"},
		{name: "Zero", input: 0, expected: "0"},
		{name: "Negative", input: -1234, expected: "-1,234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Comma(tt.input))
		})
	}
}

func TestSummaryPrint(t *testing.T) {
	color.NoColor = true

	s := Summary{
		Input:        "reads.fastq.gz",
		Reads:        2000,
		Adaptors:     []AdaptorCount{{Adaptor: "AGATCGGAAGAGC", Reads: 1500}, {Adaptor: "TGGAATTC", Reads: 100}},
		BasesIn:      100000,
		BasesRemoved: 25000,
		Empty:        3,
		Threads:      4,
		Duration:     2 * time.Second,
	}
	assert.Equal(t, int64(1600), s.Trimmed())

	buf := &bytes.Buffer{}
	s.Print(buf)
	out := buf.String()

	assert.Contains(t, out, "Input: reads.fastq.gz\nTotal reads: 2,000\n")
	assert.Contains(t, out, "Reads with adaptor: 1,600\n")
	assert.Contains(t, out, "Percentage of trimmed reads: 80.00%\n")
	assert.Contains(t, out, "  AGATCGGAAGAGC: 1,500\n")
	assert.Contains(t, out, "Bases removed: 25,000 (25.00%)\n")
	assert.Contains(t, out, "Zero-length reads written: 3\n")
	assert.Contains(t, out, "Threads: 4\n")
}

func TestSummaryPrintNoReads(t *testing.T) {
	color.NoColor = true
	buf := &bytes.Buffer{}
	Summary{}.Print(buf)
	assert.Contains(t, buf.String(), "Percentage of trimmed reads: 0.00%")
}
