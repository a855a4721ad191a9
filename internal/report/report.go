package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
)

// AdaptorCount is how many reads one adaptor was cut from.
type AdaptorCount struct {
	Adaptor string
	Reads   int64
}

// Summary describes a finished run.
type Summary struct {
	Input        string
	Reads        int64
	Adaptors     []AdaptorCount
	BasesIn      int64
	BasesRemoved int64
	Empty        int64
	Threads      int
	Duration     time.Duration
}

// Trimmed is the number of reads with any adaptor removed.
func (s Summary) Trimmed() int64 {
	var n int64
	for _, a := range s.Adaptors {
		n += a.Reads
	}
	return n
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func Comma(value int64) string {
	str := strconv.FormatInt(value, 10)
	sign := ""
	if value < 0 {
		sign, str = "-", str[1:]
	}
	result := ""
	count := 0
	for i := len(str) - 1; i >= 0; i-- {
		if count > 0 && count%3 == 0 {
			result = "," + result
		}
		result = string(str[i]) + result
		count++
	}
	return sign + result
}

// Print writes a human readable summary to w.
func (s Summary) Print(w io.Writer) {
	green := color.New(color.FgHiGreen)
	magenta := color.New(color.FgHiMagenta)

	if s.Input != "" {
		fmt.Fprintf(w, "\nInput: %s", s.Input)
	}
	fmt.Fprintf(w, "\nTotal reads: %s\n", Comma(s.Reads))
	fmt.Fprintf(w, "Reads with adaptor: %s\n", Comma(s.Trimmed()))
	green.Fprintf(w, "Percentage of trimmed reads: %.2f%%\n", percent(s.Trimmed(), s.Reads))
	for _, a := range s.Adaptors {
		magenta.Fprintf(w, "  %s: %s\n", a.Adaptor, Comma(a.Reads))
	}
	fmt.Fprintf(w, "\nBases processed: %s\n", Comma(s.BasesIn))
	green.Fprintf(w, "Bases removed: %s (%.2f%%)\n", Comma(s.BasesRemoved), percent(s.BasesRemoved, s.BasesIn))
	magenta.Fprintf(w, "Zero-length reads written: %s\n", Comma(s.Empty))
	fmt.Fprintf(w, "\nThreads: %d\n", s.Threads)
	fmt.Fprintf(w, "Application execution time: %s\n", s.Duration)
}
