// Package trim locates adaptor contamination at read ends and cuts it away.
// Everything here is pure: no I/O, no shared mutable state, safe to call
// from any number of goroutines with the same adaptors.
package trim

import (
	"fmt"
	"math"
)

// Mode selects which read end is searched for the adaptor.
type Mode int

const (
	// ThreePrime matches an adaptor prefix against a read suffix.
	ThreePrime Mode = iota
	// FivePrime matches an adaptor suffix against a read prefix.
	FivePrime
)

func (m Mode) String() string {
	switch m {
	case ThreePrime:
		return "three_prime"
	case FivePrime:
		return "five_prime"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "three_prime", "3", "3p", "3'":
		return ThreePrime, nil
	case "five_prime", "5", "5p", "5'":
		return FivePrime, nil
	}
	return 0, fmt.Errorf("unknown trim mode %q", s)
}

// Unknown is the base symbol that never matches anything.
const Unknown = 'N'

// Match is a qualifying adaptor alignment. Position is where the read is
// cut: in 3' mode the read keeps [0, Position), in 5' mode [Position, end).
type Match struct {
	Position   int
	Overlap    int
	Mismatches int
}

// MaxMismatches is the largest mismatch count tolerated over an overlap of
// the given length, floor(overlap * rate).
func MaxMismatches(overlap int, rate float64) int {
	return int(math.Floor(float64(overlap)*rate + 1e-9))
}

// mismatches counts positions where read and adaptor differ, stopping as
// soon as the count exceeds limit. An unknown base in the read always
// counts. Both windows must have the same length.
func mismatches(read, adaptor string, limit int) int {
	d := 0
	for i := 0; i < len(adaptor); i++ {
		if read[i] == Unknown || read[i] != adaptor[i] {
			d++
			if d > limit {
				return d
			}
		}
	}
	return d
}

// FindBestOverlap returns the longest overlap between the read end selected
// by mode and the matching adaptor end whose error rate does not exceed
// maxErrorRate. Overlaps shorter than minOverlap are never reported; a
// minOverlap below 1 is treated as 1. Mismatch count only gates a
// candidate, it does not rank them.
func FindBestOverlap(read, adaptor string, maxErrorRate float64, minOverlap int, mode Mode) (Match, bool) {
	if minOverlap < 1 {
		minOverlap = 1
	}
	m, n := len(read), len(adaptor)
	for l := min(m, n); l >= minOverlap; l-- {
		var rw, aw string
		if mode == FivePrime {
			rw, aw = read[:l], adaptor[n-l:]
		} else {
			rw, aw = read[m-l:], adaptor[:l]
		}
		limit := MaxMismatches(l, maxErrorRate)
		if d := mismatches(rw, aw, limit); d <= limit {
			pos := m - l
			if mode == FivePrime {
				pos = l
			}
			return Match{Position: pos, Overlap: l, Mismatches: d}, true
		}
	}
	return Match{}, false
}

// FindInternal looks for a full-length adaptor occurrence anywhere in the
// read, choosing the one that removes the most bases: the leftmost in 3'
// mode, the rightmost in 5' mode.
func FindInternal(read, adaptor string, maxErrorRate float64, mode Mode) (Match, bool) {
	m, n := len(read), len(adaptor)
	if n == 0 || n > m {
		return Match{}, false
	}
	limit := MaxMismatches(n, maxErrorRate)
	if mode == FivePrime {
		for i := m - n; i >= 0; i-- {
			if d := mismatches(read[i:i+n], adaptor, limit); d <= limit {
				return Match{Position: i + n, Overlap: n, Mismatches: d}, true
			}
		}
		return Match{}, false
	}
	for i := 0; i <= m-n; i++ {
		if d := mismatches(read[i:i+n], adaptor, limit); d <= limit {
			return Match{Position: i, Overlap: n, Mismatches: d}, true
		}
	}
	return Match{}, false
}
