package trim

import (
	"strings"

	"adaptTrimmer/internal/fastq"
)

// PhredOffset is the ASCII offset of phred+33 quality strings.
const PhredOffset = 33

// Options configure a Trimmer. Adaptors are tried in order.
type Options struct {
	Adaptors     []string
	MaxErrorRate float64
	MinOverlap   int
	Mode         Mode

	// Internal also accepts full-length adaptor occurrences away from the
	// read end.
	Internal bool
	// QualityCutoff enables 3' quality trimming before the adaptor search
	// when positive.
	QualityCutoff int
	// TrimN strips runs of unknown bases from both read ends.
	TrimN bool
	// CleanHeader truncates headers at the first blank and empties the '+' line.
	CleanHeader bool
}

// Trim cuts rec at m.Position when ok is set, keeping the part of the read
// selected by mode. Sequence and quality stay the same length. A match that
// consumes the whole read yields an empty record.
func Trim(rec fastq.Record, m Match, ok bool, mode Mode) fastq.Record {
	if !ok {
		return rec
	}
	if mode == FivePrime {
		return slice(rec, m.Position, rec.Len())
	}
	return slice(rec, 0, m.Position)
}

func slice(rec fastq.Record, lo, hi int) fastq.Record {
	rec.Sequence = rec.Sequence[lo:hi]
	rec.Quality = rec.Quality[lo:hi]
	return rec
}

// QualityTrimIndex returns the 3' cut position for the BWA/cutadapt
// running-sum quality trim.
func QualityTrimIndex(qual string, cutoff int) int {
	stop := len(qual)
	if cutoff <= 0 {
		return stop
	}
	s, best := 0, 0
	for i := len(qual) - 1; i >= 0; i-- {
		s += cutoff - (int(qual[i]) - PhredOffset)
		if s < 0 {
			break
		}
		if s > best {
			best = s
			stop = i
		}
	}
	return stop
}

// unknownEnds returns the bounds of seq without leading and trailing
// unknown bases. An all-unknown sequence gives (0, 0).
func unknownEnds(seq string) (int, int) {
	lo := strings.IndexFunc(seq, func(r rune) bool { return r != Unknown })
	if lo < 0 {
		return 0, 0
	}
	hi := strings.LastIndexFunc(seq, func(r rune) bool { return r != Unknown })
	return lo, hi + 1
}

func cleanHeader(rec fastq.Record) fastq.Record {
	if i := strings.IndexAny(rec.Header, " \t"); i >= 0 {
		rec.Header = rec.Header[:i]
	}
	rec.Plus = "+"
	return rec
}

// Trimmer applies the adaptor search to whole records. It holds no mutable
// state and may be shared by all workers.
type Trimmer struct {
	opts     Options
	adaptors []string
}

func New(opts Options) *Trimmer {
	adaptors := make([]string, 0, len(opts.Adaptors))
	for _, a := range opts.Adaptors {
		adaptors = append(adaptors, strings.ToUpper(a))
	}
	return &Trimmer{opts: opts, adaptors: adaptors}
}

func (t *Trimmer) Adaptors() []string {
	return t.adaptors
}

func (t *Trimmer) find(seq, adaptor string) (Match, bool) {
	if t.opts.Internal {
		if m, ok := FindInternal(seq, adaptor, t.opts.MaxErrorRate, t.opts.Mode); ok {
			return m, ok
		}
	}
	return FindBestOverlap(seq, adaptor, t.opts.MaxErrorRate, t.opts.MinOverlap, t.opts.Mode)
}

// Process trims one record. It returns the index of the adaptor that
// matched, or -1. The first adaptor that produces a match wins.
func (t *Trimmer) Process(rec fastq.Record) (fastq.Record, int) {
	if t.opts.CleanHeader {
		rec = cleanHeader(rec)
	}

	lo, hi := 0, rec.Len()
	if t.opts.QualityCutoff > 0 {
		hi = QualityTrimIndex(rec.Quality, t.opts.QualityCutoff)
	}
	if t.opts.TrimN {
		nlo, nhi := unknownEnds(rec.Sequence[:hi])
		lo, hi = nlo, nhi
	}
	rec = slice(rec, lo, hi)

	hit := -1
	for i, a := range t.adaptors {
		m, ok := t.find(rec.Sequence, a)
		if !ok {
			continue
		}
		rec = Trim(rec, m, ok, t.opts.Mode)
		hit = i
		break
	}

	if hit >= 0 && t.opts.TrimN {
		nlo, nhi := unknownEnds(rec.Sequence)
		rec = slice(rec, nlo, nhi)
	}
	return rec, hit
}

// Stats are counts gathered while trimming one batch.
type Stats struct {
	Reads        int64
	Trimmed      []int64
	BasesIn      int64
	BasesRemoved int64
	Empty        int64
}

func NewStats(adaptors int) Stats {
	return Stats{Trimmed: make([]int64, adaptors)}
}

func (s *Stats) Add(o Stats) {
	if len(s.Trimmed) < len(o.Trimmed) {
		s.Trimmed = append(s.Trimmed, make([]int64, len(o.Trimmed)-len(s.Trimmed))...)
	}
	s.Reads += o.Reads
	for i, n := range o.Trimmed {
		s.Trimmed[i] += n
	}
	s.BasesIn += o.BasesIn
	s.BasesRemoved += o.BasesRemoved
	s.Empty += o.Empty
}

// Batch is the output of ProcessBatch.
type Batch struct {
	Records []fastq.Record
	Stats   Stats
}

// ProcessBatch trims every record of recs in place and returns them with
// their counts. The caller hands over ownership of recs.
func (t *Trimmer) ProcessBatch(recs []fastq.Record) Batch {
	st := NewStats(len(t.adaptors))
	for i, rec := range recs {
		out, hit := t.Process(rec)
		st.Reads++
		st.BasesIn += int64(rec.Len())
		st.BasesRemoved += int64(rec.Len() - out.Len())
		if hit >= 0 {
			st.Trimmed[hit]++
		}
		if out.Len() == 0 {
			st.Empty++
		}
		recs[i] = out
	}
	return Batch{Records: recs, Stats: st}
}
