// Package config is for run settings that are unmarshalled
// from Viper (see: /cmd): flags, ADAPTTRIMMER_* env vars, or adaptTrimmer.yaml
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"adaptTrimmer/internal/trim"
)

// ErrConfiguration is wrapped by every validation failure. A run with an
// invalid configuration never touches its input.
var ErrConfiguration = errors.New("invalid configuration")

const (
	DefaultAdaptor = "AGATCGGAAGAGC"
	MaxThreads     = 255
	maxQualCutoff  = 93
)

// Config is the root-level settings struct.
type Config struct {
	// input FASTQ path, "-" for stdin
	In string `mapstructure:"in"`
	// output FASTQ path, "-" for stdout
	Out string `mapstructure:"out"`
	// second (mate) FASTQ of a paired-end run; requires Out2
	In2 string `mapstructure:"in2"`
	// output for In2; requires In2
	Out2 string `mapstructure:"out2"`

	// adaptors, tried in order for every read
	Adaptors []string `mapstructure:"adaptor"`
	// mismatches / overlap length allowed for a match
	MaxErrorRate float64 `mapstructure:"max-error-rate"`
	// shortest read/adaptor overlap that counts as a match
	MinOverlap int `mapstructure:"min-overlap"`
	// three_prime or five_prime
	Mode string `mapstructure:"mode"`
	// also look for whole adaptors away from the read end
	Internal bool `mapstructure:"internal"`

	// 3' quality trimming threshold, 0 disables
	QualCutoff int `mapstructure:"qual-cutoff"`
	// strip N runs at both read ends
	TrimN bool `mapstructure:"trim-n"`
	// drop header comments and the '+' line name
	CleanHeader bool `mapstructure:"clean-header"`

	// hard ceiling on worker goroutines
	Threads int `mapstructure:"threads"`
	// records per pipeline batch
	BatchSize int `mapstructure:"batch-size"`
	// set GOMAXPROCS to Threads for the run
	CapProcs bool `mapstructure:"cap-procs"`
	// gzip level for .gz output, -1 for the default
	CompressLevel int `mapstructure:"compress-level"`

	LogFormat string `mapstructure:"log-format"`
	LogLevel  string `mapstructure:"log-level"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Out:           "-",
		Adaptors:      []string{DefaultAdaptor},
		MaxErrorRate:  0.1,
		MinOverlap:    3,
		Mode:          trim.ThreePrime.String(),
		Threads:       1,
		BatchSize:     10000,
		CapProcs:      true,
		CompressLevel: -1,
		LogFormat:     "text",
		LogLevel:      "info",
	}
}

// NewConfig decodes v into a Config, normalises the adaptors and validates
// the result.
func NewConfig(v *viper.Viper) (Config, error) {
	c := DefaultConfig()
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: unable to decode: %v", ErrConfiguration, err)
	}
	for i, a := range c.Adaptors {
		c.Adaptors[i] = strings.ToUpper(strings.TrimSpace(a))
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func invalid(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, a...))
}

// Validate checks every setting the trimmer depends on.
func (c Config) Validate() error {
	if c.In == "" {
		return invalid("input file is required")
	}
	if c.Out == "" {
		return invalid("output file is required")
	}
	if (c.In2 == "") != (c.Out2 == "") {
		return invalid("paired-end requires both a second input and a second output")
	}
	if c.In2 != "" && c.In2 == c.In {
		return invalid("second input %s is the same as the first", c.In2)
	}
	if len(c.Adaptors) == 0 {
		return invalid("at least one adaptor is required")
	}
	for _, a := range c.Adaptors {
		if a == "" {
			return invalid("empty adaptor")
		}
		if i := strings.IndexFunc(a, func(r rune) bool { return !strings.ContainsRune("ACGTN", r) }); i >= 0 {
			return invalid("adaptor %s: unexpected symbol %q", a, a[i])
		}
	}
	if c.MaxErrorRate < 0 || c.MaxErrorRate > 1 {
		return invalid("max error rate %v outside [0, 1]", c.MaxErrorRate)
	}
	if c.MinOverlap < 1 {
		return invalid("min overlap must be positive, got %d", c.MinOverlap)
	}
	if _, err := trim.ParseMode(c.Mode); err != nil {
		return invalid("%v", err)
	}
	if c.QualCutoff < 0 || c.QualCutoff > maxQualCutoff {
		return invalid("quality cutoff %d outside [0, %d]", c.QualCutoff, maxQualCutoff)
	}
	if c.Threads < 1 || c.Threads > MaxThreads {
		return invalid("threads %d outside [1, %d]", c.Threads, MaxThreads)
	}
	if c.BatchSize < 1 {
		return invalid("batch size must be positive, got %d", c.BatchSize)
	}
	if c.CompressLevel < -1 || c.CompressLevel > 9 {
		return invalid("compression level %d outside [-1, 9]", c.CompressLevel)
	}
	return nil
}

// Paired reports whether a mate file is to be trimmed as well.
func (c Config) Paired() bool {
	return c.In2 != ""
}

// Mate returns the settings for the second file of a paired-end run.
func (c Config) Mate() Config {
	m := c
	m.In, m.Out = c.In2, c.Out2
	m.In2, m.Out2 = "", ""
	return m
}

// TrimOptions converts the settings for the trimmer. Call only on a
// validated Config.
func (c Config) TrimOptions() trim.Options {
	mode, _ := trim.ParseMode(c.Mode)
	return trim.Options{
		Adaptors:      c.Adaptors,
		MaxErrorRate:  c.MaxErrorRate,
		MinOverlap:    c.MinOverlap,
		Mode:          mode,
		Internal:      c.Internal,
		QualityCutoff: c.QualCutoff,
		TrimN:         c.TrimN,
		CleanHeader:   c.CleanHeader,
	}
}
