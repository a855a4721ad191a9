// Package cmd holds the adaptTrimmer command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"adaptTrimmer/config"
	"adaptTrimmer/internal/logger"
	"adaptTrimmer/internal/runner"
)

// NewRootCommand builds the command. Settings are read from flags,
// environment variables prefixed with ADAPTTRIMMER, or adaptTrimmer.yaml
// (in that order).
func NewRootCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adaptTrimmer -i reads.fastq.gz -o trimmed.fastq.gz",
		Short: "Remove adaptor sequences from the ends of FASTQ reads",
		Long: `Remove adaptor sequences from the 3' (or 5') ends of FASTQ reads.

Each read is compared against the adaptors in the order given; the longest
read/adaptor overlap within the allowed error rate is cut away. Output order
always matches input order, and no more than --threads workers run at once.
Compressed input (gzip, zstd) is detected from its content; output ending
in .gz or .zst is compressed; "-" means stdin/stdout. Paired-end mates given
with --in2/--out2 are trimmed after the first file with the same settings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(*cobra.Command, []string) error {
			return readConfigFile(v)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v)
		},
	}
	bindFlags(v, cmd.Flags())
	return cmd
}

func mustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	d := config.DefaultConfig()

	flags.StringP("in", "i", d.In, "input FASTQ file")
	flags.StringP("out", "o", d.Out, "output FASTQ file")
	flags.StringP("in2", "I", d.In2, "second FASTQ file of a paired-end run (requires --out2)")
	flags.StringP("out2", "p", d.Out2, "output for the second paired-end file (requires --in2)")
	flags.StringSliceP("adaptor", "a", d.Adaptors, "adaptor sequence, repeat for several (tried in order)")
	flags.Float64P("max-error-rate", "e", d.MaxErrorRate, "maximum mismatches per overlapping base")
	flags.IntP("min-overlap", "m", d.MinOverlap, "minimum read/adaptor overlap")
	flags.String("mode", d.Mode, "end to trim: three_prime or five_prime")
	flags.Bool("internal", d.Internal, "also cut at full adaptor occurrences inside the read")
	flags.IntP("qual-cutoff", "q", d.QualCutoff, "3' quality trimming cutoff (0 disables)")
	flags.Bool("trim-n", d.TrimN, "strip N bases from both read ends")
	flags.Bool("clean-header", d.CleanHeader, "truncate read names at the first blank and clear the '+' line")
	flags.IntP("threads", "t", d.Threads, fmt.Sprintf("worker threads (1-%d), never exceeded", config.MaxThreads))
	flags.IntP("batch-size", "b", d.BatchSize, "records per batch")
	flags.Bool("cap-procs", d.CapProcs, "limit GOMAXPROCS to --threads")
	flags.Int("compress-level", d.CompressLevel, "compression level for .gz/.zst output (-1 default)")
	flags.String("log-format", d.LogFormat, "log format: text or json")
	flags.String("log-level", d.LogLevel, "log level: none, debug, info, warn, error")
	flags.String("config", "", "config file (default adaptTrimmer.yaml in . or $HOME/.adaptTrimmer)")

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			mustBindPFlag(v, f.Name, f)
		}
	})
	mustBindPFlag(v, "config", flags.Lookup("config"))

	v.SetEnvPrefix("ADAPTTRIMMER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func readConfigFile(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("adaptTrimmer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.adaptTrimmer")
	}
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	return nil
}

func run(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.NewConfig(v)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	defer log.Sync()

	summaries, err := runner.ProcessAll(ctx, cfg, log)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		s.Print(os.Stderr)
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
