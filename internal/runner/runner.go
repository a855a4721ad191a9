// Package runner wires FASTQ input and output, the trimmer, and the ordered
// pipeline into a single trimming run.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"adaptTrimmer/config"
	"adaptTrimmer/internal/fastq"
	"adaptTrimmer/internal/logger"
	"adaptTrimmer/internal/pipeline"
	"adaptTrimmer/internal/report"
	"adaptTrimmer/internal/trim"
)

// ProcessAll trims cfg.In, and for a paired-end run then cfg.In2, one file
// after the other under the same thread ceiling. Mates are trimmed
// independently; since no read is ever dropped and order is preserved, the
// two outputs stay in step record for record.
func ProcessAll(ctx context.Context, cfg config.Config, log logger.Logger) ([]report.Summary, error) {
	first, err := ProcessReads(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if !cfg.Paired() {
		return []report.Summary{first}, nil
	}
	second, err := ProcessReads(ctx, cfg.Mate(), log.With(zap.String("mate", "2")))
	if err != nil {
		return []report.Summary{first}, err
	}
	if first.Reads != second.Reads {
		log.Warn("paired files differ in length",
			zap.Int64("reads_1", first.Reads), zap.Int64("reads_2", second.Reads))
	}
	return []report.Summary{first, second}, nil
}

// ProcessReads trims every record of cfg.In into cfg.Out. cfg must already
// be validated. On error the output holds at most the batches that were
// written in order before the failure.
func ProcessReads(ctx context.Context, cfg config.Config, log logger.Logger) (report.Summary, error) {
	start := time.Now()

	if cfg.CapProcs {
		prev := runtime.GOMAXPROCS(cfg.Threads)
		defer runtime.GOMAXPROCS(prev)
	}

	log.Info("starting run",
		zap.String("input", cfg.In),
		zap.String("output", cfg.Out),
		zap.Strings("adaptors", cfg.Adaptors),
		zap.String("mode", cfg.Mode),
		zap.Float64("max_error_rate", cfg.MaxErrorRate),
		zap.Int("min_overlap", cfg.MinOverlap),
		zap.Int("threads", cfg.Threads),
		zap.Int("detected_cores", runtime.NumCPU()),
		zap.Int("batch_size", cfg.BatchSize),
	)
	log.Debug("read preparation",
		zap.Bool("internal", cfg.Internal),
		zap.Int("qual_cutoff", cfg.QualCutoff),
		zap.Bool("trim_n", cfg.TrimN),
		zap.Bool("clean_header", cfg.CleanHeader),
		zap.Bool("cap_procs", cfg.CapProcs),
	)

	in, err := fastq.Open(cfg.In, cfg.Threads)
	if err != nil {
		return report.Summary{}, err
	}
	defer in.Close()

	out, err := fastq.Create(cfg.Out, cfg.Threads, cfg.CompressLevel)
	if err != nil {
		return report.Summary{}, err
	}
	w := fastq.NewWriter(out)

	trimmer := trim.New(cfg.TrimOptions())
	stats := trim.NewStats(len(trimmer.Adaptors()))

	err = pipeline.Run(ctx,
		pipeline.Config{Threads: cfg.Threads, BatchSize: cfg.BatchSize},
		fastq.NewReader(in),
		trimmer.ProcessBatch,
		func(b trim.Batch) error {
			stats.Add(b.Stats)
			for _, rec := range b.Records {
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		w.Flush()
		out.Close()
		log.Error("run failed", zap.Error(err), zap.Int64("reads_written", stats.Reads))
		return report.Summary{}, fmt.Errorf("processing %s: %w", cfg.In, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return report.Summary{}, err
	}
	if err := out.Close(); err != nil {
		return report.Summary{}, err
	}

	summary := report.Summary{
		Input:        cfg.In,
		Reads:        stats.Reads,
		BasesIn:      stats.BasesIn,
		BasesRemoved: stats.BasesRemoved,
		Empty:        stats.Empty,
		Threads:      cfg.Threads,
		Duration:     time.Since(start),
	}
	for i, a := range trimmer.Adaptors() {
		summary.Adaptors = append(summary.Adaptors, report.AdaptorCount{Adaptor: a, Reads: stats.Trimmed[i]})
	}

	log.Info("run finished",
		zap.Int64("reads", summary.Reads),
		zap.Int64("trimmed", summary.Trimmed()),
		zap.Int64("bases_removed", summary.BasesRemoved),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}
