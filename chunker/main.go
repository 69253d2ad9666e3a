// Package main provides the chunker command: it splits yearly Quotebank
// dumps into fixed-size compressed CSV chunks the other tools work from.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/speakerlens/quote-radar/internal/chunk"
	"github.com/speakerlens/quote-radar/internal/config"
	"github.com/speakerlens/quote-radar/internal/logger"
)

func main() {
	configPath := flag.String("config", "pipeline.yaml", "Path to the pipeline YAML config")
	flag.Parse()

	log := logger.New("chunker")

	cfg, err := config.LoadPipeline(*configPath)
	if err != nil {
		log.Error("load pipeline config", slog.Any("err", err))
		os.Exit(1)
	}

	log = logger.NewWithLevel("chunker", cfg.Logging.Level)

	sources := cfg.EnabledSources()
	log.Info("chunker starting",
		slog.Int("sources", len(sources)),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Int("chunk_size", cfg.ChunkSize),
	)

	failed := 0
	for _, src := range sources {
		if err := runSource(log, cfg, src); err != nil {
			log.Error("source failed",
				slog.Int("year", src.Year),
				slog.String("file", src.File),
				slog.Any("err", err),
			)
			failed++
		}
	}

	if failed > 0 {
		log.Error("chunker finished with failures", slog.Int("failed", failed))
		os.Exit(1)
	}

	log.Info("chunker finished")
}

func runSource(log *slog.Logger, cfg *config.Pipeline, src config.DumpSource) error {
	start := time.Now()

	reader, err := chunk.OpenDump(src.File)
	if err != nil {
		return err
	}
	defer reader.Close()

	chunker, err := chunk.NewChunker(cfg.Output.Dir, src.ChunkPrefix(), cfg.ChunkSize, cfg.Output.CompressionLevel)
	if err != nil {
		return err
	}

	result, err := chunker.Split(reader)
	if err != nil {
		return err
	}

	log.Info("source chunked",
		slog.Int("year", src.Year),
		slog.Int("chunks", result.Chunks),
		slog.Int("rows", result.Rows),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}
