// Package main provides the extractor command: it pulls one speaker's
// quotes out of a year's chunk files, and can merge a speaker's yearly
// extracts into a single all-years file.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/speakerlens/quote-radar/internal/chunk"
	"github.com/speakerlens/quote-radar/internal/logger"
)

func main() {
	dir := flag.String("dir", "data", "Directory holding chunk and extract files")
	speaker := flag.String("speaker", "", "Speaker to extract, exactly as attributed in the dump")
	year := flag.Int("year", 0, "Dump year to scan")
	cutoff := flag.Float64("min-probability", 0, "Drop quotes whose top attribution probability is below this")
	level := flag.Int("level", chunk.DefaultCompressionLevel, "bz2 compression level for output files (1-9)")
	combine := flag.Bool("combine", false, "Merge the speaker's yearly extracts instead of scanning chunks")
	flag.Parse()

	log := logger.New("extractor")

	if *speaker == "" {
		log.Error("please provide a speaker with -speaker")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *combine {
		runCombine(log, *dir, *speaker, *level)
		return
	}

	if *year == 0 {
		log.Error("please provide a year with -year (or use -combine)")
		flag.PrintDefaults()
		os.Exit(1)
	}

	runExtract(log, *dir, *speaker, *year, *cutoff, *level)
}

func runExtract(log *slog.Logger, dir, speaker string, year int, cutoff float64, level int) {
	start := time.Now()

	quotes, err := chunk.ExtractSpeaker(dir, year, speaker, cutoff)
	if err != nil {
		log.Error("extract failed", slog.Any("err", err))
		os.Exit(1)
	}

	path, err := chunk.WriteSpeakerFile(dir, speaker, year, quotes, level)
	if err != nil {
		log.Error("write extract", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("extract complete",
		slog.String("speaker", speaker),
		slog.Int("year", year),
		slog.Int("quotes", len(quotes)),
		slog.String("file", path),
		slog.Duration("took", time.Since(start)),
	)
}

func runCombine(log *slog.Logger, dir, speaker string, level int) {
	start := time.Now()

	path, rows, err := chunk.CombineSpeaker(dir, speaker, level)
	if err != nil {
		log.Error("combine failed", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("combine complete",
		slog.String("speaker", speaker),
		slog.Int("quotes", rows),
		slog.String("file", path),
		slog.Duration("took", time.Since(start)),
	)
}
