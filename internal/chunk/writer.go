package chunk

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"

	"github.com/speakerlens/quote-radar/internal/models"
)

// DefaultCompressionLevel matches the level the yearly dumps ship with.
const DefaultCompressionLevel = bzip2.BestCompression

// Chunker splits a dump into fixed-row CSV chunk files named
// <prefix>-<n>.csv.bz2, numbering from 1.
type Chunker struct {
	dir       string
	prefix    string
	chunkSize int
	level     int
}

// SplitResult reports what a Split run produced.
type SplitResult struct {
	Chunks int
	Rows   int
}

// NewChunker creates a chunker writing into dir. A non-positive level falls
// back to DefaultCompressionLevel.
func NewChunker(dir, prefix string, chunkSize, level int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if level <= 0 {
		level = DefaultCompressionLevel
	}
	return &Chunker{dir: dir, prefix: prefix, chunkSize: chunkSize, level: level}, nil
}

// Split consumes the dump and writes chunk files. Every input row lands in
// exactly one chunk; the last chunk may be short.
func (c *Chunker) Split(r *DumpReader) (SplitResult, error) {
	var result SplitResult

	batch := make([]models.RawQuote, 0, c.chunkSize)
	batchNo := 1

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		path := filepath.Join(c.dir, fmt.Sprintf("%s-%d.csv.bz2", c.prefix, batchNo))
		if err := writeQuotesFile(path, c.level, batch); err != nil {
			return err
		}
		result.Chunks++
		result.Rows += len(batch)
		batch = batch[:0]
		batchNo++
		return nil
	}

	for {
		q, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, err
		}

		batch = append(batch, q)
		if len(batch) == c.chunkSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}
	return result, nil
}

// writeQuotesFile writes quotes as a bz2-compressed CSV with the standard
// header. The file only appears complete once fully written and closed.
func writeQuotesFile(path string, level int, quotes []models.RawQuote) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: level})
	if err != nil {
		f.Close()
		return fmt.Errorf("open bz2 stream: %w", err)
	}

	cw := csv.NewWriter(bz)

	write := func() error {
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, q := range quotes {
			row, err := encodeRecord(q)
			if err != nil {
				return err
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	if err := write(); err != nil {
		bz.Close()
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := bz.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close bz2 stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
