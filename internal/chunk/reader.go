package chunk

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"

	"github.com/speakerlens/quote-radar/internal/models"
)

// Quotebank lines can run long; 16 MiB covers the worst observed records.
const maxLineBytes = 16 << 20

// DumpReader streams RawQuote records out of a bz2-compressed JSONL dump.
type DumpReader struct {
	f       *os.File
	bz      *bzip2.Reader
	scanner *bufio.Scanner
}

// OpenDump opens a Quotebank dump for streaming.
func OpenDump(path string) (*DumpReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open bz2 stream: %w", err)
	}

	scanner := bufio.NewScanner(bz)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	return &DumpReader{f: f, bz: bz, scanner: scanner}, nil
}

// Next returns the next record, or io.EOF after the last one. Blank lines
// are skipped; a malformed line is an error.
func (r *DumpReader) Next() (models.RawQuote, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var q models.RawQuote
		if err := json.Unmarshal(line, &q); err != nil {
			return models.RawQuote{}, fmt.Errorf("decode record: %w", err)
		}
		return q, nil
	}

	if err := r.scanner.Err(); err != nil {
		return models.RawQuote{}, fmt.Errorf("read dump: %w", err)
	}
	return models.RawQuote{}, io.EOF
}

// Close releases the underlying file.
func (r *DumpReader) Close() error {
	if err := r.bz.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// ReadQuotesFile loads a whole bz2-compressed CSV quote file, such as a
// chunk or a per-speaker extract.
func ReadQuotesFile(path string) ([]models.RawQuote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, fmt.Errorf("open bz2 stream: %w", err)
	}
	defer bz.Close()

	cr := csv.NewReader(bz)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || header[0] != csvHeader[0] {
		return nil, fmt.Errorf("%s: unexpected header", path)
	}

	var quotes []models.RawQuote
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		q, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		quotes = append(quotes, q)
	}

	return quotes, nil
}
