// Package chunk reads and writes the bz2-compressed quote files the batch
// tools exchange: raw JSONL dumps in, fixed-size CSV chunks and per-speaker
// CSV extracts out.
package chunk

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/speakerlens/quote-radar/internal/models"
)

// Column order is stable; list-valued cells are JSON-encoded.
var csvHeader = []string{
	"quoteID", "quotation", "speaker", "qids", "date",
	"numOccurrences", "probas", "urls", "phase",
}

func encodeRecord(q models.RawQuote) ([]string, error) {
	qids, err := json.Marshal(q.QIDs)
	if err != nil {
		return nil, fmt.Errorf("encode qids: %w", err)
	}
	probas, err := json.Marshal(q.Probas)
	if err != nil {
		return nil, fmt.Errorf("encode probas: %w", err)
	}
	urls, err := json.Marshal(q.URLs)
	if err != nil {
		return nil, fmt.Errorf("encode urls: %w", err)
	}

	return []string{
		q.QuoteID,
		q.Quotation,
		q.Speaker,
		string(qids),
		q.Date,
		strconv.Itoa(q.NumOccurrences),
		string(probas),
		string(urls),
		q.Phase,
	}, nil
}

func decodeRecord(row []string) (models.RawQuote, error) {
	if len(row) != len(csvHeader) {
		return models.RawQuote{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}

	q := models.RawQuote{
		QuoteID:   row[0],
		Quotation: row[1],
		Speaker:   row[2],
		Date:      row[4],
		Phase:     row[8],
	}

	if row[3] != "" {
		if err := json.Unmarshal([]byte(row[3]), &q.QIDs); err != nil {
			return models.RawQuote{}, fmt.Errorf("decode qids: %w", err)
		}
	}
	if row[5] != "" {
		n, err := strconv.Atoi(row[5])
		if err != nil {
			return models.RawQuote{}, fmt.Errorf("decode numOccurrences: %w", err)
		}
		q.NumOccurrences = n
	}
	if row[6] != "" {
		if err := json.Unmarshal([]byte(row[6]), &q.Probas); err != nil {
			return models.RawQuote{}, fmt.Errorf("decode probas: %w", err)
		}
	}
	if row[7] != "" {
		if err := json.Unmarshal([]byte(row[7]), &q.URLs); err != nil {
			return models.RawQuote{}, fmt.Errorf("decode urls: %w", err)
		}
	}

	return q, nil
}
