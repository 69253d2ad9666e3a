package models

import "time"

// RawQuote mirrors a single Quotebank record as it appears in the bz2 JSONL
// dumps and on the ingest topic. Probas carries (speaker, probability) string
// pairs ordered from most to least probable attribution.
type RawQuote struct {
	QuoteID        string     `json:"quoteID"`
	Quotation      string     `json:"quotation"`
	Speaker        string     `json:"speaker"`
	QIDs           []string   `json:"qids"`
	Date           string     `json:"date"`
	NumOccurrences int        `json:"numOccurrences"`
	Probas         [][]string `json:"probas"`
	URLs           []string   `json:"urls"`
	Phase          string     `json:"phase"`
}

// QuoteDocument represents the canonical enriched structure stored in
// Elasticsearch.
type QuoteDocument struct {
	ID                string    `json:"id"`
	Quotation         string    `json:"quotation"`
	Speaker           string    `json:"speaker"`
	Date              time.Time `json:"date"`
	Year              int       `json:"year"`
	NumOccurrences    int       `json:"num_occurrences"`
	Probability       float64   `json:"probability"`
	Sentiment         float64   `json:"sentiment"`
	SentimentCategory int       `json:"sentiment_category"`
	Orgs              []string  `json:"orgs,omitempty"`
	URLs              []string  `json:"urls,omitempty"`
	Phase             string    `json:"phase,omitempty"`
	IngestedAt        time.Time `json:"ingested_at"`
}
