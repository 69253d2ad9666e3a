package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/speakerlens/quote-radar/internal/models"
)

// Client wraps go-elasticsearch with helpers tailored to the quote index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// SearchParams narrow the quote search. Category is a pointer so that the
// legitimate category 0 (neutral) is distinguishable from "not filtered".
type SearchParams struct {
	Query          string
	Speaker        string
	Org            string
	Year           int
	Category       *int
	MinProbability float64
	From           int
	Size           int
	Sort           string
	Start          *time.Time
	End            *time.Time
}

// SearchResult bundles hits and total count.
type SearchResult struct {
	Total int64
	Items []models.QuoteDocument
}

// YearCount is one bucket of a per-year aggregation.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// SentimentSummary aggregates a speaker's quote polarity.
type SentimentSummary struct {
	Speaker       string  `json:"speaker"`
	Quotes        int64   `json:"quotes"`
	MeanSentiment float64 `json:"mean_sentiment"`
	Negative      int64   `json:"negative"`
	Neutral       int64   `json:"neutral"`
	Positive      int64   `json:"positive"`
}

// quoteMapping keeps the filterable fields as keywords and the quotation
// itself full-text searchable.
const quoteMapping = `{
  "mappings": {
    "properties": {
      "quotation":          {"type": "text"},
      "speaker":            {"type": "keyword"},
      "orgs":               {"type": "keyword"},
      "phase":              {"type": "keyword"},
      "year":               {"type": "integer"},
      "num_occurrences":    {"type": "integer"},
      "sentiment_category": {"type": "integer"},
      "probability":        {"type": "float"},
      "sentiment":          {"type": "float"},
      "date":               {"type": "date"},
      "ingested_at":        {"type": "date"},
      "urls":               {"type": "keyword", "index": false}
    }
  }
}`

// New instantiates the Elasticsearch client.
func New(addr, index string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// EnsureIndex creates the quote index with its mapping unless it already
// exists.
func (c *Client) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{c.index}}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	exists.Body.Close()

	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: c.index,
		Body:  strings.NewReader(quoteMapping),
	}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		// A concurrent worker may have won the race; that is fine.
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index failed: %s", strings.TrimSpace(string(body)))
	}

	c.log.Info("created index", slog.String("index", c.index))
	return nil
}

// IndexQuote writes a quote document into Elasticsearch.
func (c *Client) IndexQuote(ctx context.Context, doc models.QuoteDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}

	return nil
}

// SearchQuotes executes a bool query with optional filters.
func (c *Client) SearchQuotes(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Size <= 0 {
		params.Size = 20
	}
	if params.Size > 200 {
		params.Size = 200
	}
	if params.From < 0 {
		params.From = 0
	}

	must := make([]map[string]any, 0, 1)
	filters := make([]map[string]any, 0, 6)

	if params.Query != "" {
		must = append(must, map[string]any{
			"match": map[string]any{
				"quotation": params.Query,
			},
		})
	}

	if params.Speaker != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"speaker": params.Speaker},
		})
	}

	if params.Org != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"orgs": params.Org},
		})
	}

	if params.Year != 0 {
		filters = append(filters, map[string]any{
			"term": map[string]any{"year": params.Year},
		})
	}

	if params.Category != nil {
		filters = append(filters, map[string]any{
			"term": map[string]any{"sentiment_category": *params.Category},
		})
	}

	if params.MinProbability > 0 {
		filters = append(filters, map[string]any{
			"range": map[string]any{
				"probability": map[string]any{"gte": params.MinProbability},
			},
		})
	}

	if params.Start != nil || params.End != nil {
		rangeQuery := map[string]any{}
		if params.Start != nil {
			rangeQuery["gte"] = params.Start.UTC().Format(time.RFC3339)
		}
		if params.End != nil {
			rangeQuery["lte"] = params.End.UTC().Format(time.RFC3339)
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"date": rangeQuery},
		})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	if len(must) == 0 && len(filters) == 0 {
		boolQuery["must"] = []map[string]any{
			{"match_all": map[string]any{}},
		}
	}

	body := map[string]any{
		"from":             params.From,
		"size":             params.Size,
		"track_total_hits": true,
		"query": map[string]any{
			"bool": boolQuery,
		},
	}

	sortField := params.Sort
	if sortField == "" {
		sortField = "date:desc"
	}

	parts := strings.Split(sortField, ":")
	order := "desc"
	field := parts[0]
	if field == "" {
		field = "date"
	}
	if len(parts) > 1 && parts[1] != "" {
		order = parts[1]
	}
	body["sort"] = []map[string]any{
		{field: map[string]any{"order": order}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.QuoteDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.QuoteDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}

	return &SearchResult{
		Total: parsed.Hits.Total.Value,
		Items: items,
	}, nil
}

// OrgMentionsByYear counts how often an organization is mentioned per year.
// Documents without a parseable date (year 0) are skipped.
func (c *Client) OrgMentionsByYear(ctx context.Context, org string) ([]YearCount, error) {
	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"orgs": org}},
				},
				"must_not": []map[string]any{
					{"term": map[string]any{"year": 0}},
				},
			},
		},
		"aggs": map[string]any{
			"per_year": map[string]any{
				"terms": map[string]any{
					"field": "year",
					"size":  100,
					"order": map[string]any{"_key": "asc"},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal aggregation body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate mentions: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("aggregate mentions failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Aggregations struct {
			PerYear struct {
				Buckets []struct {
					Key      int   `json:"key"`
					DocCount int64 `json:"doc_count"`
				} `json:"buckets"`
			} `json:"per_year"`
		} `json:"aggregations"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode aggregation response: %w", err)
	}

	counts := make([]YearCount, 0, len(parsed.Aggregations.PerYear.Buckets))
	for _, b := range parsed.Aggregations.PerYear.Buckets {
		counts = append(counts, YearCount{Year: b.Key, Count: b.DocCount})
	}

	return counts, nil
}

// SpeakerSentiment summarizes a speaker's polarity: mean compound score plus
// per-category counts. A year of 0 means all years.
func (c *Client) SpeakerSentiment(ctx context.Context, speaker string, year int) (*SentimentSummary, error) {
	filters := []map[string]any{
		{"term": map[string]any{"speaker": speaker}},
	}
	if year != 0 {
		filters = append(filters, map[string]any{
			"term": map[string]any{"year": year},
		})
	}

	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{"filter": filters},
		},
		"aggs": map[string]any{
			"mean_sentiment": map[string]any{
				"avg": map[string]any{"field": "sentiment"},
			},
			"categories": map[string]any{
				"terms": map[string]any{"field": "sentiment_category", "size": 3},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal sentiment body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate sentiment: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("aggregate sentiment failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations struct {
			MeanSentiment struct {
				Value *float64 `json:"value"`
			} `json:"mean_sentiment"`
			Categories struct {
				Buckets []struct {
					Key      int   `json:"key"`
					DocCount int64 `json:"doc_count"`
				} `json:"buckets"`
			} `json:"categories"`
		} `json:"aggregations"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode sentiment response: %w", err)
	}

	summary := &SentimentSummary{
		Speaker: speaker,
		Quotes:  parsed.Hits.Total.Value,
	}
	if parsed.Aggregations.MeanSentiment.Value != nil {
		summary.MeanSentiment = *parsed.Aggregations.MeanSentiment.Value
	}
	for _, b := range parsed.Aggregations.Categories.Buckets {
		switch b.Key {
		case -1:
			summary.Negative = b.DocCount
		case 0:
			summary.Neutral = b.DocCount
		case 1:
			summary.Positive = b.DocCount
		}
	}

	return summary, nil
}

// DeleteOlderThan removes documents ingested earlier than maxAge ago using
// batched delete-by-query. It loops until a batch deletes fewer documents
// than the requested batchSize.
func (c *Client) DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)
	totalDeleted := int64(0)

	for {
		body := map[string]any{
			"query": map[string]any{
				"range": map[string]any{
					"ingested_at": map[string]any{
						"lte": cutoff,
					},
				},
			},
		}

		payload, err := json.Marshal(body)
		if err != nil {
			return totalDeleted, fmt.Errorf("marshal delete body: %w", err)
		}

		res, err := c.es.DeleteByQuery(
			[]string{c.index},
			bytes.NewReader(payload),
			c.es.DeleteByQuery.WithContext(ctx),
			c.es.DeleteByQuery.WithWaitForCompletion(true),
			c.es.DeleteByQuery.WithConflicts("proceed"),
			c.es.DeleteByQuery.WithScrollSize(batchSize),
		)
		if err != nil {
			return totalDeleted, fmt.Errorf("delete by query: %w", err)
		}

		if res.IsError() {
			data, _ := io.ReadAll(res.Body)
			res.Body.Close()
			return totalDeleted, fmt.Errorf("delete by query failed: %s", strings.TrimSpace(string(data)))
		}

		var parsed struct {
			Deleted int64 `json:"deleted"`
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			res.Body.Close()
			return totalDeleted, fmt.Errorf("decode delete response: %w", err)
		}
		res.Body.Close()

		totalDeleted += parsed.Deleted

		if parsed.Deleted < int64(batchSize) {
			break
		}
	}

	return totalDeleted, nil
}

// Health pings Elasticsearch to ensure connectivity.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}
