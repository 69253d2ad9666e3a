package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/speakerlens/quote-radar/internal/config"
	"github.com/speakerlens/quote-radar/internal/dedupe"
	"github.com/speakerlens/quote-radar/internal/models"
	"github.com/speakerlens/quote-radar/internal/processing"
	"github.com/speakerlens/quote-radar/internal/sentiment"
)

type stubIndexer struct {
	docs []models.QuoteDocument
}

func (s *stubIndexer) IndexQuote(_ context.Context, doc models.QuoteDocument) error {
	s.docs = append(s.docs, doc)
	return nil
}

func testSetup() (*slog.Logger, *dedupe.Cache, *stubIndexer, *config.Worker, *enricher) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := dedupe.NewCache(100, time.Hour)
	idx := &stubIndexer{}
	cfg := &config.Worker{
		Common: config.Common{
			ElasticsearchAddr:  "http://test",
			ElasticsearchIndex: "quotes",
		},
		MinProbability: 0.5,
		NegThreshold:   sentiment.DefaultNegThreshold,
		PosThreshold:   sentiment.DefaultPosThreshold,
	}
	enr := &enricher{
		analyzer: sentiment.NewAnalyzer(cfg.NegThreshold, cfg.PosThreshold),
		orgs:     processing.NewOrgExtractor(),
	}
	return log, cache, idx, cfg, enr
}

func marshalQuote(t *testing.T, q models.RawQuote) kafka.Message {
	t.Helper()
	data, err := json.Marshal(q)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestProcessMessageIndexesEnrichedQuote(t *testing.T) {
	log, cache, idx, cfg, enr := testSetup()

	msg := marshalQuote(t, models.RawQuote{
		QuoteID:        "2015-07-31-000123",
		Quotation:      "I love the amazing work SpaceX has done",
		Speaker:        "Elon Musk",
		Date:           "2015-07-31 18:30:58",
		NumOccurrences: 4,
		Probas:         [][]string{{"Elon Musk", "0.8971"}},
		URLs:           []string{"http://example.com/article"},
		Phase:          "E",
	})

	require.NoError(t, processMessage(context.Background(), log, idx, cache, cfg, enr, msg))
	require.Len(t, idx.docs, 1)

	doc := idx.docs[0]
	require.Equal(t, "2015-07-31-000123", doc.ID)
	require.Equal(t, "Elon Musk", doc.Speaker)
	require.Equal(t, 2015, doc.Year)
	require.Equal(t, 4, doc.NumOccurrences)
	require.InDelta(t, 0.8971, doc.Probability, 1e-9)
	require.Greater(t, doc.Sentiment, 0.05)
	require.Equal(t, 1, doc.SentimentCategory)
	require.Contains(t, doc.Orgs, "SpaceX")
	require.False(t, doc.IngestedAt.IsZero())

	// The same message again is a duplicate.
	require.NoError(t, processMessage(context.Background(), log, idx, cache, cfg, enr, msg))
	require.Len(t, idx.docs, 1)
}

func TestProcessMessageDropsLowProbability(t *testing.T) {
	log, cache, idx, cfg, enr := testSetup()

	msg := marshalQuote(t, models.RawQuote{
		QuoteID:   "2015-07-31-000124",
		Quotation: "something barely attributed",
		Speaker:   "Elon Musk",
		Probas:    [][]string{{"Elon Musk", "0.31"}},
	})

	require.NoError(t, processMessage(context.Background(), log, idx, cache, cfg, enr, msg))
	require.Empty(t, idx.docs)
}

func TestProcessMessageRejectsEmptyQuotation(t *testing.T) {
	log, cache, idx, cfg, enr := testSetup()

	msg := marshalQuote(t, models.RawQuote{
		QuoteID: "2015-07-31-000125",
		Speaker: "Elon Musk",
		Probas:  [][]string{{"Elon Musk", "0.9"}},
	})

	require.Error(t, processMessage(context.Background(), log, idx, cache, cfg, enr, msg))
	require.Empty(t, idx.docs)
}

func TestProcessMessageBuildsIDWhenMissing(t *testing.T) {
	log, cache, idx, cfg, enr := testSetup()

	raw := models.RawQuote{
		Quotation: "a quotation without an identifier",
		Speaker:   "Elon Musk",
		Date:      "2016-02-03 04:05:06",
		Probas:    [][]string{{"Elon Musk", "0.9"}},
	}

	require.NoError(t, processMessage(context.Background(), log, idx, cache, cfg, enr, marshalQuote(t, raw)))
	require.Len(t, idx.docs, 1)

	// A record that passed the empty-quotation check always hashes to a
	// stable 40-char ID; there is no random fallback.
	want := processing.BuildQuoteID(raw.Quotation, raw.Speaker, processing.ParseQuoteDate(raw.Date))
	require.Equal(t, want, idx.docs[0].ID)
	require.Len(t, idx.docs[0].ID, 40)

	// Identical content re-derives the identical ID, so the dedupe cache
	// catches replays of ID-less records too.
	require.NoError(t, processMessage(context.Background(), log, idx, cache, cfg, enr, marshalQuote(t, raw)))
	require.Len(t, idx.docs, 1)
}

func TestProcessMessageKeepsUnparseableDate(t *testing.T) {
	log, cache, idx, cfg, enr := testSetup()

	msg := marshalQuote(t, models.RawQuote{
		QuoteID:   "2015-07-31-000126",
		Quotation: "a quotation with a broken date",
		Speaker:   "Elon Musk",
		Date:      "sometime in July",
		Probas:    [][]string{{"Elon Musk", "0.9"}},
	})

	require.NoError(t, processMessage(context.Background(), log, idx, cache, cfg, enr, msg))
	require.Len(t, idx.docs, 1)
	require.Equal(t, 0, idx.docs[0].Year)
	require.True(t, idx.docs[0].Date.IsZero())
}
