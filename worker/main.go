package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/speakerlens/quote-radar/internal/config"
	"github.com/speakerlens/quote-radar/internal/dedupe"
	"github.com/speakerlens/quote-radar/internal/elasticsearch"
	"github.com/speakerlens/quote-radar/internal/logger"
	"github.com/speakerlens/quote-radar/internal/models"
	"github.com/speakerlens/quote-radar/internal/processing"
	"github.com/speakerlens/quote-radar/internal/sentiment"
)

type quoteIndexer interface {
	IndexQuote(ctx context.Context, doc models.QuoteDocument) error
}

// enricher bundles the per-message processing dependencies.
type enricher struct {
	analyzer *sentiment.Analyzer
	orgs     *processing.OrgExtractor
}

func main() {
	log := logger.New("worker").With(slog.String("run_id", uuid.NewString()))
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)
	enr := &enricher{
		analyzer: sentiment.NewAnalyzer(cfg.NegThreshold, cfg.PosThreshold),
		orgs:     processing.NewOrgExtractor(cfg.ExtraOrgs...),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := esClient.EnsureIndex(setupCtx); err != nil {
		cancel()
		log.Error("ensure index", slog.Any("err", err))
		os.Exit(1)
	}
	cancel()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaTopic+"_dlq"),
		slog.Float64("min_probability", cfg.MinProbability),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, cfg, enr, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			// Send to DLQ with error context, retry with backoff
			dlqMsg := kafka.Message{
				Value: msg.Value,
				Headers: append(msg.Headers,
					kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
					kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
					kafka.Header{Key: "error", Value: []byte(err.Error())},
					kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
				),
			}

			// Retry DLQ write with exponential backoff
			dlqSuccess := false
			for attempt := 0; attempt < 5; attempt++ {
				if dlqErr := dlqWriter.WriteMessages(ctx, dlqMsg); dlqErr == nil {
					dlqSuccess = true
					log.Info("message sent to DLQ",
						slog.Int("partition", msg.Partition),
						slog.Int64("offset", msg.Offset),
						slog.Int("attempt", attempt+1),
					)
					break
				} else {
					backoff := time.Duration(1<<uint(attempt)) * time.Second
					log.Warn("DLQ write failed, retrying",
						slog.Any("err", dlqErr),
						slog.Int("attempt", attempt+1),
						slog.Duration("backoff", backoff),
					)
					select {
					case <-time.After(backoff):
						// Continue to next attempt
					case <-ctx.Done():
						log.Info("context canceled during DLQ retry")
						return
					}
				}
			}

			// Only commit if DLQ write succeeded; otherwise skip commit and reprocess on restart
			if dlqSuccess {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			} else {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processMessage(ctx context.Context, log *slog.Logger, indexer quoteIndexer, cache *dedupe.Cache, cfg *config.Worker, enr *enricher, msg kafka.Message) error {
	var raw models.RawQuote
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		return err
	}

	quotation := strings.TrimSpace(raw.Quotation)
	if quotation == "" {
		return errors.New("empty quotation")
	}

	probability := processing.Probability(raw.Probas)
	if probability < cfg.MinProbability {
		log.Debug("attribution below cutoff",
			slog.String("quote_id", raw.QuoteID),
			slog.Float64("probability", probability),
		)
		return nil
	}

	ts := processing.ParseQuoteDate(raw.Date)

	speaker := strings.TrimSpace(raw.Speaker)
	if speaker == "" {
		speaker = "unknown"
	}

	score := enr.analyzer.Score(quotation)

	doc := models.QuoteDocument{
		ID:                strings.TrimSpace(raw.QuoteID),
		Quotation:         quotation,
		Speaker:           speaker,
		Date:              ts,
		Year:              processing.YearOf(ts),
		NumOccurrences:    raw.NumOccurrences,
		Probability:       probability,
		Sentiment:         score,
		SentimentCategory: enr.analyzer.Categorize(score),
		Orgs:              enr.orgs.Extract(quotation),
		URLs:              raw.URLs,
		Phase:             raw.Phase,
		IngestedAt:        time.Now().UTC(),
	}

	if doc.ID == "" {
		doc.ID = processing.BuildQuoteID(quotation, speaker, ts)
	}

	if cache.IsSeen(doc.ID) {
		log.Debug("duplicate quote", slog.String("id", doc.ID))
		return nil
	}

	if err := indexer.IndexQuote(ctx, doc); err != nil {
		return err
	}

	cache.MarkSeen(doc.ID)
	log.Info("indexed quote",
		slog.String("id", doc.ID),
		slog.String("speaker", doc.Speaker),
		slog.Int("orgs", len(doc.Orgs)),
	)
	return nil
}
