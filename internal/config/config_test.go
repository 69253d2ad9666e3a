package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/speakerlens/quote-radar/internal/config"
)

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")
	t.Setenv("WORKER_MIN_PROBABILITY", "")
	t.Setenv("WORKER_ORG_LEXICON", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "quotes", cfg.ElasticsearchIndex)
	require.Len(t, cfg.KafkaBrokers, 1)
	require.Equal(t, "kafka:9092", cfg.KafkaBrokers[0])
	require.Equal(t, "quotes_raw", cfg.KafkaTopic)
	require.Equal(t, "quote-worker", cfg.KafkaConsumer)
	require.InDelta(t, 0.5, cfg.MinProbability, 1e-9)
	require.InDelta(t, -0.05, cfg.NegThreshold, 1e-9)
	require.InDelta(t, 0.05, cfg.PosThreshold, 1e-9)
	require.Nil(t, cfg.ExtraOrgs)
	require.Equal(t, 24*time.Hour, cfg.DedupeTTL)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("WORKER_MIN_PROBABILITY", "0.8")
	t.Setenv("WORKER_ORG_LEXICON", "Gigafactory Berlin, Starlink ")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.InDelta(t, 0.8, cfg.MinProbability, 1e-9)
	require.Equal(t, []string{"Gigafactory Berlin", "Starlink"}, cfg.ExtraOrgs)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadWorkerRejectsBadValues(t *testing.T) {
	t.Setenv("WORKER_MIN_PROBABILITY", "1.5")
	_, err := config.LoadWorker()
	require.Error(t, err)

	t.Setenv("WORKER_MIN_PROBABILITY", "0.5")
	t.Setenv("WORKER_NEG_THRESHOLD", "0.2")
	t.Setenv("WORKER_POS_THRESHOLD", "0.1")
	_, err = config.LoadWorker()
	require.Error(t, err)
}

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("API_BIND_ADDR", "")
	t.Setenv("API_PAGE_SIZE", "")
	t.Setenv("API_MAX_PAGE_SIZE", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, 20, cfg.DefaultPage)
	require.Equal(t, 100, cfg.MaxPage)
}

func TestLoadAPIPageBounds(t *testing.T) {
	t.Setenv("API_PAGE_SIZE", "200")
	t.Setenv("API_MAX_PAGE_SIZE", "100")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadRetentionDefaults(t *testing.T) {
	t.Setenv("RETENTION_INTERVAL", "")
	t.Setenv("RETENTION_MAX_AGE", "")
	t.Setenv("RETENTION_BATCH_SIZE", "")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.Interval)
	require.Equal(t, 2160*time.Hour, cfg.MaxAge)
	require.Equal(t, 500, cfg.BatchSize)
}
