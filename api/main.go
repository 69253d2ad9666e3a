package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/speakerlens/quote-radar/internal/config"
	"github.com/speakerlens/quote-radar/internal/elasticsearch"
	"github.com/speakerlens/quote-radar/internal/logger"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &server{log: log, cfg: cfg, es: esClient}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/quotes", srv.handleSearch)
	r.Get("/orgs/{org}/mentions", srv.handleOrgMentions)
	r.Get("/speakers/{speaker}/sentiment", srv.handleSpeakerSentiment)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log *slog.Logger
	cfg *config.API
	es  *elasticsearch.Client
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.es.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()

	category, err := parseCategory(q.Get("category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	params := elasticsearch.SearchParams{
		Query:          strings.TrimSpace(q.Get("q")),
		Speaker:        strings.TrimSpace(q.Get("speaker")),
		Org:            strings.TrimSpace(q.Get("org")),
		Year:           parseIntOrZero(q.Get("year")),
		Category:       category,
		MinProbability: parseFloatOrZero(q.Get("min_probability")),
		From:           clampInt(q.Get("from"), 0, 10_000),
		Size:           clampInt(q.Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Sort:           strings.TrimSpace(q.Get("sort")),
	}

	if start := parseTime(q.Get("start")); start != nil {
		params.Start = start
	}
	if end := parseTime(q.Get("end")); end != nil {
		params.End = end
	}

	result, err := s.es.SearchQuotes(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleOrgMentions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	org := strings.TrimSpace(chi.URLParam(r, "org"))
	if org == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "org is required"})
		return
	}

	counts, err := s.es.OrgMentionsByYear(ctx, org)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"org":      org,
		"mentions": counts,
	})
}

func (s *server) handleSpeakerSentiment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	speaker := strings.TrimSpace(chi.URLParam(r, "speaker"))
	if speaker == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "speaker is required"})
		return
	}

	summary, err := s.es.SpeakerSentiment(ctx, speaker, parseIntOrZero(r.URL.Query().Get("year")))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// parseCategory distinguishes "no filter" (empty) from the legitimate
// neutral category 0.
func parseCategory(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < -1 || value > 1 {
		return nil, errors.New("category must be -1, 0 or 1")
	}
	return &value, nil
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts
	}
	return nil
}

func parseIntOrZero(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return value
}

func parseFloatOrZero(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
