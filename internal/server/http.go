package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examforge/examsim/internal/config"
	"github.com/examforge/examsim/internal/exam"
	"github.com/examforge/examsim/internal/logging"
)

// NewHTTPServer wires the exam API routes plus health and metrics.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, examHandlers *exam.HTTPHandlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Exam simulation endpoints
	mux.HandleFunc("GET /v1/exam-types", examHandlers.ListExamTypes)
	mux.HandleFunc("POST /v1/exams", examHandlers.StartExam)
	mux.HandleFunc("POST /v1/exams/{id}/answers", examHandlers.SubmitAnswer)
	mux.HandleFunc("PUT /v1/exams/{id}/flags/{index}", examHandlers.Flag)
	mux.HandleFunc("DELETE /v1/exams/{id}/flags/{index}", examHandlers.Unflag)
	mux.HandleFunc("GET /v1/exams/{id}/time", examHandlers.Time)
	mux.HandleFunc("POST /v1/exams/{id}/timeout-check", examHandlers.CheckTimeout)
	mux.HandleFunc("GET /v1/exams/{id}/summary", examHandlers.Summary)
	mux.HandleFunc("GET /v1/exams/{id}/results", examHandlers.Results)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if pool != nil {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}
	}
	if redis != nil {
		if err := redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	return nil
}
