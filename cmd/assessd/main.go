package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/prepdesk/assessment-engine/internal/api/http"
	"github.com/prepdesk/assessment-engine/internal/assess"
	"github.com/prepdesk/assessment-engine/internal/bank"
	"github.com/prepdesk/assessment-engine/internal/config"
	"github.com/prepdesk/assessment-engine/internal/db"
	"github.com/prepdesk/assessment-engine/internal/embedding"
	"github.com/prepdesk/assessment-engine/internal/scoring"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- Question bank ---
	qb, err := bank.Load(cfg.QuestionBankPath)
	if err != nil {
		log.Fatalf("question bank load failed: %v", err)
	}

	// --- Progress store ---
	var store assess.Store
	switch cfg.ProgressStore {
	case "sql":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		store = assess.NewSQLStore(dbh)
	default:
		store = assess.NewMemoryStore()
	}

	// --- Embedding provider + reference vectors ---
	provider, err := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.EmbedModel,
		BaseURL: cfg.EmbedBaseURL,
	})
	if err != nil {
		log.Fatalf("embedding provider: %v", err)
	}
	embedder := embedding.WithRetry(provider, cfg.EmbedRetries)

	precomputeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cache, err := embedding.NewCache(precomputeCtx, embedder, qb)
	if err != nil {
		log.Fatalf("embedding precompute failed: %v", err)
	}

	evaluator := scoring.NewEvaluator(qb, embedder, cache)
	svc := assess.NewService(qb, store, evaluator, cfg.EmbedTimeout)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/sections", api.SectionsHandler(qb))
	r.Post("/start_assessment", api.StartAssessmentHandler(svc))
	r.Post("/get_question", api.GetQuestionHandler(svc))
	r.Post("/submit_answer", api.SubmitAnswerHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (store=%s, sections=%d)", cfg.HTTPAddr, cfg.ProgressStore, qb.NumSections())
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
