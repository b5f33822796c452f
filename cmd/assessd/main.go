package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/brightfold/readiness/internal/api/http"
	"github.com/brightfold/readiness/internal/assessment"
	"github.com/brightfold/readiness/internal/audit"
	"github.com/brightfold/readiness/internal/catalog"
	"github.com/brightfold/readiness/internal/config"
	"github.com/brightfold/readiness/internal/db"
	"github.com/brightfold/readiness/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.FromEnv()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog load failed: %v", err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := assessment.NewSQLStore(dbh, cfg.DBDriver)

	cache, err := storage.NewFSCache(cfg.CacheDir)
	if err != nil {
		log.Fatalf("snapshot cache: %v", err)
	}

	engine := assessment.NewEngine(cat, cache, store,
		[]assessment.ManagerOpt{assessment.WithEvents(audit.NewEventRepo(dbh))},
		assessment.WithDebounce(cfg.AutosaveDelay),
		assessment.WithRecoveryWindow(cfg.RecoveryWindow),
	)
	defer engine.Close()
	mgr := engine.Manager

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/catalog", api.GetCatalogHandler(cat))

	r.Route("/assessments", func(ar chi.Router) {
		ar.Post("/", api.CreateAssessmentHandler(mgr))
		ar.Get("/", api.ListAssessmentsHandler(mgr))
		ar.Route("/{assessmentID}", func(sr chi.Router) {
			sr.Get("/", api.GetAssessmentHandler(mgr))
			sr.Get("/form", api.LoadFormDataHandler(mgr))
			sr.Put("/form", api.SaveFormDataHandler(mgr))
			sr.Post("/responses", api.SaveResponseHandler(mgr))
			sr.Post("/complete", api.CompleteAssessmentHandler(mgr))
			sr.Post("/abandon", api.AbandonAssessmentHandler(mgr))
			sr.Get("/stats", api.GetStatsHandler(mgr, cat))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
