package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"far-fetched/internal/adapters/petfinder"
	memsess "far-fetched/internal/adapters/session/memory"
	redissess "far-fetched/internal/adapters/session/redis"
	mem "far-fetched/internal/adapters/storage/memory"
	pg "far-fetched/internal/adapters/storage/postgres"
	"far-fetched/internal/domain/animals"
	"far-fetched/internal/domain/preferences"
	"far-fetched/internal/middleware"
	"far-fetched/internal/platform/env"
	"far-fetched/internal/platform/logger"
	"far-fetched/internal/ports/auth"
	"far-fetched/internal/ports/search"
	"far-fetched/internal/ports/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcionales: si vienen, se usan tal cual. Si no, se resuelven por env
	// (DB_DSN => Postgres, REDIS_ADDR => Redis, API_KEY/SECRET => Petfinder)
	// con fallback in-memory para dev/tests.
	DB       *sql.DB
	Sessions session.Store
	Search   search.Client
	Log      logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // cuida la cuota del upstream
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Use(middleware.VisitorContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Repo de preferencias: Postgres si hay DSN, si no in-memory
	var prefsRepo preferences.Repository

	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := pg.Migrate(ctx, db); err != nil {
			log.Error("preferences schema migration failed", map[string]any{"error": err.Error()})
		}
		cancel()
		prefsRepo = pg.NewPrefsRepo(db)
	} else {
		prefsRepo = mem.NewPrefsRepo()
	}

	// Store de sesión: Redis si hay addr, si no in-memory
	sessions := opts.Sessions
	if sessions == nil {
		if addr := os.Getenv("REDIS_ADDR"); addr != "" {
			sessions = redissess.New(addr, os.Getenv("REDIS_PASSWORD"), env.GetInt("REDIS_DB", 0))
		} else {
			sessions = memsess.New()
		}
	}

	// Cliente de búsqueda: inyectado (tests) o Petfinder por env
	searchClient := opts.Search
	if searchClient == nil {
		searchClient = petfinder.NewFromEnv()
	}

	// Services por módulo
	prefsSvc := preferences.NewService(prefsRepo, sessions, log)
	animalsSvc := animals.NewService(searchClient, prefsSvc, log)

	// Rutas por módulo
	preferences.RegisterRoutes(r, prefsSvc)
	animals.RegisterRoutes(r, animalsSvc)

	return r
}
