package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/mportela/qbnotes/internal/http/auth"
	noteHandler "github.com/mportela/qbnotes/internal/http/note"
	reportHandler "github.com/mportela/qbnotes/internal/http/report"
	scrapeHandler "github.com/mportela/qbnotes/internal/http/scrape"
)

func New(
	notes *noteHandler.Handler,
	reports *reportHandler.Handler,
	scrape *scrapeHandler.Handler,
	auth *authHandler.Handler,
	requireAuth bool,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// The extension calls in from QuickBooks pages and from its own
	// chrome-extension origin; localhost covers popup development.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"https://*.qbo.intuit.com",
			"https://*.intuit.com",
			"chrome-extension://*",
			"http://localhost:5173",
			"http://localhost:3000",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":        true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Route("/notes", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		if requireAuth {
			r.Use(auth.RequireSubscription)
		}
		notes.Routes(r)
	})

	router.Route("/reports", reports.Routes)

	router.Route("/scrape", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		scrape.Routes(r)
	})

	router.Route("/auth", auth.Routes)

	return router
}
