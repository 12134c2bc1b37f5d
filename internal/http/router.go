package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pocketly/internal/http/category"
	"github.com/MrJamesThe3rd/pocketly/internal/http/entry"
	"github.com/MrJamesThe3rd/pocketly/internal/http/export"
	"github.com/MrJamesThe3rd/pocketly/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pocketly/internal/http/insights"
	"github.com/MrJamesThe3rd/pocketly/internal/http/need"
	"github.com/MrJamesThe3rd/pocketly/internal/http/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/http/pocket"
	"github.com/MrJamesThe3rd/pocketly/internal/http/streak"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// Authenticate rejects calls without a valid caller identity.
	Authenticate func(http.Handler) http.Handler
}

type Handlers struct {
	Pockets       *pocket.Handler
	Expenses      *entry.Handler
	Income        *entry.Handler
	Activity      http.HandlerFunc
	Import        *importcsv.Handler
	Export        *export.Handler
	Needs         *need.Handler
	Notifications *notification.Handler
	Streak        *streak.Handler
	Insights      *insights.Handler
	Categories    *category.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(opts.Authenticate)

		r.Route("/pockets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Pockets.Routes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Expenses.Routes(r)
		})

		r.Route("/income", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Income.Routes(r)
		})

		r.Get("/activity", h.Activity)
		r.Route("/import", h.Import.Routes)
		r.Route("/export", h.Export.Routes)

		r.Route("/needs", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Needs.Routes(r)
		})

		r.Route("/notifications", h.Notifications.Routes)
		r.Route("/streak", h.Streak.Routes)
		r.Route("/insights", h.Insights.Routes)
		r.Route("/categories", h.Categories.Routes)
	})

	return router
}
