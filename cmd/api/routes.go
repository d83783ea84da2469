package main

import (
	"net/http"

	"movienight/proj/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.Http.Response(w, r, nil, "", http.StatusMethodNotAllowed)
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	if app.cfg.Metrics.Enabled {
		router.Use(metrics.Middleware)
	}
	router.Use(app.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)

	router.Get("/", app.root)
	router.Get("/healthcheck", app.healthcheck)
	if app.cfg.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	router.Route("/movies", func(r chi.Router) {
		r.Get("/trending", app.getTrendingMovies)
		r.Get("/popular", app.getPopularMovies)
		r.Get("/search", app.searchMovies)
		r.Get("/{id}", app.getMovie)
	})
	router.Route("/users", func(r chi.Router) {
		r.Post("/register", app.register)
		r.With(app.LoginLimiter()).Post("/login", app.login)
		r.Route("/{user_id}", func(r chi.Router) {
			r.Use(app.requireSelf)
			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", app.listFavorites)
				r.Post("/", app.addFavorite)
				r.Delete("/{movie_id}", app.removeFavorite)
			})
			r.Route("/ratings", func(r chi.Router) {
				r.Get("/", app.listRatings)
				r.Post("/", app.rateMovie)
				r.Delete("/{movie_id}", app.deleteRating)
			})
		})
	})
	return router
}
