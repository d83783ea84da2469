package services

import (
	"log/slog"

	"movienight/proj/internal/config"
	"movienight/proj/internal/services/auth"
	"movienight/proj/internal/services/favorites"
	"movienight/proj/internal/services/movies"
	"movienight/proj/internal/services/ratings"
)

type Services struct {
	Auth      *auth.AuthService
	Movies    *movies.MovieService
	Favorites *favorites.FavoriteService
	Ratings   *ratings.RatingService
}

// Storages is satisfied by both the Postgres and the in-memory models.
type Storages struct {
	Users     auth.UsersStorage
	Movies    movies.MoviesStorage
	Favorites favorites.FavoritesStorage
	Ratings   ratings.RatingsStorage
}

// Deps groups the optional collaborators. A nil Cache disables trending caching,
// a nil Mailer or Tasks disables welcome emails.
type Deps struct {
	Cache  movies.TrendingCache
	Mailer auth.MailProvider
	Tasks  auth.TaskExecutor
}

func New(log *slog.Logger, cfg *config.Config, storages Storages, deps Deps) *Services {
	tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.AccessTokenTTL)
	return &Services{
		Auth:      auth.New(log, storages.Users, tokens, cfg.Auth.BcryptCost, deps.Mailer, deps.Tasks),
		Movies:    movies.New(log, storages.Movies, deps.Cache, cfg.Pagination.MaxLimit),
		Favorites: favorites.New(log, storages.Favorites),
		Ratings:   ratings.New(log, storages.Ratings),
	}
}
