package favorites

import (
	"context"
	"errors"
	"log/slog"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/services/movies"
	"movienight/proj/internal/storage"
)

type FavoritesStorage interface {
	ListMovies(ctx context.Context, userID int64) ([]models.Movie, error)
	Add(ctx context.Context, userID, movieID int64) (*models.Favorite, error)
	Remove(ctx context.Context, userID, movieID int64) error
}

type FavoriteService struct {
	log     *slog.Logger
	storage FavoritesStorage
}

func New(log *slog.Logger, storage FavoritesStorage) *FavoriteService {
	return &FavoriteService{
		log:     log,
		storage: storage,
	}
}

// List returns the favorited movies. A user without favorites, or one that does not exist,
// gets an empty list rather than an error.
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]models.Movie, error) {
	const op = "favorites.FavoriteService.List"
	log := s.log.With("op", op, "user_id", userID)
	list, err := s.storage.ListMovies(ctx, userID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if list == nil {
		list = []models.Movie{}
	}
	return list, nil
}

// Add is idempotent: adding the same pair again returns the stored favorite.
func (s *FavoriteService) Add(ctx context.Context, userID, movieID int64) (*models.Favorite, error) {
	const op = "favorites.FavoriteService.Add"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	favorite, err := s.storage.Add(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, movies.ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return favorite, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, movieID int64) error {
	const op = "favorites.FavoriteService.Remove"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	if err := s.storage.Remove(ctx, userID, movieID); err != nil {
		log.Error(err.Error())
		return err
	}
	return nil
}
