package movies

import (
	"context"
	"errors"
	"log/slog"

	"movienight/proj/internal/domain/filters"
	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/metrics"
	"movienight/proj/internal/storage"
)

type MoviesStorage interface {
	Get(ctx context.Context, id int64) (*models.Movie, error)
	Upsert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	ListByPopularity(ctx context.Context, offset, limit int) ([]models.Movie, error)
	SearchByTitle(ctx context.Context, query string) ([]models.Movie, error)
}

type TrendingCache interface {
	GetTrending(ctx context.Context) ([]models.Movie, bool, error)
	SetTrending(ctx context.Context, movies []models.Movie) error
	InvalidateTrending(ctx context.Context) error
}

type MovieService struct {
	log      *slog.Logger
	storage  MoviesStorage
	cache    TrendingCache
	maxLimit int
}

// New builds the catalog service. cache may be nil, maxLimit <= 0 falls back to filters.MaxLimit.
func New(log *slog.Logger, storage MoviesStorage, cache TrendingCache, maxLimit int) *MovieService {
	if maxLimit <= 0 {
		maxLimit = filters.MaxLimit
	}
	return &MovieService{
		log:      log,
		storage:  storage,
		cache:    cache,
		maxLimit: maxLimit,
	}
}

func (s *MovieService) MaxLimit() int {
	return s.maxLimit
}

func (s *MovieService) Get(ctx context.Context, id int64) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "id", id)
	movie, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}

// Upsert replaces every attribute of an existing movie, it never merges fields.
func (s *MovieService) Upsert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	const op = "movies.MovieService.Upsert"
	log := s.log.With("op", op, "id", movie.ID, "title", movie.Title)
	saved, err := s.storage.Upsert(ctx, movie)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateTrending(ctx); err != nil {
			log.Warn("failed to invalidate trending cache", "errMsg", err.Error())
		}
	}
	return saved, nil
}

func (s *MovieService) Trending(ctx context.Context) ([]models.Movie, error) {
	const op = "movies.MovieService.Trending"
	log := s.log.With("op", op)
	if s.cache != nil {
		cached, ok, err := s.cache.GetTrending(ctx)
		switch {
		case err != nil:
			metrics.RecordTrendingCache("error")
			log.Warn("trending cache unavailable", "errMsg", err.Error())
		case ok:
			metrics.RecordTrendingCache("hit")
			return cached, nil
		default:
			metrics.RecordTrendingCache("miss")
		}
	}
	movies, err := s.storage.ListByPopularity(ctx, 0, filters.TrendingSize)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	movies = nonNil(movies)
	if s.cache != nil {
		if err := s.cache.SetTrending(ctx, movies); err != nil {
			log.Warn("failed to fill trending cache", "errMsg", err.Error())
		}
	}
	return movies, nil
}

func (s *MovieService) Popular(ctx context.Context, page filters.Pagination) ([]models.Movie, error) {
	const op = "movies.MovieService.Popular"
	log := s.log.With("op", op, "skip", page.Skip, "limit", page.Limit)
	movies, err := s.storage.ListByPopularity(ctx, page.Offset(), page.LimitOrMax(s.maxLimit))
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return nonNil(movies), nil
}

func (s *MovieService) Search(ctx context.Context, query string) ([]models.Movie, error) {
	const op = "movies.MovieService.Search"
	log := s.log.With("op", op, "query", query)
	movies, err := s.storage.SearchByTitle(ctx, query)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return nonNil(movies), nil
}

func nonNil(movies []models.Movie) []models.Movie {
	if movies == nil {
		return []models.Movie{}
	}
	return movies
}
