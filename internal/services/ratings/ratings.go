package ratings

import (
	"context"
	"errors"
	"log/slog"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/services/movies"
	"movienight/proj/internal/storage"
)

const (
	MinScore = 0
	MaxScore = 10
)

var ErrScoreOutOfRange = errors.New("score must be between 0 and 10")

type RatingsStorage interface {
	List(ctx context.Context, userID int64) ([]models.Rating, error)
	Upsert(ctx context.Context, userID, movieID int64, score float64) (*models.Rating, error)
	Delete(ctx context.Context, userID, movieID int64) error
}

type RatingService struct {
	log     *slog.Logger
	storage RatingsStorage
}

func New(log *slog.Logger, storage RatingsStorage) *RatingService {
	return &RatingService{
		log:     log,
		storage: storage,
	}
}

func (s *RatingService) List(ctx context.Context, userID int64) ([]models.Rating, error) {
	const op = "ratings.RatingService.List"
	log := s.log.With("op", op, "user_id", userID)
	list, err := s.storage.List(ctx, userID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if list == nil {
		list = []models.Rating{}
	}
	return list, nil
}

// Upsert stores the score for the pair, replacing any previous one.
func (s *RatingService) Upsert(ctx context.Context, userID, movieID int64, score float64) (*models.Rating, error) {
	const op = "ratings.RatingService.Upsert"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID, "score", score)
	if score < MinScore || score > MaxScore {
		return nil, ErrScoreOutOfRange
	}
	rating, err := s.storage.Upsert(ctx, userID, movieID, score)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, movies.ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return rating, nil
}

func (s *RatingService) Delete(ctx context.Context, userID, movieID int64) error {
	const op = "ratings.RatingService.Delete"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	if err := s.storage.Delete(ctx, userID, movieID); err != nil {
		log.Error(err.Error())
		return err
	}
	return nil
}
