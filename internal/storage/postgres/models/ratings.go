package models

import (
	"context"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingModel struct {
	DB *pgxpool.Pool
}

func (m *RatingModel) List(ctx context.Context, userID int64) ([]models.Rating, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT id, user_id, movie_id, score FROM ratings WHERE user_id = $1 ORDER BY id",
		userID,
	)
	ratings, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Rating])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return ratings, nil
}

// Upsert keeps a single row per (user, movie); resubmitting replaces the score in place.
// An unknown movie surfaces as storage.ErrNotFound through the foreign key.
func (m *RatingModel) Upsert(ctx context.Context, userID, movieID int64, score float64) (*models.Rating, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO ratings (user_id, movie_id, score) VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT ratings_user_movie_key DO UPDATE SET score = EXCLUDED.score
		RETURNING id, user_id, movie_id, score`,
		userID,
		movieID,
		score,
	)
	rating, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Rating])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &rating, nil
}

func (m *RatingModel) Delete(ctx context.Context, userID, movieID int64) error {
	_, err := m.DB.Exec(ctx, "DELETE FROM ratings WHERE user_id = $1 AND movie_id = $2", userID, movieID)
	return postgres.MapError(err)
}
