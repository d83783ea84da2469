package models

import (
	"context"
	"errors"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/storage"
	"movienight/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteModel struct {
	DB *pgxpool.Pool
}

func (m *FavoriteModel) ListMovies(ctx context.Context, userID int64) ([]models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT m.id, m.title, m.overview, m.poster_path, m.backdrop_path, m.release_date,
			m.vote_average, m.vote_count, m.popularity
		FROM favorites f
		JOIN movies m ON m.id = f.movie_id
		WHERE f.user_id = $1
		ORDER BY f.id`,
		userID,
	)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return movies, nil
}

// Add stores the (user, movie) pair at most once. A concurrent duplicate insert is absorbed by
// the favorites_user_movie_key constraint and the existing row is returned instead.
func (m *FavoriteModel) Add(ctx context.Context, userID, movieID int64) (*models.Favorite, error) {
	var favorite models.Favorite
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM movies WHERE id = $1)", movieID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}
		rows, _ := tx.Query(
			ctx,
			`INSERT INTO favorites (user_id, movie_id) VALUES ($1, $2)
			ON CONFLICT ON CONSTRAINT favorites_user_movie_key DO NOTHING
			RETURNING id, user_id, movie_id`,
			userID,
			movieID,
		)
		inserted, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Favorite])
		if err == nil {
			favorite = inserted
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		rows, _ = tx.Query(
			ctx,
			"SELECT id, user_id, movie_id FROM favorites WHERE user_id = $1 AND movie_id = $2",
			userID,
			movieID,
		)
		favorite, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Favorite])
		return err
	})
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &favorite, nil
}

func (m *FavoriteModel) Remove(ctx context.Context, userID, movieID int64) error {
	_, err := m.DB.Exec(ctx, "DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2", userID, movieID)
	return postgres.MapError(err)
}

func (m *FavoriteModel) Count(ctx context.Context, userID, movieID int64) (int, error) {
	var count int
	err := m.DB.QueryRow(
		ctx,
		"SELECT count(*) FROM favorites WHERE user_id = $1 AND movie_id = $2",
		userID,
		movieID,
	).Scan(&count)
	return count, postgres.MapError(err)
}
