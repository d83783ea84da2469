package models

import (
	"context"
	"strings"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MovieModel struct {
	DB *pgxpool.Pool
}

const movieColumns = `id, title, overview, poster_path, backdrop_path, release_date,
	vote_average, vote_count, popularity`

func (m *MovieModel) Get(ctx context.Context, id int64) (*models.Movie, error) {
	rows, _ := m.DB.Query(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = $1", id)
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &movie, nil
}

// Upsert inserts the movie or overwrites every column of the existing row with the same id.
func (m *MovieModel) Upsert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO movies (`+movieColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			overview = EXCLUDED.overview,
			poster_path = EXCLUDED.poster_path,
			backdrop_path = EXCLUDED.backdrop_path,
			release_date = EXCLUDED.release_date,
			vote_average = EXCLUDED.vote_average,
			vote_count = EXCLUDED.vote_count,
			popularity = EXCLUDED.popularity
		RETURNING `+movieColumns,
		movie.ID,
		movie.Title,
		movie.Overview,
		movie.PosterPath,
		movie.BackdropPath,
		movie.ReleaseDate,
		movie.VoteAverage,
		movie.VoteCount,
		movie.Popularity,
	)
	saved, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &saved, nil
}

func (m *MovieModel) ListByPopularity(ctx context.Context, offset, limit int) ([]models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+movieColumns+` FROM movies
		ORDER BY popularity DESC NULLS LAST, id
		LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return movies, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (m *MovieModel) SearchByTitle(ctx context.Context, query string) ([]models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+movieColumns+` FROM movies WHERE title ILIKE '%' || $1 || '%'`,
		likeEscaper.Replace(query),
	)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return movies, nil
}
