// Package memory is a process-local implementation of the storage models. It keeps the same
// uniqueness and foreign key rules as the Postgres schema and is meant for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/storage"
)

type DB struct {
	mu        sync.RWMutex
	users     []models.User
	movies    map[int64]models.Movie
	favorites []models.Favorite
	ratings   []models.Rating
	seq       struct{ user, favorite, rating int64 }
}

type Models struct {
	User     *UserModel
	Movie    *MovieModel
	Favorite *FavoriteModel
	Rating   *RatingModel
}

func New() *Models {
	db := &DB{movies: make(map[int64]models.Movie)}
	return &Models{
		User:     &UserModel{db},
		Movie:    &MovieModel{db},
		Favorite: &FavoriteModel{db},
		Rating:   &RatingModel{db},
	}
}

type UserModel struct{ db *DB }

func (m *UserModel) Insert(_ context.Context, username, email string, passwordHash []byte) (*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.Username == username || u.Email == email {
			return nil, storage.ErrConflict
		}
	}
	m.db.seq.user++
	user := models.User{ID: m.db.seq.user, Username: username, Email: email, PasswordHash: passwordHash}
	m.db.users = append(m.db.users, user)
	return &user, nil
}

func (m *UserModel) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	for _, u := range m.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *UserModel) Get(_ context.Context, id int64) (*models.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	for _, u := range m.db.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

type MovieModel struct{ db *DB }

func (m *MovieModel) Get(_ context.Context, id int64) (*models.Movie, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	movie, ok := m.db.movies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &movie, nil
}

func (m *MovieModel) Upsert(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	saved := *movie
	m.db.movies[movie.ID] = saved
	return &saved, nil
}

func (m *MovieModel) ListByPopularity(_ context.Context, offset, limit int) ([]models.Movie, error) {
	m.db.mu.RLock()
	movies := make([]models.Movie, 0, len(m.db.movies))
	for _, movie := range m.db.movies {
		movies = append(movies, movie)
	}
	m.db.mu.RUnlock()
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := movies[i].Popularity, movies[j].Popularity
		switch {
		case a == nil && b == nil:
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		}
		return movies[i].ID < movies[j].ID
	})
	if offset >= len(movies) {
		return []models.Movie{}, nil
	}
	movies = movies[offset:]
	if limit >= 0 && limit < len(movies) {
		movies = movies[:limit]
	}
	return movies, nil
}

func (m *MovieModel) SearchByTitle(_ context.Context, query string) ([]models.Movie, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	query = strings.ToLower(query)
	movies := []models.Movie{}
	for _, movie := range m.db.movies {
		if strings.Contains(strings.ToLower(movie.Title), query) {
			movies = append(movies, movie)
		}
	}
	return movies, nil
}

type FavoriteModel struct{ db *DB }

func (m *FavoriteModel) ListMovies(_ context.Context, userID int64) ([]models.Movie, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	movies := []models.Movie{}
	for _, f := range m.db.favorites {
		if f.UserID == userID {
			movies = append(movies, m.db.movies[f.MovieID])
		}
	}
	return movies, nil
}

func (m *FavoriteModel) Add(_ context.Context, userID, movieID int64) (*models.Favorite, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.movies[movieID]; !ok {
		return nil, storage.ErrNotFound
	}
	for _, f := range m.db.favorites {
		if f.UserID == userID && f.MovieID == movieID {
			return &f, nil
		}
	}
	m.db.seq.favorite++
	favorite := models.Favorite{ID: m.db.seq.favorite, UserID: userID, MovieID: movieID}
	m.db.favorites = append(m.db.favorites, favorite)
	return &favorite, nil
}

func (m *FavoriteModel) Remove(_ context.Context, userID, movieID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	kept := m.db.favorites[:0]
	for _, f := range m.db.favorites {
		if f.UserID != userID || f.MovieID != movieID {
			kept = append(kept, f)
		}
	}
	m.db.favorites = kept
	return nil
}

func (m *FavoriteModel) Count(_ context.Context, userID, movieID int64) (int, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	count := 0
	for _, f := range m.db.favorites {
		if f.UserID == userID && f.MovieID == movieID {
			count++
		}
	}
	return count, nil
}

type RatingModel struct{ db *DB }

func (m *RatingModel) List(_ context.Context, userID int64) ([]models.Rating, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	ratings := []models.Rating{}
	for _, r := range m.db.ratings {
		if r.UserID == userID {
			ratings = append(ratings, r)
		}
	}
	return ratings, nil
}

func (m *RatingModel) Upsert(_ context.Context, userID, movieID int64, score float64) (*models.Rating, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.movies[movieID]; !ok {
		return nil, storage.ErrNotFound
	}
	for i := range m.db.ratings {
		r := &m.db.ratings[i]
		if r.UserID == userID && r.MovieID == movieID {
			r.Score = score
			rating := *r
			return &rating, nil
		}
	}
	m.db.seq.rating++
	rating := models.Rating{ID: m.db.seq.rating, UserID: userID, MovieID: movieID, Score: score}
	m.db.ratings = append(m.db.ratings, rating)
	return &rating, nil
}

func (m *RatingModel) Delete(_ context.Context, userID, movieID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	kept := m.db.ratings[:0]
	for _, r := range m.db.ratings {
		if r.UserID != userID || r.MovieID != movieID {
			kept = append(kept, r)
		}
	}
	m.db.ratings = kept
	return nil
}
