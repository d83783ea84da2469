package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"movienight/proj/internal/config"
	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/services/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	app := NewTestApplication(nil, t)
	rec := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"message": "Welcome to the Movie Night API!"}, decode[map[string]string](t, rec))
}

func TestHealthcheck(t *testing.T) {
	app := NewTestApplication(nil, t)
	rec := app.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "available", decode[map[string]any](t, rec)["status"])
}

func TestFavoritesFlow(t *testing.T) {
	app := NewTestApplication(nil, t)
	userID, token := app.registerAndLogin(t, "alice", "a@x.com", "pw123")
	favoritesURL := fmt.Sprintf("/users/%d/favorites", userID)

	rec := app.do(t, http.MethodGet, favoritesURL, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = app.do(t, http.MethodPost, favoritesURL, token, map[string]int64{"movie_id": 42})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	app.seedMovie(t, 42, "The Answer", 7.5)
	rec = app.do(t, http.MethodPost, favoritesURL, token, map[string]int64{"movie_id": 42})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[models.Favorite](t, rec)
	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, int64(42), first.MovieID)

	// adding again is idempotent
	rec = app.do(t, http.MethodPost, favoritesURL, token, map[string]int64{"movie_id": 42})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, first.ID, decode[models.Favorite](t, rec).ID)

	rec = app.do(t, http.MethodGet, favoritesURL, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	movies := decode[[]models.Movie](t, rec)
	require.Len(t, movies, 1)
	assert.Equal(t, int64(42), movies[0].ID)
	assert.Equal(t, "The Answer", movies[0].Title)

	rec = app.do(t, http.MethodDelete, favoritesURL+"/42", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	rec = app.do(t, http.MethodDelete, favoritesURL+"/42", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, favoritesURL, token, nil)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestFavoritesValidation(t *testing.T) {
	app := NewTestApplication(nil, t)
	userID, token := app.registerAndLogin(t, "alice", "a@x.com", "pw123")
	favoritesURL := fmt.Sprintf("/users/%d/favorites", userID)
	tests := []struct {
		name string
		body any
	}{
		{"MissingMovieID", map[string]any{}},
		{"NegativeMovieID", map[string]any{"movie_id": -1}},
		{"WrongType", map[string]any{"movie_id": "42"}},
		{"UnknownField", map[string]any{"movie_id": 42, "extra": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, favoritesURL, token, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
	t.Run("MalformedMovieIDParam", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, favoritesURL+"/abc", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestCrossUserAccess(t *testing.T) {
	app := NewTestApplication(nil, t)
	aliceID, aliceToken := app.registerAndLogin(t, "alice", "a@x.com", "pw123")
	bobID, bobToken := app.registerAndLogin(t, "bob", "b@x.com", "hunter2")
	app.seedMovie(t, 42, "The Answer", 7.5)

	rec := app.do(t, http.MethodPost, fmt.Sprintf("/users/%d/favorites", bobID), bobToken, map[string]int64{"movie_id": 42})
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name   string
		method string
		target string
		body   any
	}{
		{"ListFavorites", http.MethodGet, fmt.Sprintf("/users/%d/favorites", bobID), nil},
		{"AddFavorite", http.MethodPost, fmt.Sprintf("/users/%d/favorites", bobID), map[string]int64{"movie_id": 42}},
		{"RemoveFavorite", http.MethodDelete, fmt.Sprintf("/users/%d/favorites/42", bobID), nil},
		{"ListRatings", http.MethodGet, fmt.Sprintf("/users/%d/ratings", bobID), nil},
		{"RateMovie", http.MethodPost, fmt.Sprintf("/users/%d/ratings", bobID), map[string]any{"movie_id": 42, "score": 1}},
		{"DeleteRating", http.MethodDelete, fmt.Sprintf("/users/%d/ratings/42", bobID), nil},
		{"NonexistentUser", http.MethodGet, "/users/999/favorites", nil},
		{"NonexistentUserWithMissingMovie", http.MethodPost, "/users/999/favorites", map[string]int64{"movie_id": 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.target, aliceToken, tt.body)
			assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
		})
	}

	// bob's favorites were not touched
	rec = app.do(t, http.MethodGet, fmt.Sprintf("/users/%d/favorites", bobID), bobToken, nil)
	assert.Len(t, decode[[]models.Movie](t, rec), 1)
	assert.NotEqual(t, aliceID, bobID)
}

func TestAuthentication(t *testing.T) {
	app := NewTestApplication(nil, t)
	userID, token := app.registerAndLogin(t, "alice", "a@x.com", "pw123")
	favoritesURL := fmt.Sprintf("/users/%d/favorites", userID)
	tokens := auth.NewTokenService(testSecret, time.Minute)
	expired, err := tokens.NewTokenWithTTL("alice", 0)
	require.NoError(t, err)
	foreign, err := auth.NewTokenService("another-secret", time.Minute).NewToken("alice")
	require.NoError(t, err)
	ghost, err := tokens.NewToken("ghost")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"Valid", "Bearer " + token, http.StatusOK},
		{"Missing", "", http.StatusUnauthorized},
		{"Expired", "Bearer " + expired, http.StatusUnauthorized},
		{"WrongKey", "Bearer " + foreign, http.StatusUnauthorized},
		{"Tampered", "Bearer " + token[:len(token)-2] + "xx", http.StatusUnauthorized},
		{"UnknownSubject", "Bearer " + ghost, http.StatusUnauthorized},
		{"WrongScheme", "Basic " + token, http.StatusUnauthorized},
		{"EmptyBearer", "Bearer ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, favoritesURL)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			app.handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
	t.Run("MalformedUserID", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/users/abc/favorites", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestStaleTokenOnPublicRoutes(t *testing.T) {
	app := NewTestApplication(nil, t)
	app.registerAndLogin(t, "alice", "a@x.com", "pw123")
	app.seedMovie(t, 42, "The Answer", 7.5)
	expired, err := auth.NewTokenService(testSecret, time.Minute).NewTokenWithTTL("alice", 0)
	require.NoError(t, err)

	for _, target := range []string{"/", "/movies/trending", "/movies/popular", "/movies/42", "/movies/search?query=ans"} {
		t.Run(target, func(t *testing.T) {
			rec := app.do(t, http.MethodGet, target, expired, nil)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
	t.Run("MalformedHeader", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/movies/trending")
		req.Header.Set("Authorization", "Basic abc")
		app.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("Register", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/register", expired, map[string]string{
			"username": "bob", "email": "b@x.com", "password": "hunter2",
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
	t.Run("LoginWithValidCredentials", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"pw123"}}
		req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(form.Encode()))
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotEmpty(t, decode[models.AuthToken](t, rec).AccessToken)
	})
	t.Run("PrivateRouteStillRejects", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/users/1/favorites", expired, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Equal(t, auth.ErrInvalidToken.Error(), decode[Response](t, rec).Message)
	})
}

func TestRegister(t *testing.T) {
	app := NewTestApplication(nil, t)
	rec := app.do(t, http.MethodPost, "/users/register", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, rec.Body.String(), "pw123")

	t.Run("DuplicateUsername", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/register", "", map[string]string{
			"username": "alice", "email": "other@x.com", "password": "other",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, decode[map[string]any](t, rec)["success"])
	})
	t.Run("InvalidEmail", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/register", "", map[string]string{
			"username": "bob", "email": "nope", "password": "pw",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[Response](t, rec)
		assert.Contains(t, body.Data["errors"], "email")
	})
	t.Run("PasswordTooLong", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/register", "", map[string]string{
			"username": "carol", "email": "c@x.com", "password": strings.Repeat("p", 73),
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("EmptyBody", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/register", "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	app := NewTestApplication(nil, t)
	userID, token := app.registerAndLogin(t, "alice", "a@x.com", "pw123")
	assert.NotEmpty(t, token)

	rec := app.login(t, "alice", "pw123")
	got := decode[models.AuthToken](t, rec)
	assert.Equal(t, "bearer", got.TokenType)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "alice", got.Username)

	t.Run("WrongPassword", func(t *testing.T) {
		rec := app.login(t, "alice", "wrong")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})
	t.Run("UnknownUser", func(t *testing.T) {
		rec := app.login(t, "nobody", "pw123")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("MissingPassword", func(t *testing.T) {
		rec := app.login(t, "alice", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLoginLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.LoginLimiter = config.LoginLimiter{Enabled: true, Requests: 2, Window: time.Minute}
	app := NewTestApplication(cfg, t)
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, app.login(t, "alice", "wrong").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, app.login(t, "alice", "wrong").Code)
}

func TestRatingsFlow(t *testing.T) {
	app := NewTestApplication(nil, t)
	userID, token := app.registerAndLogin(t, "alice", "a@x.com", "pw123")
	ratingsURL := fmt.Sprintf("/users/%d/ratings", userID)
	app.seedMovie(t, 42, "The Answer", 7.5)

	rec := app.do(t, http.MethodGet, ratingsURL, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = app.do(t, http.MethodPost, ratingsURL, token, map[string]any{"movie_id": 42, "score": 7})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = app.do(t, http.MethodPost, ratingsURL, token, map[string]any{"movie_id": 42, "score": 9})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9.0, decode[models.Rating](t, rec).Score)

	rec = app.do(t, http.MethodGet, ratingsURL, token, nil)
	ratings := decode[[]models.Rating](t, rec)
	require.Len(t, ratings, 1)
	assert.Equal(t, 9.0, ratings[0].Score)
	assert.Equal(t, int64(42), ratings[0].MovieID)

	t.Run("ZeroScoreIsValid", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, ratingsURL, token, map[string]any{"movie_id": 42, "score": 0})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0.0, decode[models.Rating](t, rec).Score)
	})
	t.Run("ScoreOutOfRange", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, ratingsURL, token, map[string]any{"movie_id": 42, "score": 11})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("MissingScore", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, ratingsURL, token, map[string]any{"movie_id": 42})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("UnknownMovie", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, ratingsURL, token, map[string]any{"movie_id": 7, "score": 5})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	rec = app.do(t, http.MethodDelete, ratingsURL+"/42", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(t, http.MethodDelete, ratingsURL+"/42", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(t, http.MethodGet, ratingsURL, token, nil)
	assert.Empty(t, decode[[]models.Rating](t, rec))
}

func TestMovies(t *testing.T) {
	app := NewTestApplication(nil, t)
	for i := 1; i <= 25; i++ {
		app.seedMovie(t, int64(i), fmt.Sprintf("Movie %02d", i), float64(i))
	}
	app.seedMovie(t, 100, "The Dark Knight", 0.5)

	t.Run("Trending", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/movies/trending", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		movies := decode[[]models.Movie](t, rec)
		require.Len(t, movies, 10)
		for i := 1; i < len(movies); i++ {
			assert.GreaterOrEqual(t, *movies[i-1].Popularity, *movies[i].Popularity)
		}
		assert.Equal(t, int64(25), movies[0].ID)
	})
	t.Run("PopularDefaults", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/movies/popular", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.Movie](t, rec), 20)
	})
	t.Run("PopularPage", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/movies/popular?skip=20&limit=10", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		movies := decode[[]models.Movie](t, rec)
		require.Len(t, movies, 6)
		assert.Equal(t, int64(5), movies[0].ID)
		assert.Equal(t, int64(100), movies[5].ID)
	})
	t.Run("PopularInvalid", func(t *testing.T) {
		for _, q := range []string{"limit=101", "limit=0", "skip=-1", "limit=abc"} {
			rec := app.do(t, http.MethodGet, "/movies/popular?"+q, "", nil)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, q)
		}
	})
	t.Run("Search", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/movies/search?query=dark", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		movies := decode[[]models.Movie](t, rec)
		require.Len(t, movies, 1)
		assert.Equal(t, "The Dark Knight", movies[0].Title)

		rec = app.do(t, http.MethodGet, "/movies/search?query=zzz", "", nil)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

		rec = app.do(t, http.MethodGet, "/movies/search", "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("Get", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/movies/100", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		movie := decode[models.Movie](t, rec)
		assert.Equal(t, "The Dark Knight", movie.Title)
		assert.Nil(t, movie.PosterPath)

		assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/movies/4242", "", nil).Code)
		assert.Equal(t, http.StatusUnprocessableEntity, app.do(t, http.MethodGet, "/movies/abc", "", nil).Code)
	})
}

func TestUnknownRoute(t *testing.T) {
	app := NewTestApplication(nil, t)
	rec := app.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
