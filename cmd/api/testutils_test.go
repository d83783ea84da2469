package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"movienight/proj/internal/config"
	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/lib/logger"
	"movienight/proj/internal/services"
	"movienight/proj/internal/storage/memory"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Debug:        false,
		DB:           config.DB{Driver: config.DriverMemory},
		Auth:         config.Auth{Secret: testSecret, AccessTokenTTL: 30 * time.Minute, BcryptCost: bcrypt.MinCost},
		LoginLimiter: config.LoginLimiter{Enabled: false},
		CORS:         config.CORS{AllowedOrigins: []string{"*"}},
		Pagination:   config.Pagination{DefaultLimit: 20, MaxLimit: 100},
	}
}

type testApp struct {
	*Application
	db      *memory.Models
	handler http.Handler
}

// NewTestApplication builds the full router over an in-memory store. A nil cfg uses testConfig.
func NewTestApplication(cfg *config.Config, t *testing.T) *testApp {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	log := logger.Discard()
	db := memory.New()
	svc := services.New(log, cfg, services.Storages{
		Users:     db.User,
		Movies:    db.Movie,
		Favorites: db.Favorite,
		Ratings:   db.Rating,
	}, services.Deps{})
	app := NewApplication(cfg, log, svc, nil)
	t.Cleanup(app.Close)
	return &testApp{Application: app, db: db, handler: app.routes()}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func (ta *testApp) seedMovie(t *testing.T, id int64, title string, popularity float64) {
	t.Helper()
	_, err := ta.db.Movie.Upsert(context.Background(), &models.Movie{
		ID:         id,
		Title:      title,
		Overview:   strPtr("overview of " + title),
		Popularity: floatPtr(popularity),
	})
	require.NoError(t, err)
}

func newRequest(method, target string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	return req, httptest.NewRecorder()
}

func (ta *testApp) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	return rec
}

func (ta *testApp) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}, "grant_type": {"password"}}
	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(form.Encode()))
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin returns the new user's id and access token.
func (ta *testApp) registerAndLogin(t *testing.T, username, email, password string) (int64, string) {
	t.Helper()
	rec := ta.do(t, http.MethodPost, "/users/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ta.login(t, username, password)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token models.AuthToken
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	return token.UserID, token.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
