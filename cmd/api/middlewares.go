package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/metrics"
	"movienight/proj/internal/services/auth"

	"github.com/go-chi/httprate"
	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil && rec != http.ErrAbortHandler {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	if !app.cfg.Limiter.Enabled {
		return next
	}
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go app.every(time.Minute, func() {
		mu.Lock()
		defer mu.Unlock()
		for ip, client := range clients {
			if time.Since(client.lastSeen) > 3*time.Minute {
				delete(clients, ip)
			}
		}
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()
		if !allowed {
			log.Warn("rate limit exceeded", "ip", ip)
			metrics.RecordRateLimitHit("global")
			app.Http.TooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// every calls fn on each tick until the application is closed.
func (app *Application) every(interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-app.done:
			return
		case <-ticker.C:
			fn()
		}
	}
}

// LoginLimiter caps login attempts per client IP over a sliding window.
func (app *Application) LoginLimiter() func(http.Handler) http.Handler {
	if !app.cfg.LoginLimiter.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		app.cfg.LoginLimiter.Requests,
		app.cfg.LoginLimiter.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			app.log.Warn("login rate limit exceeded", "remote_addr", r.RemoteAddr)
			metrics.RecordRateLimitHit("login")
			app.Http.TooManyRequests(w, r)
		}),
	)
}

type CtxKey string

const (
	CtxKeyUser    CtxKey = "user"
	CtxKeyAuthErr CtxKey = "auth_error"
)

func (app *Application) contextGetUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(CtxKeyUser).(*models.User)
	if !ok || user == nil {
		return models.AnonymousUser
	}
	return user
}

func (app *Application) contextGetAuthErr(r *http.Request) error {
	err, _ := r.Context().Value(CtxKeyAuthErr).(error)
	return err
}

// Authenticate puts the bearer token's user into the request context. A missing or unusable
// token leaves the request anonymous, public routes still serve it and requireAuthenticatedUser
// turns the recorded failure into a 401.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		user := models.AnonymousUser
		var authErr error

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				app.log.Warn("Invalid auth header")
				authErr = errInvalidAuthHeader
			} else if authenticated, err := app.Services.Auth.Authenticate(r.Context(), token); err != nil {
				switch {
				case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
					authErr = auth.ErrInvalidToken
				default:
					app.Http.ServerError(w, r, err, "")
					return
				}
			} else {
				user = authenticated
			}
		}
		ctx := context.WithValue(r.Context(), CtxKeyUser, user)
		if authErr != nil {
			ctx = context.WithValue(ctx, CtxKeyAuthErr, authErr)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var errInvalidAuthHeader = errors.New("invalid Authorization header, should be 'Bearer <token>'")

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.contextGetUser(r).IsAnonymous() {
			msg := "Not authenticated"
			if err := app.contextGetAuthErr(r); err != nil {
				msg = err.Error()
			}
			app.Http.Unauthorized(w, r, msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSelf lets the request through only when {user_id} is the authenticated user.
func (app *Application) requireSelf(next http.Handler) http.Handler {
	return app.requireAuthenticatedUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := app.extractIDParam(w, r, "user_id")
		if !ok {
			return
		}
		if err := auth.AuthorizeSelf(app.contextGetUser(r), userID); err != nil {
			app.Http.Forbidden(w, r, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	}))
}
