package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

var ErrUnavailable = errors.New("tmdb: upstream unavailable")

type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int32   `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
}

type page struct {
	Page       int     `json:"page"`
	Results    []Movie `json:"results"`
	TotalPages int     `json:"total_pages"`
}

type Client struct {
	log     *slog.Logger
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*page]
}

/*
New creates a TMDB client. apiKey may be either a v3 key (sent as the api_key query
parameter) or a v4 read access token (sent as a bearer token).
Requests go through a circuit breaker that opens after 5 consecutive failures.
*/
func New(log *slog.Logger, baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	const cbName = "tmdb-api"
	cb := gobreaker.NewCircuitBreaker[*page](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

func (c *Client) isBearerToken() bool {
	return strings.HasPrefix(c.apiKey, "eyJ")
}

// Trending returns this week's trending movies.
func (c *Client) Trending(ctx context.Context) ([]Movie, error) {
	p, err := c.fetch(ctx, "/trending/movie/week", nil)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

// Popular returns one page (1-based) of popular movies and the total page count.
func (c *Client) Popular(ctx context.Context, pageNum int) ([]Movie, int, error) {
	p, err := c.fetch(ctx, "/movie/popular", url.Values{"page": {strconv.Itoa(pageNum)}})
	if err != nil {
		return nil, 0, err
	}
	return p.Results, p.TotalPages, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) (*page, error) {
	const op = "tmdb.Client.fetch"
	log := c.log.With("op", op, "path", path)
	p, err := c.cb.Execute(func() (*page, error) {
		return c.do(ctx, path, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn("request rejected by circuit breaker")
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		log.Error("request failed", "errMsg", err.Error())
		return nil, err
	}
	return p, nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) (*page, error) {
	if query == nil {
		query = url.Values{}
	}
	if !c.isBearerToken() {
		query.Set("api_key", c.apiKey)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.isBearerToken() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: %s returned status %d", path, resp.StatusCode)
	}
	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("tmdb: decode %s: %w", path, err)
	}
	return &p, nil
}
