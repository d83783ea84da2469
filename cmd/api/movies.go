package main

import (
	"errors"
	"fmt"
	"net/http"

	"movienight/proj/internal/domain/filters"
	"movienight/proj/internal/lib/decoder"
	"movienight/proj/internal/lib/validator"
	"movienight/proj/internal/services/movies"
)

func (app *Application) getTrendingMovies(w http.ResponseWriter, r *http.Request) {
	trending, err := app.Services.Movies.Trending(r.Context())
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, trending)
}

func (app *Application) getPopularMovies(w http.ResponseWriter, r *http.Request) {
	page := filters.NewPagination(app.cfg.Pagination.DefaultLimit)
	if errs := decoder.Decode(app.decoder, &page, r.URL.Query()); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return
	}
	if errs := validator.ValidateStruct(app.validator, page); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return
	}
	if maxLimit := app.Services.Movies.MaxLimit(); page.Limit > maxLimit {
		app.Http.UnprocessableEntity(w, r, map[string]string{
			"limit": fmt.Sprintf("Value should be less than or equal to %d", maxLimit),
		})
		return
	}
	popular, err := app.Services.Movies.Popular(r.Context(), page)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, popular)
}

type searchQuery struct {
	Query string `schema:"query" validate:"required"`
}

func (app *Application) searchMovies(w http.ResponseWriter, r *http.Request) {
	var q searchQuery
	if errs := decoder.Decode(app.decoder, &q, r.URL.Query()); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return
	}
	if errs := validator.ValidateStruct(app.validator, q); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return
	}
	found, err := app.Services.Movies.Search(r.Context(), q.Query)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, found)
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	movie, err := app.Services.Movies.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, movies.ErrMovieNotFound):
			app.Http.NotFound(w, r, err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, movie)
}
