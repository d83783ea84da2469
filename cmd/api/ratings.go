package main

import (
	"errors"
	"net/http"

	"movienight/proj/internal/services/movies"
	"movienight/proj/internal/services/ratings"
)

type rateMovieRequest struct {
	MovieID int64    `json:"movie_id" validate:"required,gt=0"`
	Score   *float64 `json:"score" validate:"required,gte=0,lte=10" errorMsg:"Score must be between 0 and 10"`
}

func (app *Application) listRatings(w http.ResponseWriter, r *http.Request) {
	user := app.contextGetUser(r)
	userRatings, err := app.Services.Ratings.List(r.Context(), user.ID)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, userRatings)
}

func (app *Application) rateMovie(w http.ResponseWriter, r *http.Request) {
	var req rateMovieRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	user := app.contextGetUser(r)
	rating, err := app.Services.Ratings.Upsert(r.Context(), user.ID, req.MovieID, *req.Score)
	if err != nil {
		switch {
		case errors.Is(err, movies.ErrMovieNotFound):
			app.Http.NotFound(w, r, err.Error())
		case errors.Is(err, ratings.ErrScoreOutOfRange):
			app.Http.UnprocessableEntity(w, r, map[string]string{"score": err.Error()})
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, rating)
}

func (app *Application) deleteRating(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "movie_id")
	if !ok {
		return
	}
	user := app.contextGetUser(r)
	if err := app.Services.Ratings.Delete(r.Context(), user.ID, movieID); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r)
}
