package main

import (
	"errors"
	"net/http"

	"movienight/proj/internal/services/movies"
)

type addFavoriteRequest struct {
	MovieID int64 `json:"movie_id" validate:"required,gt=0"`
}

func (app *Application) listFavorites(w http.ResponseWriter, r *http.Request) {
	user := app.contextGetUser(r)
	favorites, err := app.Services.Favorites.List(r.Context(), user.ID)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, favorites)
}

func (app *Application) addFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	user := app.contextGetUser(r)
	favorite, err := app.Services.Favorites.Add(r.Context(), user.ID, req.MovieID)
	if err != nil {
		switch {
		case errors.Is(err, movies.ErrMovieNotFound):
			app.Http.NotFound(w, r, err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Created(w, r, favorite)
}

func (app *Application) removeFavorite(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "movie_id")
	if !ok {
		return
	}
	user := app.contextGetUser(r)
	if err := app.Services.Favorites.Remove(r.Context(), user.ID, movieID); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r)
}
