package main

import (
	"errors"
	"net/http"

	"movienight/proj/internal/lib/decoder"
	"movienight/proj/internal/lib/validator"
	"movienight/proj/internal/services/auth"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

func (app *Application) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	user, err := app.Services.Auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserAlreadyExists):
			app.Http.BadRequest(w, r, err.Error())
		case errors.Is(err, auth.ErrPasswordTooLong):
			app.Http.UnprocessableEntity(w, r, map[string]string{"password": err.Error()})
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, user)
}

// loginForm follows the OAuth2 password grant, extra fields such as grant_type are ignored.
type loginForm struct {
	Username string `schema:"username" validate:"required"`
	Password string `schema:"password" validate:"required"`
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		app.Http.UnprocessableEntity(w, r, map[string]string{"body": "body must be a valid form"})
		return
	}
	var form loginForm
	if errs := decoder.Decode(app.decoder, &form, r.PostForm); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return
	}
	if errs := validator.ValidateStruct(app.validator, form); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return
	}
	token, err := app.Services.Auth.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			app.Http.Unauthorized(w, r, err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, token)
}
