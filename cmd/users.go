package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/core"
	"github.com/inkwellcms/inkwell/internal/utils/functional"
	"github.com/inkwellcms/inkwell/internal/validator"
	"github.com/inkwellcms/inkwell/models"
)

func (app *application) registerUser(w http.ResponseWriter, r *http.Request) {
	type registerUserPayload struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	type RegisterUserRequest struct {
		registerUserPayload `json:"user"`
	}

	var registerUserRequest RegisterUserRequest

	if err := app.readJSON(w, r, &registerUserRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	user := &auth.User{
		Name:              strings.TrimSpace(registerUserRequest.Name),
		Username:          strings.ToLower(strings.TrimSpace(registerUserRequest.Username)),
		Role:              auth.RoleEditor,
		PlaintextPassword: registerUserRequest.Password,
	}

	if err := user.SetPassword(registerUserRequest.Password); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	v := validator.New()

	v.CheckNotBlank(user.Name, "name", "must be provided")

	v.CheckNotBlank(user.Username, "username", "must be provided")
	v.Check(len(user.Username) >= 3, "username", "must be at least 3 characters long")
	v.Check(v.IsMatch(user.Username, validator.UsernameRX), "username", "must contain only lowercase letters, digits, hyphens and underscores")

	v.CheckNotBlank(user.PlaintextPassword, "password", "must be provided")
	v.Check(len(user.PlaintextPassword) >= 8, "password", "must be at least 8 characters long")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	if err := app.core.CreateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateUsername):
			v.AddError("username", "Username is already in use")
			app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	token, err := app.auth.GenerateToken(user, app.config.TokenLifetime)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusCreated, userResponse(user, token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	type loginUserPayload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	type LoginUserRequest struct {
		loginUserPayload `json:"user"`
	}

	var loginUserRequest LoginUserRequest

	if err := app.readJSON(w, r, &loginUserRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(loginUserRequest.Username, "username", "must be provided")
	v.CheckNotBlank(loginUserRequest.Password, "password", "must be provided")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	user, err := app.core.GetUserByUsername(r.Context(), loginUserRequest.Username)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.invalidCredentialsResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	match, err := user.IsPasswordMatch(loginUserRequest.Password)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}
	if !match {
		app.invalidCredentialsResponse(w, r)
		return
	}

	token, err := app.auth.GenerateToken(user, app.config.TokenLifetime)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.auth.CacheAuthenticatedUser(token, user)

	if err := app.writeJSON(w, http.StatusOK, userResponse(user, token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getUsers(w http.ResponseWriter, r *http.Request) {
	authorCounts, err := app.core.GetUsersWithPostCounts(r.Context())
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	type authorCountEnvelope struct {
		Name      string `json:"name"`
		Username  string `json:"username"`
		PostCount int64  `json:"postCount"`
	}

	authorEnvelopes := functional.Map(authorCounts, func(ac *models.AuthorPostCount) authorCountEnvelope {
		return authorCountEnvelope{
			Name:      ac.Name,
			Username:  ac.Username,
			PostCount: ac.PostCount,
		}
	})

	if err := app.writeJSON(w, http.StatusOK, envelope{"users": authorEnvelopes}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

// getAuthors returns the plain author list, which the admin post listing
// uses for its author filter.
func (app *application) getAuthors(w http.ResponseWriter, r *http.Request) {
	users, err := app.core.GetUsers(r.Context())
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	type authorListEnvelope struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	authorEnvelopes := functional.Map(users, func(user *auth.User) authorListEnvelope {
		return authorListEnvelope{
			Name:     user.Name,
			Username: user.Username,
			Role:     user.Role,
		}
	})

	if err := app.writeJSON(w, http.StatusOK, envelope{"authors": authorEnvelopes}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func userResponse(user *auth.User, token string) envelope {
	type output struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Token    string `json:"token"`
	}

	return envelope{
		"user": output{
			Name:     user.Name,
			Username: user.Username,
			Role:     user.Role,
			Token:    token,
		},
	}
}
