package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/akarpov/shortly/internal/database"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// decodeBody decodes the request body into v. Any failure, including an
// absent body, is reported to the client as the plain-text empty-request
// error; the return value tells the caller whether to proceed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		renderText(w, http.StatusBadRequest, emptyRequestBodyText)
		return false
	}

	return true
}

// handleRegister handles POST requests to register a new user.
//
// The payload must carry a username, a password and its confirmation. On
// success the issued token is returned with 201.
func handleRegister(svc AuthService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleRegister"

	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest

		if !decodeBody(w, r, &req) {
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, validationErrorResponse("registration validation error", err))
			return
		}

		if req.Password != req.PasswordConfirmation {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, passwordConfirmationResponse)
			return
		}

		if len(req.Password) < minPasswordLength {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, passwordLengthResponse)
			return
		}

		token, err := svc.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, database.ErrUsernameExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, usernameExistsResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, tokenResponse{Token: token})
	}
}

// handleAuth handles POST requests to log in with existing credentials.
//
// Valid credentials return the user's token with 200. Unknown usernames and
// wrong passwords are indistinguishable to the client.
func handleAuth(svc AuthService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleAuth"

	return func(w http.ResponseWriter, r *http.Request) {
		var req authRequest

		if !decodeBody(w, r, &req) {
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, validationErrorResponse("auth validation error", err))
			return
		}

		token, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) ||
				errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				renderText(w, http.StatusUnauthorized, invalidCredentialsText)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, tokenResponse{Token: token})
	}
}

// handleListURLs handles GET requests to list the caller's URLs.
//
// The response is a bare JSON array, empty when the caller owns nothing.
func handleListURLs(svc URLService) http.HandlerFunc {
	const op = "api.http.handleListURLs"

	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			renderText(w, http.StatusUnauthorized, missingAuthHeaderText)
			return
		}

		urls, err := svc.List(r.Context(), user.ID)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		resp := make([]urlResponse, 0, len(urls))
		for _, url := range urls {
			resp = append(resp, toURLResponse(url))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, resp)
	}
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The request must contain a valid URL and may carry a custom alias in
// short_url. The created record is returned with 201 and clicks at zero.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			renderText(w, http.StatusUnauthorized, missingAuthHeaderText)
			return
		}

		var req urlRequest

		if !decodeBody(w, r, &req) {
			return
		}

		if err := validate.Struct(req); err != nil {
			msg := "url validation error"
			if hasFieldError(err, "short_url") {
				msg = "short url validation error"
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, validationErrorResponse(msg, err))
			return
		}

		url, err := svc.Shorten(r.Context(), user.ID, req.URL, req.ShortURL)
		if err != nil {
			if errors.Is(err, database.ErrSlugExists) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, aliasTakenResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, toURLResponse(url))
	}
}

// handleGetURL handles GET requests for a single URL by uuid.
//
// A record owned by another user is reported as 404, identical to a missing
// record, so clients can't probe for foreign uuids.
func handleGetURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetURL"

	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			renderText(w, http.StatusUnauthorized, missingAuthHeaderText)
			return
		}

		uuid := chi.URLParam(r, "uuid")

		url, err := svc.Get(r.Context(), user.ID, uuid)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, urlNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toURLResponse(url))
	}
}

// handleDeleteURL handles DELETE requests for a single URL by uuid.
//
// Success is 204 with an empty body; the ownership rule matches handleGetURL.
func handleDeleteURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDeleteURL"

	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			renderText(w, http.StatusUnauthorized, missingAuthHeaderText)
			return
		}

		uuid := chi.URLParam(r, "uuid")

		if err := svc.Delete(r.Context(), user.ID, uuid); err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, urlNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.NoContent(w, r)
	}
}

// handleRedirect handles GET requests on short links, redirecting to the
// target URL and counting the visit.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		targetURL, err := svc.Resolve(r.Context(), slug)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, urlNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		http.Redirect(w, r, targetURL, http.StatusTemporaryRedirect)
	}
}

// hasFieldError reports whether any of the validator errors concerns the
// given (json-tagged) field.
func hasFieldError(err error, field string) bool {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}

	for _, e := range errs {
		if e.Field() == field {
			return true
		}
	}

	return false
}
