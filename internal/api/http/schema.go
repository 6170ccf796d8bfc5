package http

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/akarpov/shortly/internal/models"
)

const statusError = "error"

// Plain-text error bodies. Header and body-presence failures are rendered as
// text, not JSON, unlike field-level validation errors.
const (
	missingAuthHeaderText  = "Error: Authorization should be defined in request headers"
	invalidAuthTokenText   = "Error: Authorization with valid Token should be defined in request headers"
	emptyRequestBodyText   = "Error: Empty POST request"
	invalidCredentialsText = "Error: Invalid username or password"
)

const minPasswordLength = 8

// urlRequest represents the request payload for creating a shortened URL.
// The optional short_url field carries a custom alias for the slug.
type urlRequest struct {
	URL      string `json:"url" validate:"required,url"`
	ShortURL string `json:"short_url" validate:"omitempty,slug"`
}

// registerRequest represents the request payload for registration.
type registerRequest struct {
	Username             string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

// authRequest represents the request payload for login.
type authRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// tokenResponse carries the opaque bearer token issued to a user.
type tokenResponse struct {
	Token string `json:"token"`
}

// urlResponse represents the externally visible shape of a shortened URL.
// The domain and slug are server-internal composition fields folded into
// short_url and never exposed on their own.
type urlResponse struct {
	UUID      string    `json:"uuid"`
	ShortURL  string    `json:"short_url"`
	URL       string    `json:"url"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toURLResponse(url *models.URL) urlResponse {
	return urlResponse{
		UUID:      url.UUID,
		ShortURL:  url.ShortURL(),
		URL:       url.OriginalURL,
		Clicks:    url.Clicks,
		CreatedAt: url.CreatedAt,
		UpdatedAt: url.UpdatedAt,
	}
}

// validationError represents an individual field-level validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	usernameExistsResponse = errorResponse{
		Status:  statusError,
		Message: "username already exists",
	}

	aliasTakenResponse = errorResponse{
		Status:  statusError,
		Message: "short url validation error",
		Errors: []validationError{
			{Field: "short_url", Message: "short url is already taken"},
		},
	}

	passwordConfirmationResponse = errorResponse{
		Status:  statusError,
		Message: "registration validation error",
		Errors: []validationError{
			{Field: "password_confirmation", Message: "passwords do not match"},
		},
	}

	passwordLengthResponse = errorResponse{
		Status:  statusError,
		Message: "registration validation error",
		Errors: []validationError{
			{Field: "password", Message: "password must be at least 8 characters"},
		},
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "slug":
		return "must be 5-16 characters of letters, digits, '-' or '_'"
	case "min", "max":
		return "invalid length"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse builds a structured 400 body from validator errors.
func validationErrorResponse(msg string, err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: msg,
		Errors:  getValidationErrors(err),
	}
}
