package http

import (
	"context"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/akarpov/shortly/docs"
	"github.com/akarpov/shortly/internal/models"
)

// AuthService defines the authentication operations required by the API layer.
type AuthService interface {
	// Register creates a user and returns the issued opaque token.
	// Returns database.ErrUsernameExists on a username collision.
	Register(ctx context.Context, username, password string) (string, error)

	// Login verifies credentials and returns the user's token.
	// Returns database.ErrUserNotFound or bcrypt.ErrMismatchedHashAndPassword
	// on bad credentials.
	Login(ctx context.Context, username, password string) (string, error)

	// Authenticate resolves a bearer token to its owning user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// URLService defines the URL shortening operations required by the API layer.
type URLService interface {
	// Shorten creates a shortened URL owned by the user; alias may be empty.
	// Returns database.ErrSlugExists when a supplied alias is taken.
	Shorten(ctx context.Context, userID int64, originalURL, alias string) (*models.URL, error)

	// List retrieves all URLs owned by the user.
	List(ctx context.Context, userID int64) ([]*models.URL, error)

	// Get retrieves a URL by uuid scoped to its owner.
	// Returns database.ErrURLNotFound for missing and foreign records alike.
	Get(ctx context.Context, userID int64, uuid string) (*models.URL, error)

	// Delete removes a URL by uuid under the same ownership rule as Get.
	Delete(ctx context.Context, userID int64, uuid string) error

	// Resolve returns the target URL for a slug and counts the visit.
	Resolve(ctx context.Context, slug string) (string, error)
}

var slugRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]{5,16}$`)

// getValidate initializes a validator for incoming request payloads. Tag
// names are taken from json tags and a custom slug tag enforces the custom
// alias format.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegexp.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, authSvc AuthService, urlSvc URLService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(docs.Swagger)
	})

	r.Get("/{slug}", handleRedirect(urlSvc))

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Post("/register", handleRegister(authSvc, validate))
		r.Post("/auth", handleAuth(authSvc, validate))

		r.Route("/urls", func(r chi.Router) {
			r.Use(tokenAuth(authSvc))

			r.Get("/", handleListURLs(urlSvc))
			r.Post("/", handleShortenURL(urlSvc, validate))

			r.Route("/{uuid}", func(r chi.Router) {
				r.Get("/", handleGetURL(urlSvc))
				r.Delete("/", handleDeleteURL(urlSvc))
			})
		})
	})

	return r
}
