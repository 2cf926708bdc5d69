// Package httpapi exposes the policy sign-off API as JSON over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/logging"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID int64, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type PolicyService interface {
	List(ctx context.Context, userID int64) ([]models.PolicyStatus, error)
	Create(ctx context.Context, userID int64, in services.CreatePolicyInput) (*models.Policy, error)
	Get(ctx context.Context, userID, policyID int64) (*models.PolicyDetail, error)
	SignOff(ctx context.Context, userID, policyID int64) (*models.Signoff, error)
}

type FileService interface {
	RequestUploadTarget(ctx context.Context, userID, policyID int64, in services.UploadInput) (*models.UploadTarget, error)
	CompleteUpload(ctx context.Context, userID, policyID int64) error
	RequestDownloadTarget(ctx context.Context, policyID int64) (*models.DownloadTarget, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Users          UserService
	Policies       PolicyService
	Files          FileService
	DB             Pinger
	Logger         logging.Logger
	AllowedOrigins []string
	SecureCookies  bool
}

type handler struct {
	users         UserService
	policies      PolicyService
	files         FileService
	db            Pinger
	logger        logging.Logger
	secureCookies bool
}

// NewRouter wires every route. All /policies and /user routes require an
// access token in the Authorization header or the access_token cookie.
func NewRouter(o Options) http.Handler {
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	h := &handler{
		users:         o.Users,
		policies:      o.Policies,
		files:         o.Files,
		db:            o.DB,
		logger:        o.Logger.With("module", "http_api"),
		secureCookies: o.SecureCookies,
	}

	r := chi.NewRouter()
	r.Use(h.requestID)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.health)

	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", h.register)
		ar.Post("/login", h.login)
		ar.Post("/refresh", h.refresh)
		ar.With(h.authenticate).Post("/logout", h.logout)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authenticate)

		pr.Get("/user", h.me)

		pr.Route("/policies", func(api chi.Router) {
			api.Get("/", h.listPolicies)
			api.Post("/", h.createPolicy)
			api.Route("/{id}", func(one chi.Router) {
				one.Get("/", h.showPolicy)
				one.Post("/signoff", h.signOff)
				one.Post("/upload-url", h.uploadURL)
				one.Post("/upload-complete", h.uploadComplete)
				one.Get("/download-url", h.downloadURL)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w, r, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed.")
	})

	return r
}
