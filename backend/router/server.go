package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"placegallery/backend/handlers"
	"placegallery/backend/models"
)

const limiterCleanupInterval = time.Minute

type Options struct {
	// Context bounds the limiters' cleanup loops; nil disables cleanup.
	Context   context.Context
	Log       logrus.FieldLogger
	UploadDir string // served at /uploads/ when non-empty
	RateLimit float64
	RateBurst int
}

// New wires every gallery route. API routes require a token.
func New(opts Options) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeErrorPage(w, r, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeErrorPage(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	if opts.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	ipLimiter := NewRateLimiter(opts.RateLimit, opts.RateBurst, ByRemoteIP)
	userLimiter := NewRateLimiter(opts.RateLimit, opts.RateBurst, ByUser)
	if opts.Context != nil {
		go ipLimiter.StartCleanup(opts.Context, limiterCleanupInterval)
		go userLimiter.StartCleanup(opts.Context, limiterCleanupInterval)
	}

	api := r.NewRoute().Subrouter()
	api.Use(handlers.RequireToken, userLimiter.Middleware)
	api.HandleFunc("/users/me", handlers.GetMeHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/me", handlers.UpdateMeHandler).Methods(http.MethodPatch)
	api.HandleFunc("/users/me/avatar", handlers.UpdateAvatarHandler).Methods(http.MethodPatch)
	api.HandleFunc("/cards", handlers.ListCardsHandler).Methods(http.MethodGet)
	api.HandleFunc("/cards", handlers.CreateCardHandler).Methods(http.MethodPost)
	api.HandleFunc("/cards/{cardID}", handlers.DeleteCardHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cards/{cardID}/likes", handlers.LikeHandler).Methods(http.MethodPut, http.MethodDelete)
	api.HandleFunc("/uploads", handlers.UploadHandler).Methods(http.MethodPost)
	api.HandleFunc("/ws", handlers.HandleWebSocket).Methods(http.MethodGet)

	r.Use(MetricsMiddleware, ipLimiter.Middleware)

	return RecoveryMiddleware(opts.Log, LoggingMiddleware(opts.Log, r))
}

func ServeErrorPage(w http.ResponseWriter, r *http.Request, statusCode int, errorMessage string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.Response{
		Success: false,
		Message: errorMessage,
	})
}

func RecoveryMiddleware(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.WithField("path", r.URL.Path).Errorf("Server panic recovered: %v", err)
				ServeErrorPage(w, r, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
