package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"psparser/internal/http-server/handlers/games"
	"psparser/internal/http-server/handlers/payment"
	"psparser/internal/http-server/handlers/subscriptions"
	"psparser/internal/http-server/middleware"
	"psparser/internal/http-server/respond"
)

type Server struct {
	log    *slog.Logger
	router chi.Router
}

func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, router: chi.NewRouter()}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

type Deps struct {
	Catalog    games.Loader
	Pricing    subscriptions.Loader
	TopUp      payment.TopUpper
	Metrics    http.Handler
	CORSOrigin string
	Timeout    time.Duration
}

func (s *Server) RegisterRoutes(dep Deps) {
	r := s.router
	r.Use(middleware.WithRequestID)
	r.Use(middleware.AccessLog(s.log))
	r.Use(middleware.RecoverPanic(s.log))
	r.Use(middleware.CORS(dep.CORSOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if dep.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", dep.Metrics)
	}

	r.Get("/games", games.NewGetHandler(games.Options{
		Log:     s.log,
		Catalog: dep.Catalog,
		Timeout: dep.Timeout,
	}))
	r.Get("/subscriptions", subscriptions.NewGetHandler(subscriptions.Options{
		Log:     s.log,
		Pricing: dep.Pricing,
		Timeout: dep.Timeout,
	}))
	r.Post("/process_payment", payment.NewPostHandler(payment.Options{
		Log:   s.log,
		TopUp: dep.TopUp,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
}
