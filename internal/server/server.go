package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blower-selector/internal/common/logger"
	"blower-selector/internal/common/metrics"
	"blower-selector/internal/conversation"
	"blower-selector/internal/matching"
	"blower-selector/internal/quote"
	"blower-selector/internal/refdata"
	"blower-selector/internal/sizing"
)

// Deps are the collaborators the server routes requests to. Quotes,
// Dispatcher, and States are optional; the corresponding features degrade
// gracefully when absent.
type Deps struct {
	Machine    *conversation.Machine
	Sizer      *sizing.Engine
	Matcher    *matching.Engine
	Catalog    *refdata.Store
	Assembler  *quote.Assembler
	Quotes     *quote.Repository
	Dispatcher *quote.Dispatcher
	States     *StateStore
	Logger     logger.Logger
}

// Server is the HTTP boundary around the selection pipeline.
type Server struct {
	deps Deps
	log  logger.Logger
}

// New creates the HTTP server.
func New(deps Deps) *Server {
	return &Server{deps: deps, log: deps.Logger}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestMetrics)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/conversation", s.handleConversation)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/catalog/refresh", s.handleCatalogRefresh)
		r.Get("/quotes/{quoteID}", s.handleGetQuote)
	})

	return r
}

// requestMetrics records per-route latency and status.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
