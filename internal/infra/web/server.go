package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"clipvault/internal/infra/logging"
	"clipvault/internal/usecase"
)

type Server struct {
	sourceUC usecase.SourceUseCase
	itemUC   usecase.ItemUseCase
	answerUC usecase.AnswerUseCase
	auth     *AuthManager
	adminKey string
	log      *zerolog.Logger
}

func NewServer(
	sourceUC usecase.SourceUseCase,
	itemUC usecase.ItemUseCase,
	answerUC usecase.AnswerUseCase,
	auth *AuthManager,
	adminKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		sourceUC: sourceUC,
		itemUC:   itemUC,
		answerUC: answerUC,
		auth:     auth,
		adminKey: adminKey,
		log:      logger,
	}
}

// Router builds the full route tree. /healthz and /metrics are open;
// everything under /api/v1 except login requires the admin key or a
// minted session token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// Propagate the request id as the trace id so downstream logs correlate.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if id := middleware.GetReqID(ctx); id != "" {
				ctx = logging.WithTraceID(ctx, id)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.loginHandler())
		r.Post("/auth/logout", s.logoutHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/sources", sourceCreateHandler(s.sourceUC))
			r.Get("/sources", sourcesListHandler(s.sourceUC))
			r.Get("/sources/{id}", sourceGetHandler(s.sourceUC))
			r.Delete("/sources/{id}", sourceDeleteHandler(s.sourceUC))
			r.Get("/sources/{id}/items", itemsListHandler(s.itemUC))

			r.Post("/items", itemCreateHandler(s.itemUC))
			r.Get("/items/{id}", itemGetHandler(s.itemUC))
			r.Post("/items/{id}/retry", itemRetryHandler(s.itemUC))
			r.Delete("/items/{id}", itemDeleteHandler(s.itemUC))

			r.Post("/ask", askHandler(s.answerUC))
		})
	})
	return r
}

// authMiddleware accepts either the raw admin key as a bearer token or a
// session JWT minted at login.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if hdr := r.Header.Get("Authorization"); hdr != "" {
			parts := strings.SplitN(hdr, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] == s.adminKey {
				next.ServeHTTP(w, r)
				return
			}
		}

		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}

		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		hdr := r.Header.Get("Authorization")
		parts := strings.SplitN(hdr, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] != s.adminKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		token, err := s.auth.Mint(w)
		if err != nil {
			s.log.Error().Err(err).Msg("session mint failed")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
