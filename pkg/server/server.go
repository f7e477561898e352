// Package server exposes the scan pipeline over HTTP: the manual scan
// trigger, webhook enrollment, the signed push-event endpoint, share and
// settings management, and the status badge.
package server

import (
	"context"
	"crypto/cipher"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ca-risken/common/pkg/logging"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shipsafe/cyberwatch/pkg/auth"
	"github.com/shipsafe/cyberwatch/pkg/db"
	"github.com/shipsafe/cyberwatch/pkg/github"
	"github.com/shipsafe/cyberwatch/pkg/notify"
	"github.com/shipsafe/cyberwatch/pkg/scanner"
)

type ctxKey int

const userCtxKey ctxKey = iota

// Dependencies are the collaborators the HTTP layer orchestrates. All of
// them are interfaces so handler tests can substitute fakes.
type Dependencies struct {
	SessionVerifier auth.SessionVerifier
	Scanner         scanner.Runner
	GithubClient    github.RepositoryClient
	ScanRepo        db.ScanRepository
	MonitoredRepo   db.MonitoredRepoRepository
	SettingsRepo    db.UserSettingsRepository
	UserRepo        db.UserRepository
	Notifier        notify.Notifier
	CipherBlock     cipher.Block
	AppURL          string
}

type Server struct {
	router        *chi.Mux
	verifier      auth.SessionVerifier
	scanner       scanner.Runner
	githubClient  github.RepositoryClient
	scanRepo      db.ScanRepository
	monitoredRepo db.MonitoredRepoRepository
	settingsRepo  db.UserSettingsRepository
	userRepo      db.UserRepository
	notifier      notify.Notifier
	cipherBlock   cipher.Block
	appURL        string
	logger        logging.Logger

	// detached tracks webhook-triggered scans running past their request.
	detached sync.WaitGroup
}

func NewServer(deps *Dependencies, logger logging.Logger) *Server {
	s := &Server{
		verifier:      deps.SessionVerifier,
		scanner:       deps.Scanner,
		githubClient:  deps.GithubClient,
		scanRepo:      deps.ScanRepo,
		monitoredRepo: deps.MonitoredRepo,
		settingsRepo:  deps.SettingsRepo,
		userRepo:      deps.UserRepo,
		notifier:      deps.Notifier,
		cipherBlock:   deps.CipherBlock,
		appURL:        strings.TrimRight(deps.AppURL, "/"),
		logger:        logger,
	}
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	s.router = r
	s.routes()
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

// WaitDetached blocks until in-flight detached scans complete. Used by
// graceful shutdown so an automated scan is not killed mid-pipeline.
func (s *Server) WaitDetached() {
	s.detached.Wait()
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/webhooks/github", s.handleGithubWebhook)
		r.Get("/badge/{owner}/{repo}", s.handleBadge)
		r.Get("/share/{slug}", s.handleSharedScan)
		r.Post("/scan/{id}/share", s.handleShareToggle)
		r.Delete("/scan/{id}", s.handleDeleteScan)
		r.Get("/user/settings", s.handleGetSettings)
		r.Post("/user/settings", s.handleSaveSettings)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/scan", s.handleScan)
			r.Post("/cyberwatch/enroll", s.handleEnroll)
			r.Post("/cyberwatch/toggle", s.handleMonitorToggle)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Infof(r.Context(), "Request completed: method=%s, path=%s, status=%d, duration=%s",
				r.Method, r.URL.Path, ww.Status(), time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}

// requireSession verifies the bearer credential against the session
// authority and stores the resolved user in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized: Missing token")
			return
		}
		user, err := s.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, user)))
	})
}

func userFromContext(ctx context.Context) *auth.User {
	user, _ := ctx.Value(userCtxKey).(*auth.User)
	return user
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
