package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"glasstask/internal/auth"
	"glasstask/internal/config"
	"glasstask/internal/crypt"
	"glasstask/internal/db"
)

type Server struct {
	router *chi.Mux
	config *config.Config
}

func NewServer(
	cfg *config.Config,
	database *db.DB,
	sessions *auth.SessionStore,
	mailer auth.CodeSender,
) (*Server, error) {
	sendCodeLimiter := NewRateLimiter(5, time.Minute)
	verifyLimiter := NewRateLimiter(10, time.Minute)
	loginLimiter := NewRateLimiter(10, time.Minute)

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	noteBox, err := crypt.NewBox(cfg.Notes.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("initializing note encryption: %w", err)
	}

	userRepo := db.NewUserRepository(database)
	taskRepo := db.NewTaskRepository(database)
	noteRepo := db.NewNoteRepository(database)
	financeRepo := db.NewFinanceRepository(database)

	authHandler := NewAuthHandler(userRepo, sessions, tokenService, mailer)
	userHandler := NewUserHandler(userRepo)
	taskHandler := NewTaskHandler(taskRepo)
	noteHandler := NewNoteHandler(noteRepo, noteBox)
	financeHandler := NewFinanceHandler(financeRepo)
	healthHandler := NewHealthHandler(database)

	authMiddleware := NewAuthMiddleware(tokenService)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(slogRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(httprate.LimitByIP(300, time.Minute))

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Use(maxBodySizeMiddleware(10 << 20)) // 10 MB, matches the original body limit

		r.Route("/auth", func(r chi.Router) {
			r.With(RateLimitMiddleware(sendCodeLimiter)).Post("/send-code", authHandler.SendCode)
			r.With(RateLimitMiddleware(verifyLimiter)).Post("/verify-code", authHandler.VerifyCode)
			r.Post("/register", authHandler.Register)
			r.With(RateLimitMiddleware(loginLimiter)).Post("/login", authHandler.Login)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/", taskHandler.GetAll)
			r.Post("/", taskHandler.Create)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
			r.Delete("/erase/all", taskHandler.EraseAll)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/", noteHandler.GetAll)
			r.Post("/", noteHandler.Create)
			r.Delete("/{id}", noteHandler.Delete)
		})

		r.Route("/finance", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/", financeHandler.GetAll)
			r.Post("/", financeHandler.Create)
			r.Put("/{id}", financeHandler.Update)
			r.Delete("/{id}", financeHandler.Delete)
			r.Get("/budget/summary", financeHandler.Summary)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/me", userHandler.GetMe)
			r.Patch("/me", userHandler.UpdateMe)
		})
	})

	return &Server{
		router: r,
		config: cfg,
	}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func maxBodySizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
			"request_id", getRequestID(r),
		)
	})
}
