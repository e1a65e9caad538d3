package server

import (
	"database/sql"
	"net/http"

	logger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"figaros/internal/config"
	"figaros/internal/handlers"
	authh "figaros/internal/handlers/auth"
	turnosh "figaros/internal/handlers/turnos"
	"figaros/internal/mailer"
	"figaros/internal/middleware"
	"figaros/internal/tokens"
	"figaros/internal/turnos"
	"figaros/internal/ws"
)

type Server struct {
	Cfg        *config.Config
	DB         *sql.DB
	TurnoStore turnos.Store
}

func NewServer(cfg *config.Config, db *sql.DB, turnoStore turnos.Store) *Server {
	return &Server{Cfg: cfg, DB: db, TurnoStore: turnoStore}
}

func HandlerFunc(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}

func (s *Server) Run() error {
	return http.ListenAndServe(":"+s.Cfg.Port, s.Router())
}

// Router wires every route and its dependencies.
func (s *Server) Router() http.Handler {
	validate := validator.New()
	tokenSvc := tokens.NewService(tokens.NewMySQLStore(s.DB))
	mail := mailer.New(s.Cfg.SMTPHost, s.Cfg.SMTPPort, s.Cfg.SMTPUser, s.Cfg.SMTPPass, s.Cfg.MailFrom, s.Cfg.APIURL)
	rec := turnos.NewReconciler(s.TurnoStore)
	hub := ws.NewHub()

	r := chi.NewRouter()

	// middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.Logger("router", log.StandardLogger()))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.Cfg.AppURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", handlers.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", HandlerFunc(&authh.RegisterHandler{
			DB:       s.DB,
			Tokens:   tokenSvc,
			Mailer:   mail,
			Validate: validate,
		}))
		r.Post("/login", HandlerFunc(&authh.LoginHandler{
			DB:         s.DB,
			JWTSecret:  s.Cfg.JWTSecret,
			JWTExpires: s.Cfg.JWTExpires,
			Validate:   validate,
		}))
		r.Get("/verify", HandlerFunc(&authh.VerifyHandler{Tokens: tokenSvc, AppURL: s.Cfg.AppURL}))
		r.Post("/resend", HandlerFunc(&authh.ResendHandler{DB: s.DB, Tokens: tokenSvc, Mailer: mail}))
		r.Post("/logout", HandlerFunc(&authh.LogoutHandler{}))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(s.Cfg.JWTSecret))
			r.Get("/me", HandlerFunc(&authh.MeHandler{DB: s.DB}))
		})
	})

	// Booking routes stay public; the kiosk in the shop books without an
	// account.
	r.Route("/turnos", func(r chi.Router) {
		r.Post("/batch", HandlerFunc(&turnosh.BatchHandler{Rec: rec, Hub: hub, Validate: validate}))
		r.Get("/", HandlerFunc(&turnosh.ListHandler{Rec: rec}))
		r.Patch("/{id}", HandlerFunc(&turnosh.UpdateHandler{Rec: rec, Hub: hub, Validate: validate}))
		r.Delete("/{id}", HandlerFunc(&turnosh.DeleteHandler{Rec: rec, Hub: hub}))
	})

	// Live booking-change feed
	r.Get("/ws", HandlerFunc(&handlers.WSHandler{Hub: hub}))

	return r
}
