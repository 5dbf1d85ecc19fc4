package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/supapay/auth-api/internal/application/account"
	"github.com/supapay/auth-api/internal/application/otp"
	"github.com/supapay/auth-api/internal/config"
	"github.com/supapay/auth-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/supapay/auth-api/internal/infrastructure/jwt"
	"github.com/supapay/auth-api/internal/infrastructure/smtp"
	"github.com/supapay/auth-api/internal/infrastructure/sns"
	"github.com/supapay/auth-api/internal/pkg/password"
	"github.com/supapay/auth-api/internal/transport/http/handler"
	appmiddleware "github.com/supapay/auth-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo *dynamo.AccountRepo
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	accountSvc := account.NewService(account.ServiceDeps{
		Repo:             deps.AccountRepo,
		OTPManager:       otp.NewManager(cfg.OTPTTL, cfg.OTPMaxAttempts),
		Hasher:           password.NewBcryptHasher(),
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		Tokens:           deps.JWTProvider,
		SessionTokenTTL:  cfg.SessionTokenTTL,
		ResetTokenTTL:    cfg.ResetTokenTTL,
		ResetLinkBaseURL: cfg.ResetLinkBaseURL,
	})

	healthH := handler.NewHealthHandler(cfg.AppEnv)
	authH := handler.NewAuthHandler(accountSvc)
	resetH := handler.NewPasswordResetHandler(accountSvc)

	r.Get("/", healthH.Root)
	r.Get("/health", healthH.Health)

	r.Route("/v1/auth", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.With(sensitiveRL.Limit).Post("/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/resend-otp", authH.ResendOTP)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/forgot-password", resetH.Forgot)
		r.With(sensitiveRL.Limit).Post("/reset-password", resetH.Reset)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/me", authH.Me)
		})
	})

	return r
}
