package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-retail-api/internal/application/activity"
	"github.com/go-retail-api/internal/application/ratelimit"
	"github.com/go-retail-api/internal/application/registration"
	"github.com/go-retail-api/internal/application/session"
	"github.com/go-retail-api/internal/application/user"
	"github.com/go-retail-api/internal/config"
	"github.com/go-retail-api/internal/transport/http/handler"
	appmiddleware "github.com/go-retail-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

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

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider, deps.UserRepo)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	dev := cfg.IsDevelopment()
	recorder := activity.NewRecorder(deps.ActivityRepo)
	resendLimiter := ratelimit.New(deps.ActivityRepo, cfg.OTP.ResendPerHour, cfg.OTP.ResendCooldown)

	regDeps := registration.ServiceDeps{
		RegistrationRepo: deps.RegistrationRepo,
		UserRepo:         deps.UserRepo,
		SessionRepo:      deps.SessionRepo,
		Tokens:           deps.JWTProvider,
		Limiter:          resendLimiter,
		Mailer:           deps.Mailer,
		Recorder:         recorder,
		Policy:           cfg.OTP,
		RefreshTTL:       cfg.RefreshTokenTTL,
	}
	if deps.SMSSender != nil {
		regDeps.SMSSender = deps.SMSSender
	}
	regSvc := registration.NewService(regDeps)

	sessDeps := session.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		Tokens:      deps.JWTProvider,
		Recorder:    recorder,
		RefreshTTL:  cfg.RefreshTokenTTL,
		RememberTTL: cfg.RememberMeTTL,
	}
	if deps.GoogleVerifier != nil {
		sessDeps.Google = deps.GoogleVerifier
	}
	sessSvc := session.NewService(sessDeps)

	var userSvc user.Service
	if deps.S3Store != nil {
		userSvc = user.NewService(deps.UserRepo, deps.S3Store)
	} else {
		userSvc = user.NewService(deps.UserRepo, nil)
	}

	healthH := handler.NewHealthHandler()
	registerH := handler.NewRegisterHandler(regSvc, dev)
	sessionH := handler.NewSessionHandler(sessSvc, dev)
	profileH := handler.NewProfileHandler(userSvc, dev)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/register/send-otp", registerH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/register/verify", registerH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/register/resend", registerH.ResendOTP)
		r.With(sensitiveRL.Limit).Post("/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/login/google", sessionH.LoginWithGoogle)
		r.With(sensitiveRL.Limit).Post("/refresh", sessionH.Refresh)
		r.Post("/logout", sessionH.Logout)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/profile", profileH.Get)
			r.Put("/profile", profileH.Update)
			r.Post("/profile/avatar", profileH.UploadAvatar)
		})
	})

	return r
}
