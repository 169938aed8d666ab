package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"
	"github.com/spendwise/spendwise/pkg/auth"
	"github.com/spendwise/spendwise/pkg/config"
	"github.com/spendwise/spendwise/pkg/finance"
	financeapi "github.com/spendwise/spendwise/pkg/finance/api"
	"github.com/spendwise/spendwise/pkg/login"
	loginapi "github.com/spendwise/spendwise/pkg/login/api"
	"github.com/spendwise/spendwise/pkg/notice"
	"github.com/spendwise/spendwise/pkg/token"
	"github.com/spendwise/spendwise/pkg/twofa"
	twofaapi "github.com/spendwise/spendwise/pkg/twofa/api"
	"github.com/spendwise/spendwise/pkg/user"
	userapi "github.com/spendwise/spendwise/pkg/user/api"
)

func main() {
	logHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})
	slog.SetDefault(slog.New(logHandler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed loading config", "err", err)
		os.Exit(-1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.Database.Database, "host", cfg.Database.Host, "port", cfg.Database.Port, "user", cfg.Database.User)
		os.Exit(-1)
	}
	defer pool.Close()

	notificationManager, err := notice.NewNotificationManager(cfg.Email.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}

	setupExpiry, err := cfg.Jwt.ParseSetupTokenExpiry()
	if err != nil {
		slog.Error("Invalid setup token expiry", "err", err)
		os.Exit(-1)
	}
	sessionExpiry, err := cfg.Jwt.ParseSessionTokenExpiry()
	if err != nil {
		slog.Error("Invalid session token expiry", "err", err)
		os.Exit(-1)
	}

	tokenService := token.NewJwtTokenService(
		cfg.Jwt.Secret,
		cfg.Jwt.Issuer,
		cfg.Jwt.Audience,
		token.WithSetupTokenExpiry(setupExpiry),
		token.WithSessionTokenExpiry(sessionExpiry),
	)

	userService := user.NewUserService(user.NewPostgresUserRepository(pool))
	twoFaService := twofa.NewTwoFaService(twofa.NewPostgresTwoFARepository(pool), userService, tokenService, notificationManager)
	loginService := login.NewLoginService(userService, twoFaService, tokenService)
	financeService := finance.NewFinanceService(finance.NewPostgresFinanceRepository(pool))

	mw := auth.NewMiddleware(cfg.Jwt.Secret, userService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})

	r.Mount("/api/auth", loginapi.Routes(loginapi.NewHandle(loginService, userService, tokenService)))
	r.Mount("/api/2fa", twofaapi.Routes(twofaapi.NewHandle(twoFaService), mw))
	r.Mount("/api/users", userapi.Routes(userapi.NewHandle(userService), mw))
	r.Mount("/api", financeapi.Routes(financeapi.NewHandle(financeService), mw))

	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "err", err)
			os.Exit(-1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "err", err)
	}
}
