package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appconfig "github.com/privchat/privchat/config"
	"github.com/privchat/privchat/internal/runtime"
	"github.com/privchat/privchat/internal/store"
)

// Run wires the HTTP API and blocks serving it.
func Run(cfg *appconfig.Config, logger *zap.Logger) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	sugar := logger.Sugar()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		sugar.Infow("http error", "status", code, "method", req.Method, "path", req.URL.Path, "ip", c.RealIP(), "err", err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := Migrate("file://migrations", cfg.Storage.Postgres, "up", 0); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return err
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	secret := []byte(cfg.Server.JWTSecret)
	if len(secret) == 0 {
		return fmt.Errorf("jwt secret not configured (server.jwt_secret)")
	}

	// Token revocation is optional; without redis a logout only clears the cookie.
	var revoker runtime.Revoker
	if cfg.Storage.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr(),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s): %w", cfg.Storage.Redis.Addr(), err)
		}
		revoker = runtime.NewRedisRevoker(rdb)
		sugar.Infow("token revocation enabled", "addr", cfg.Storage.Redis.Addr())
	}

	api := e.Group("/api")

	auth := &AuthHandler{Store: st, Secret: secret, TokenTTL: cfg.Server.TokenTTL, Revoker: revoker}
	auth.Register(api.Group("/auth"))

	me := &MeHandler{Store: st}
	me.Register(api.Group("/me"), secret, revoker)

	ph := &ProfilesHandler{Store: st}
	ph.Register(api.Group("/profiles"), secret, revoker)

	mh := &MessagesHandler{Store: st}
	mh.Register(api.Group("/profiles"), secret, revoker)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	sugar.Infow("listening", "addr", addr)
	return e.Start(addr)
}
