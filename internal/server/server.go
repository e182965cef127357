package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/vendordocs/docscout/internal/apperr"
	mw "github.com/vendordocs/docscout/pkg/middleware"
	pkgserver "github.com/vendordocs/docscout/pkg/server"
)

const GracefulShutdownTimeout = 10 * time.Second

// Dependency is a named backend whose health is reported on the health route.
type Dependency struct {
	Name    string
	Checker pkgserver.HealthChecker
}

type Server struct {
	Echo *echo.Echo

	cfg  *Config
	ctx  context.Context
	stop context.CancelFunc
}

func New(cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.DisableHTTP2 = !cfg.UseHttp2

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &Server{
		Echo: e,
		cfg:  cfg,
		ctx:  ctx,
		stop: stop,
	}
}

func (s *Server) SetupMiddlewares() *Server {
	s.Echo.Use(mw.Logger())
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	return s
}

func (s *Server) SetupErrorHandler() *Server {
	s.Echo.HTTPErrorHandler = apperr.GlobalErrorHandler()
	return s
}

// SetupHealthChecks registers the health route. The route reports every
// dependency individually; an unhealthy dependency degrades the response but
// the process keeps serving, since reads may still work store-direct.
func (s *Server) SetupHealthChecks(path string, deps ...Dependency) *Server {
	s.Echo.GET(path, func(c echo.Context) error {
		ctx := c.Request().Context()

		status := "ok"
		checks := make(map[string]string, len(deps))
		for _, dep := range deps {
			if dep.Checker.Healthy(ctx) {
				checks[dep.Name] = "ok"
			} else {
				checks[dep.Name] = "unavailable"
				status = "degraded"
			}
		}

		code := http.StatusOK
		if status == "degraded" {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, map[string]any{
			"status":       status,
			"dependencies": checks,
		})
	})
	return s
}

// Context is cancelled on SIGINT or SIGTERM.
func (s *Server) Context() context.Context {
	return s.ctx
}

func (s *Server) ShutdownSignal() <-chan struct{} {
	return s.ctx.Done()
}

// Start serves until a shutdown signal arrives, then drains in-flight
// requests within GracefulShutdownTimeout.
func (s *Server) Start() error {
	defer s.stop()

	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Echo.Logger.Fatal("shutting down the server")
		}
	}()

	<-s.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := s.Echo.Shutdown(ctx); err != nil {
		s.Echo.Logger.Fatal(err)
		return err
	}
	return nil
}
