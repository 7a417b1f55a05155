// Package server assembles the HTTP API and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/config"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/services/account"
	"github.com/ashfaq-akash/LittleLemonApi/internal/services/cart"
	"github.com/ashfaq-akash/LittleLemonApi/internal/services/catalog"
	"github.com/ashfaq-akash/LittleLemonApi/internal/services/order"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
	"github.com/ashfaq-akash/LittleLemonApi/internal/web"
)

// Server bundles the services behind the router
type Server struct {
	Accounts *account.Service
	Catalog  *catalog.Service
	Carts    *cart.Service
	Orders   *order.Service

	router *gin.Engine
	store  store.Store
	logger *logger.Logger
}

// New wires the services onto st and builds the router
func New(cfg *config.Config, st store.Store, events order.EventPublisher, log *logger.Logger) (*Server, error) {
	anon, err := web.ParseRate(cfg.Throttle.Anon)
	if err != nil {
		return nil, fmt.Errorf("anon throttle: %w", err)
	}
	user, err := web.ParseRate(cfg.Throttle.User)
	if err != nil {
		return nil, fmt.Errorf("user throttle: %w", err)
	}

	s := &Server{
		Accounts: account.NewService(st, log),
		Catalog:  catalog.NewService(st, log, cfg.API.DefaultPerPage, cfg.API.MaxPerPage),
		Carts:    cart.NewService(st, log),
		Orders:   order.NewService(st, events, log),
		store:    st,
		logger:   log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), web.WithLogging(log))
	r.GET("/health", s.health)

	api := r.Group("/api", web.Authenticate(s.Accounts, log), web.NewThrottle(anon, user).Middleware())
	api.GET("/throttle", func(c *gin.Context) {
		web.Message(c, http.StatusOK, "Throttle check.")
	})

	accounts := account.NewHandler(s.Accounts, log)
	accounts.RegisterPublic(api)

	private := api.Group("", web.RequireAuth(log))
	accounts.Register(private)
	catalog.NewHandler(s.Catalog, log).Register(private)
	cart.NewHandler(s.Carts, log).Register(private)
	order.NewHandler(s.Orders, log).Register(private)

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health_check_failed", "Store is unreachable", web.RequestID(c), err, nil)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	requestID := logger.GenerateRequestID()
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("service_started", fmt.Sprintf("API listening on port %d", cfg.Port), requestID, map[string]interface{}{
			"port": cfg.Port,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("graceful_shutdown", "Shutting down HTTP server", requestID, nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
