package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"kayinbooks/internal/aigen"
	"kayinbooks/internal/auth"
	"kayinbooks/internal/catalog"
	"kayinbooks/internal/comments"
	"kayinbooks/internal/reviews"
	"kayinbooks/pkg/database"
	"kayinbooks/pkg/logger"
	"kayinbooks/pkg/utils"
)

func main() {
	log := logger.New()
	cfg := utils.Load()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Reviews (public reads, admin writes)
	reviewRepo := reviews.NewRepo(db)
	reviewHandler := reviews.NewHandler(reviewRepo, tokenSvc, authRepo, log)
	reviewGroup := router.Group("/reviews")
	reviewHandler.RegisterPublicRoutes(reviewGroup)

	// Comments
	commentRepo := comments.NewRepo(db)
	limiter := comments.NewLimiter(cfg.Comments.CooldownWindow)
	commentHandler := comments.NewHandler(commentRepo, reviewRepo, limiter, log)
	commentHandler.RegisterReviewRoutes(reviewGroup)
	commentHandler.RegisterRoutes(router.Group("/comments"))

	// Book metadata search
	resolver := catalog.NewResolver(log,
		catalog.NewOpenLibrary(cfg.Catalog.Placeholder, cfg.Catalog.Timeout),
		catalog.NewGoogleBooks(cfg.Catalog.Placeholder, cfg.Catalog.Timeout),
	)
	catalog.NewHandler(resolver).RegisterRoutes(router.Group("/books"))

	// Admin-only surface
	admin := router.Group("/")
	admin.Use(auth.RequireAdmin(tokenSvc, authRepo))
	reviewHandler.RegisterAdminRoutes(admin)

	generator := aigen.NewGenerator(cfg.AI, log)
	aigen.NewHandler(generator).RegisterRoutes(admin.Group("/ai"))

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	log.Info().Msg("server stopped")
}
