package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mingle-social/mingle/internal/auth"
	"github.com/mingle-social/mingle/internal/config"
	httpapp "github.com/mingle-social/mingle/internal/http"
	"github.com/mingle-social/mingle/internal/media"
	"github.com/mingle-social/mingle/internal/rate"
	"github.com/mingle-social/mingle/internal/store/mongo"
)

func main() {
	cfg := config.Load()

	// Open pings the database; a server that cannot reach its store never
	// starts listening.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDB, cfg.StoreTimeout)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = st.Close(shutdownCtx)
	}()

	authSvc := auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL)
	uploader := media.NewImgBB(cfg.ImgBBKey, cfg.UploadTimeout)
	limiter := rate.NewMemory()

	server := httpapp.NewServer(st, authSvc, uploader, limiter, cfg)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("mingle listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
}
