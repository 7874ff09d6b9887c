package main

import (
	"log"
	"net/http"
	"time"

	"pet-lost-found/internal/config"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/router"
)

func main() {
	cfg := config.Load()

	r, err := router.NewRouter(router.Options{
		Config: cfg,
		Log:    logger.NewFromEnv(),
	})
	if err != nil {
		log.Fatalf("building router: %v", err)
	}

	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// la normalización de imágenes corre inline en el upload
		WriteTimeout: 60 * time.Second,
	}

	log.Printf("starting server on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
