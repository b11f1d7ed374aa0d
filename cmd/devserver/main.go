package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"tally/internal/config"
	"tally/internal/devserver"
	"tally/internal/devserver/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var receipts devserver.Store

	if cfg.UsePostgres() {
		pg, err := store.Open(cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()

		receipts = pg

		slog.Info("using postgres receipt store", "host", cfg.DB.Host)
	} else {
		receipts = devserver.NewMemoryStore()

		slog.Info("no DB_HOST configured, receipts held in memory")
	}

	handler := devserver.NewHandler(receipts, devserver.NewSigner(cfg.Server.SigningKey))
	router := devserver.NewRouter(handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("starting devserver", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
