// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/obrien-tchaleu/ludo-online-go/internal/server"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/config"
	"github.com/obrien-tchaleu/ludo-online-go/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfg, err := config.Load("configs/server.yaml")
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	var db *database.DB
	if cfg.Database.DSN != "" {
		db, err = database.Connect(cfg.Database.DSN)
		if err != nil {
			// Le jeu tourne sans historique, la base n'est pas critique
			log.Printf("⚠️ Database unavailable, game history disabled: %v", err)
			db = nil
		} else {
			defer db.Close()
			log.Println("💾 Game history database connected")
		}
	}

	srv := server.New(db)
	srv.SetTimings(server.Timings{
		RollDelay:     cfg.RollDelay(),
		AutoPassDelay: cfg.AutoPassDelay(),
		TurnTimeout:   cfg.TurnTimeout(),
	})
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("🎲 Ludo game server listening on port %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
