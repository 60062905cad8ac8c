// internal/server/routes.go
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Router construit les routes HTTP du serveur de jeu
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.HandleWebSocket)
	r.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)

	return r
}

// corsMiddleware autorise les clients web servis depuis une autre origine
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth répond à la sonde de vie
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Ludo game server is running. Active rooms: %d\n", s.manager.Count())
}

// handleLeaderboard expose le classement des joueurs. Sans base de
// données configurée, la route répond 503.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "Leaderboard is not available", http.StatusServiceUnavailable)
		return
	}

	entries, err := s.db.GetLeaderboard(10)
	if err != nil {
		log.Printf("[Server] Failed to load leaderboard: %v", err)
		http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Printf("[Server] Failed to encode leaderboard: %v", err)
	}
}
