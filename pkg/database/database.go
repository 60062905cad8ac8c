// pkg/database/database.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/models"
)

// DB enveloppe la connexion MySQL de l'historique des parties
type DB struct {
	conn *sql.DB
}

// LeaderboardEntry représente une ligne du classement
type LeaderboardEntry struct {
	PlayerID    string  `json:"playerId"`
	Name        string  `json:"name"`
	GamesPlayed int     `json:"gamesPlayed"`
	GamesWon    int     `json:"gamesWon"`
	Captures    int     `json:"captures"`
	WinRate     float64 `json:"winRate"`
}

// Connect ouvre la connexion MySQL et prépare le schéma
func Connect(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close ferme la connexion
func (db *DB) Close() error {
	return db.conn.Close()
}

// ensureSchema crée les tables si elles n'existent pas
func (db *DB) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS game_history (
			id INT AUTO_INCREMENT PRIMARY KEY,
			game_id VARCHAR(6) NOT NULL,
			winner_id VARCHAR(64) NOT NULL,
			winner_name VARCHAR(32) NOT NULL,
			duration_seconds INT NOT NULL,
			finished_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_participants (
			id INT AUTO_INCREMENT PRIMARY KEY,
			game_id VARCHAR(6) NOT NULL,
			player_id VARCHAR(64) NOT NULL,
			player_name VARCHAR(32) NOT NULL,
			color VARCHAR(8) NOT NULL,
			seat_index INT NOT NULL,
			pieces_finished INT NOT NULL,
			captures INT NOT NULL DEFAULT 0,
			is_winner BOOLEAN NOT NULL,
			INDEX idx_participants_game (game_id)
		)`,
		`CREATE TABLE IF NOT EXISTS player_stats (
			player_id VARCHAR(64) PRIMARY KEY,
			player_name VARCHAR(32) NOT NULL,
			games_played INT NOT NULL DEFAULT 0,
			games_won INT NOT NULL DEFAULT 0,
			captures INT NOT NULL DEFAULT 0,
			last_played TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// SaveGameResult enregistre une partie terminée et ses participants
func (db *DB) SaveGameResult(result *models.GameResult) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO game_history (game_id, winner_id, winner_name, duration_seconds) VALUES (?, ?, ?, ?)`,
		result.GameID, result.WinnerID, result.WinnerName, int(result.Duration.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert game history: %w", err)
	}

	for _, p := range result.Participants {
		_, err = tx.Exec(
			`INSERT INTO game_participants (game_id, player_id, player_name, color, seat_index, pieces_finished, captures, is_winner)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			result.GameID, p.PlayerID, p.Name, string(p.Color), p.SeatIndex, p.PiecesFinished, p.Captures, p.IsWinner,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", p.PlayerID, err)
		}
	}

	return tx.Commit()
}

// UpdatePlayerStats met à jour les compteurs de chaque participant
func (db *DB) UpdatePlayerStats(result *models.GameResult) error {
	for _, p := range result.Participants {
		won := 0
		if p.IsWinner {
			won = 1
		}

		_, err := db.conn.Exec(
			`INSERT INTO player_stats (player_id, player_name, games_played, games_won, captures)
			 VALUES (?, ?, 1, ?, ?)
			 ON DUPLICATE KEY UPDATE
			 player_name = VALUES(player_name),
			 games_played = games_played + 1,
			 games_won = games_won + VALUES(games_won),
			 captures = captures + VALUES(captures)`,
			p.PlayerID, p.Name, won, p.Captures,
		)
		if err != nil {
			return fmt.Errorf("failed to update stats for %s: %w", p.PlayerID, err)
		}
	}

	return nil
}

// GetLeaderboard retourne les meilleurs joueurs par parties gagnées
func (db *DB) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(
		`SELECT player_id, player_name, games_played, games_won, captures
		 FROM player_stats
		 ORDER BY games_won DESC, games_played ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Name, &e.GamesPlayed, &e.GamesWon, &e.Captures); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		if e.GamesPlayed > 0 {
			e.WinRate = float64(e.GamesWon) / float64(e.GamesPlayed)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
