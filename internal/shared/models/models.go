// internal/shared/models/models.go
package models

import (
	"time"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
)

// Piece représente un pion sur le plateau
type Piece struct {
	ID       int                   `json:"id"`
	Color    constants.PlayerColor `json:"color"`
	State    constants.PieceState  `json:"state"`
	Position int                   `json:"position"` // -1 = enclos, 1-52 = boucle, 100-105 = couloir privé
}

// Player représente un joueur dans une partie
type Player struct {
	PlayerID      string                `json:"playerId"`
	Name          string                `json:"name"`
	Color         constants.PlayerColor `json:"color"`
	SeatIndex     int                   `json:"seatIndex"`
	Pieces        []*Piece              `json:"pieces"`
	HasFinished   bool                  `json:"hasFinished"`
	InactiveTurns int                   `json:"inactiveTurns"`
	IsRemoved     bool                  `json:"isRemoved"`
	IsHost        bool                  `json:"isHost"`

	// Captures est un compteur interne pour les statistiques, hors protocole
	Captures int `json:"-"`
}

// ChatMessage représente un message de discussion dans une salle
type ChatMessage struct {
	ID        int                   `json:"id"`
	PlayerID  string                `json:"playerId"`
	Name      string                `json:"name"`
	Color     constants.PlayerColor `json:"color"`
	Text      string                `json:"text"`
	Timestamp int64                 `json:"timestamp"` // epoch millis
}

// Session représente l'état complet d'une partie, tel que diffusé aux clients
type Session struct {
	GameID             string                  `json:"gameId"`
	HostID             string                  `json:"hostId"`
	Players            []*Player               `json:"players"`
	PlayerOrder        []constants.PlayerColor `json:"playerOrder"`
	CurrentPlayerIndex int                     `json:"currentPlayerIndex"`
	CurrentTurnPlayer  string                  `json:"currentTurnPlayerId"`
	DiceValue          *int                    `json:"diceValue"`
	GameStatus         constants.GameStatus    `json:"gameStatus"`
	Winner             *Player                 `json:"winner,omitempty"`
	Message            string                  `json:"message"`
	MovablePieces      []int                   `json:"movablePieces"`
	IsRolling          bool                    `json:"isRolling"`
	IsAnimating        bool                    `json:"isAnimating"`
	TurnTimeLeft       int                     `json:"turnTimeLeft"`
	ChatMessages       []*ChatMessage          `json:"chatMessages"`

	// Champs internes, jamais sérialisés
	CreatedAt time.Time `json:"-"`
	StartedAt time.Time `json:"-"`
}

// GameParticipant décrit un joueur d'une partie terminée (persistance)
type GameParticipant struct {
	PlayerID       string
	Name           string
	Color          constants.PlayerColor
	SeatIndex      int
	PiecesFinished int
	Captures       int
	IsWinner       bool
}

// GameResult décrit une partie terminée, copié hors verrou pour la persistance
type GameResult struct {
	GameID       string
	WinnerID     string
	WinnerName   string
	Duration     time.Duration
	Participants []GameParticipant
}

// Payloads des messages client -> serveur

type CreateGamePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type JoinGamePayload struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type StartGamePayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type RollDicePayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type MovePiecePayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	PieceID  int    `json:"pieceId"`
}

type ChatPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

type LeaveGamePayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type ResetGamePayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type ForceSyncPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewPlayer crée un joueur et ses quatre pions pour le siège donné.
// Les pions portent des ids globaux au salon : siège*4 .. siège*4+3.
func NewPlayer(playerID, name string, seatIndex int) *Player {
	color := constants.ColorOrder[seatIndex]
	pieces := make([]*Piece, constants.PiecesPerPlayer)
	for i := 0; i < constants.PiecesPerPlayer; i++ {
		pieces[i] = &Piece{
			ID:       seatIndex*constants.PiecesPerPlayer + i,
			Color:    color,
			State:    constants.PieceHome,
			Position: constants.HomePosition,
		}
	}

	return &Player{
		PlayerID:  playerID,
		Name:      name,
		Color:     color,
		SeatIndex: seatIndex,
		Pieces:    pieces,
	}
}

// NewSession crée une partie vide en phase de préparation
func NewSession(gameID, hostID string) *Session {
	return &Session{
		GameID:        gameID,
		HostID:        hostID,
		Players:       make([]*Player, 0, constants.MaxPlayers),
		PlayerOrder:   make([]constants.PlayerColor, 0, constants.MaxPlayers),
		GameStatus:    constants.StatusSetup,
		Message:       "Waiting for players...",
		MovablePieces: make([]int, 0),
		ChatMessages:  make([]*ChatMessage, 0),
		TurnTimeLeft:  constants.TurnTimeSeconds,
		CreatedAt:     time.Now(),
	}
}

// PlayerByID retrouve un joueur par son identifiant, retiré ou non
func (s *Session) PlayerByID(playerID string) *Player {
	for _, p := range s.Players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// CurrentPlayer retourne le joueur dont c'est le tour
func (s *Session) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// PieceByID retrouve un pion d'un joueur par son id global
func (p *Player) PieceByID(pieceID int) *Piece {
	for _, piece := range p.Pieces {
		if piece.ID == pieceID {
			return piece
		}
	}
	return nil
}

// Result construit la copie plate d'une partie terminée, à appeler sous verrou
func (s *Session) Result() *GameResult {
	result := &GameResult{
		GameID:       s.GameID,
		Participants: make([]GameParticipant, 0, len(s.Players)),
	}
	if !s.StartedAt.IsZero() {
		result.Duration = time.Since(s.StartedAt)
	}
	if s.Winner != nil {
		result.WinnerID = s.Winner.PlayerID
		result.WinnerName = s.Winner.Name
	}

	for _, p := range s.Players {
		finished := 0
		for _, piece := range p.Pieces {
			if piece.State == constants.PieceFinished {
				finished++
			}
		}
		result.Participants = append(result.Participants, GameParticipant{
			PlayerID:       p.PlayerID,
			Name:           p.Name,
			Color:          p.Color,
			SeatIndex:      p.SeatIndex,
			PiecesFinished: finished,
			Captures:       p.Captures,
			IsWinner:       s.Winner != nil && s.Winner.PlayerID == p.PlayerID,
		})
	}

	return result
}
