// internal/server/server.go
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/obrien-tchaleu/ludo-online-go/internal/server/game"
	"github.com/obrien-tchaleu/ludo-online-go/internal/server/room"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/protocol"
	"github.com/obrien-tchaleu/ludo-online-go/pkg/database"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Server porte le registre des salles et le point d'entrée websocket.
// La base de données est optionnelle : sans elle, le serveur tourne
// sans historique ni classement.
// Timings porte les délais de jeu issus de la configuration.
// Une valeur nulle laisse le défaut du moteur.
type Timings struct {
	RollDelay     time.Duration
	AutoPassDelay time.Duration
	TurnTimeout   time.Duration
}

type Server struct {
	manager  *room.Manager
	db       *database.DB
	timings  Timings
	upgrader websocket.Upgrader
}

// New crée le serveur de jeu
func New(db *database.DB) *Server {
	return &Server{
		manager: room.NewManager(),
		db:      db,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// SetTimings applique les délais de jeu aux parties créées ensuite
func (s *Server) SetTimings(t Timings) {
	s.timings = t
}

// client enveloppe une connexion websocket avec sa file d'envoi.
// Toutes les écritures passent par la goroutine writePump.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// Send met une trame en file sans jamais bloquer : un client dont la
// file est pleine perd la trame et se resynchronisera au prochain
// instantané complet.
func (c *client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("[Server] Send buffer full, dropping frame for %s", c.conn.RemoteAddr())
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// writePump écrit la file d'envoi sur la connexion et entretient le
// keepalive ping/pong.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleWebSocket passe la connexion HTTP en websocket et entre dans la
// boucle de lecture.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Server] Upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	log.Printf("[Server] Client connected: %s", conn.RemoteAddr())

	go c.writePump()
	s.readLoop(c)
}

// readLoop lit et dispatche les trames jusqu'à la déconnexion
func (s *Server) readLoop(c *client) {
	defer func() {
		s.disconnect(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Server] Read error: %v", err)
			}
			return
		}

		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			log.Printf("[Server] Dropping malformed frame from %s: %v", c.conn.RemoteAddr(), err)
			continue
		}

		s.dispatch(c, env)
	}
}

// dispatch route une enveloppe vers son handler. Un type inconnu est
// ignoré sans réponse.
func (s *Server) dispatch(c *client, env *protocol.Envelope) {
	switch env.Type {
	case constants.MsgCreateGame:
		s.handleCreateGame(c, env)
	case constants.MsgJoinGame:
		s.handleJoinGame(c, env)
	case constants.MsgStartGame:
		s.handleStartGame(c, env)
	case constants.MsgRollDice:
		s.handleRollDice(c, env)
	case constants.MsgMovePiece:
		s.handleMovePiece(c, env)
	case constants.MsgChatMessage:
		s.handleChatMessage(c, env)
	case constants.MsgLeaveGame:
		s.handleLeaveGame(c, env)
	case constants.MsgResetGame:
		s.handleResetGame(c, env)
	case constants.MsgForceSync:
		s.handleForceSync(c, env)
	}
}

func (s *Server) handleCreateGame(c *client, env *protocol.Envelope) {
	var p models.CreateGamePayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid createGame payload: %v", err)
		return
	}
	if err := protocol.ValidatePlayerName(p.PlayerName); err != nil {
		log.Printf("[Server] Invalid createGame payload: %v", err)
		return
	}

	r := s.manager.Create(func(gameID string) *room.Room {
		rm := room.NewRoom(gameID)
		session := models.NewSession(gameID, p.PlayerID)
		rm.Engine = game.NewEngine(session, game.Callbacks{
			OnStateChanged: rm.Broadcast,
			OnGameOver:     s.recordResult,
		})
		if s.timings.RollDelay > 0 && s.timings.AutoPassDelay > 0 && s.timings.TurnTimeout > 0 {
			rm.Engine.SetTimings(s.timings.RollDelay, s.timings.AutoPassDelay, s.timings.TurnTimeout)
		}
		return rm
	})

	r.Attach(c)
	s.manager.Bind(c, p.PlayerID, r.ID)

	if err := r.Engine.AddPlayer(p.PlayerID, p.PlayerName); err != nil {
		s.sendError(c, err.Error())
		return
	}

	log.Printf("[Server] Game %s created by %s", r.ID, p.PlayerName)
}

func (s *Server) handleJoinGame(c *client, env *protocol.Envelope) {
	var p models.JoinGamePayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid joinGame payload: %v", err)
		return
	}
	if err := protocol.ValidatePlayerName(p.PlayerName); err != nil {
		log.Printf("[Server] Invalid joinGame payload: %v", err)
		return
	}

	r, ok := s.manager.Get(p.GameID)
	if !ok {
		s.sendError(c, fmt.Sprintf(constants.ErrGameNotFoundFmt, p.GameID))
		return
	}

	// Abonné avant l'ajout : la diffusion de bienvenue atteint le joueur
	r.Attach(c)
	if err := r.Engine.AddPlayer(p.PlayerID, p.PlayerName); err != nil {
		r.Detach(c)
		if !errors.Is(err, game.ErrJoinClosed) {
			s.sendError(c, err.Error())
		}
		return
	}
	s.manager.Bind(c, p.PlayerID, r.ID)

	log.Printf("[Server] %s joined game %s", p.PlayerName, p.GameID)
}

func (s *Server) handleStartGame(c *client, env *protocol.Envelope) {
	var p models.StartGamePayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid startGame payload: %v", err)
		return
	}

	r := s.roomFor(c, p.GameID)
	if r == nil {
		return
	}

	if err := r.Engine.Start(p.PlayerID); err != nil {
		s.sendError(c, err.Error())
	}
}

func (s *Server) handleRollDice(c *client, env *protocol.Envelope) {
	var p models.RollDicePayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid rollDice payload: %v", err)
		return
	}

	r := s.roomFor(c, p.GameID)
	if r == nil {
		return
	}

	if err := r.Engine.RollDice(p.PlayerID); err != nil {
		s.sendError(c, err.Error())
	}
}

func (s *Server) handleMovePiece(c *client, env *protocol.Envelope) {
	var p models.MovePiecePayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid movePiece payload: %v", err)
		return
	}

	r := s.roomFor(c, p.GameID)
	if r == nil {
		return
	}

	if err := r.Engine.MovePiece(p.PlayerID, p.PieceID); err != nil {
		s.sendError(c, err.Error())
	}
}

func (s *Server) handleChatMessage(c *client, env *protocol.Envelope) {
	var p models.ChatPayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid chatMessage payload: %v", err)
		return
	}
	if err := protocol.ValidateChatText(p.Text); err != nil {
		return
	}

	r := s.roomFor(c, p.GameID)
	if r == nil {
		return
	}

	r.Engine.AddChat(p.PlayerID, p.Text)
}

func (s *Server) handleLeaveGame(c *client, env *protocol.Envelope) {
	var p models.LeaveGamePayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid leaveGame payload: %v", err)
		return
	}

	r, ok := s.manager.Get(p.GameID)
	if !ok {
		return
	}

	r.Engine.RemovePlayer(p.PlayerID)
	r.Detach(c)
	s.manager.Unbind(c)

	if r.IsEmpty() {
		s.manager.Delete(p.GameID)
	}
}

func (s *Server) handleResetGame(c *client, env *protocol.Envelope) {
	var p models.ResetGamePayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid resetGame payload: %v", err)
		return
	}

	r, ok := s.manager.Get(p.GameID)
	if !ok {
		return
	}

	r.Engine.RequestAdvance(p.PlayerID)
}

func (s *Server) handleForceSync(c *client, env *protocol.Envelope) {
	var p models.ForceSyncPayload
	if err := env.Bind(&p); err != nil {
		log.Printf("[Server] Invalid forceSync payload: %v", err)
		return
	}

	r, ok := s.manager.Get(p.GameID)
	if !ok {
		return
	}

	r.Engine.RequestAdvance(p.PlayerID)
}

// disconnect nettoie l'état d'une connexion fermée : retrait du joueur
// de sa partie, désabonnement, suppression de la salle vide.
func (s *Server) disconnect(c *client) {
	defer log.Printf("[Server] Client disconnected: %s", c.conn.RemoteAddr())

	b, ok := s.manager.Lookup(c)
	if !ok {
		return
	}
	s.manager.Unbind(c)

	r, ok := s.manager.Get(b.GameID)
	if !ok {
		return
	}

	r.Detach(c)
	r.Engine.RemovePlayer(b.PlayerID)

	if r.IsEmpty() {
		s.manager.Delete(b.GameID)
	}
}

// roomFor retrouve la salle d'une requête, ou envoie l'erreur au client
func (s *Server) roomFor(c *client, gameID string) *room.Room {
	r, ok := s.manager.Get(gameID)
	if !ok {
		s.sendError(c, fmt.Sprintf(constants.ErrGameNotFoundFmt, gameID))
		return nil
	}
	return r
}

// sendError envoie une trame d'erreur au seul client concerné
func (s *Server) sendError(c *client, message string) {
	data, err := protocol.EncodeMessage(constants.MsgError, models.ErrorPayload{Message: message})
	if err != nil {
		log.Printf("[Server] Failed to encode error frame: %v", err)
		return
	}
	c.Send(data)
}

// recordResult persiste une partie terminée, hors du verrou de la salle
func (s *Server) recordResult(result *models.GameResult) {
	if s.db == nil {
		return
	}

	go func() {
		if err := s.db.SaveGameResult(result); err != nil {
			log.Printf("[Server] Failed to save game %s: %v", result.GameID, err)
			return
		}
		if err := s.db.UpdatePlayerStats(result); err != nil {
			log.Printf("[Server] Failed to update stats for game %s: %v", result.GameID, err)
		}
	}()
}
