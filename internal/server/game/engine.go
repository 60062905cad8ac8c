// internal/server/game/engine.go
package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/protocol"
)

// Callbacks définit les callbacks pour les événements du moteur.
// Ils sont invoqués sous le verrou de la session : l'instantané est
// sérialisé avant que le verrou ne soit relâché, la diffusion effective
// se fait ensuite hors verrou.
type Callbacks struct {
	OnStateChanged func(snapshot []byte)
	OnGameOver     func(result *models.GameResult)
}

// Engine gère la logique de tour d'une partie. Tout traitement (messages
// entrants comme événements minutés) est sérialisé par le mutex : une
// salle donnée est logiquement mono-threadée.
type Engine struct {
	session   *models.Session
	mu        sync.Mutex
	rand      *rand.Rand
	dice      func() int
	callbacks Callbacks

	// epoch invalide les timers d'un tour déjà terminé : chaque timer
	// capture l'epoch courant et ne fait rien si celui-ci a changé.
	epoch uint64

	chatSeq int

	rollDelay     time.Duration
	autoPassDelay time.Duration
	turnTimeout   time.Duration
}

// NewEngine crée le moteur d'une partie
func NewEngine(session *models.Session, callbacks Callbacks) *Engine {
	e := &Engine{
		session:       session,
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
		callbacks:     callbacks,
		rollDelay:     constants.RollResolveDelay,
		autoPassDelay: constants.AutoPassDelay,
		turnTimeout:   constants.TurnTimeout,
	}
	e.dice = func() int {
		return e.rand.Intn(constants.DiceMax-constants.DiceMin+1) + constants.DiceMin
	}
	return e
}

// ErrJoinClosed signale qu'un nouveau joueur arrive après le démarrage.
// Rejet silencieux côté client, contrairement aux erreurs visibles.
var ErrJoinClosed = errors.New("game already started")

// SetTimings ajuste les délais du contrôleur depuis la configuration.
// Sans effet une fois la partie démarrée.
func (e *Engine) SetTimings(rollDelay, autoPassDelay, turnTimeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.GameStatus != constants.StatusSetup {
		return
	}

	e.rollDelay = rollDelay
	e.autoPassDelay = autoPassDelay
	e.turnTimeout = turnTimeout
}

// AddPlayer assoit un joueur dans la partie. Si le playerId est déjà
// assis, c'est une reconnexion : l'état est rediffusé sans modification.
// Un nouveau joueur n'est accepté qu'en phase de préparation.
func (e *Engine) AddPlayer(playerID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing := e.session.PlayerByID(playerID); existing != nil {
		e.broadcastLocked()
		return nil
	}

	if e.session.GameStatus != constants.StatusSetup {
		return ErrJoinClosed
	}

	if len(e.session.Players) >= constants.MaxPlayers {
		return errors.New(constants.ErrGameFull)
	}

	seat := len(e.session.Players)
	player := models.NewPlayer(playerID, name, seat)
	player.IsHost = playerID == e.session.HostID

	e.session.Players = append(e.session.Players, player)
	e.session.PlayerOrder = append(e.session.PlayerOrder, player.Color)
	e.session.Message = fmt.Sprintf("%s joined the game.", name)

	e.broadcastLocked()
	return nil
}

// Start démarre la partie. Seul l'hôte peut démarrer, et uniquement
// depuis la phase de préparation.
func (e *Engine) Start(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.GameStatus != constants.StatusSetup {
		return nil
	}

	if playerID != e.session.HostID {
		return errors.New(constants.ErrOnlyHostCanStart)
	}

	e.session.GameStatus = constants.StatusPlaying
	e.session.StartedAt = time.Now()
	e.session.CurrentPlayerIndex = 0
	e.session.CurrentTurnPlayer = e.session.Players[0].PlayerID
	e.session.TurnTimeLeft = constants.TurnTimeSeconds
	e.session.Message = fmt.Sprintf("%s's turn.", e.session.Players[0].Name)

	e.epoch++
	e.scheduleWatchdogLocked()

	e.broadcastLocked()
	return nil
}

// RollDice fait entrer le joueur courant en phase de lancer. Le résultat
// du dé n'est fixé qu'à la résolution, une seconde plus tard.
func (e *Engine) RollDice(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.GameStatus != constants.StatusPlaying {
		return nil
	}

	current := e.session.CurrentPlayer()
	if current == nil || current.PlayerID != playerID {
		return errors.New(constants.ErrNotYourTurn)
	}

	// Lancer déjà en cours ou dé déjà posé : tentative concurrente, ignorée
	if e.session.IsRolling || e.session.DiceValue != nil {
		return nil
	}

	current.InactiveTurns = 0
	e.session.IsRolling = true
	e.session.IsAnimating = true
	e.session.MovablePieces = e.session.MovablePieces[:0]
	e.session.Message = fmt.Sprintf("%s is rolling the dice...", current.Name)

	e.broadcastLocked()

	epoch := e.epoch
	time.AfterFunc(e.rollDelay, func() {
		e.resolveRoll(epoch)
	})

	return nil
}

// resolveRoll fixe la valeur du dé et calcule les pions jouables.
// Sans coup possible, une passe automatique est programmée.
func (e *Engine) resolveRoll(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch || e.session.GameStatus != constants.StatusPlaying || !e.session.IsRolling {
		return
	}

	value := e.dice()
	e.session.DiceValue = &value
	e.session.IsRolling = false
	e.session.IsAnimating = false

	current := e.session.CurrentPlayer()
	e.session.MovablePieces = MovablePieces(current, value)

	if len(e.session.MovablePieces) == 0 {
		e.session.Message = fmt.Sprintf("%s rolled a %d. No moves available.", current.Name, value)
		e.broadcastLocked()

		time.AfterFunc(e.autoPassDelay, func() {
			e.autoPass(epoch)
		})
		return
	}

	e.session.Message = fmt.Sprintf("%s rolled a %d. Move a piece.", current.Name, value)
	e.broadcastLocked()
}

// autoPass passe le tour après un lancer sans coup possible
func (e *Engine) autoPass(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch || e.session.GameStatus != constants.StatusPlaying {
		return
	}

	e.advanceTurnLocked()
	e.broadcastLocked()
}

// MovePiece applique le déplacement d'un pion par le joueur courant :
// avancement, capture, détection de victoire, tour bonus.
func (e *Engine) MovePiece(playerID string, pieceID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.GameStatus != constants.StatusPlaying {
		return nil
	}

	current := e.session.CurrentPlayer()
	if current == nil || current.PlayerID != playerID {
		return errors.New(constants.ErrNotYourTurn)
	}

	if e.session.DiceValue == nil {
		return nil
	}

	if !containsInt(e.session.MovablePieces, pieceID) {
		return nil
	}

	piece := current.PieceByID(pieceID)
	if piece == nil {
		return nil
	}

	dice := *e.session.DiceValue
	piece.Position, piece.State = Advance(piece, dice)

	captured := 0
	if piece.State == constants.PieceActive && piece.Position < constants.FinishStart {
		captured = ResolveCapture(e.session, current, piece.Position)
		current.Captures += captured
	}

	e.session.DiceValue = nil
	e.session.MovablePieces = e.session.MovablePieces[:0]

	if HasWon(current) {
		current.HasFinished = true
		e.session.GameStatus = constants.StatusFinished
		e.session.Winner = current
		e.session.Message = fmt.Sprintf("%s wins the game!", current.Name)
		e.epoch++

		e.broadcastLocked()
		if e.callbacks.OnGameOver != nil {
			e.callbacks.OnGameOver(e.session.Result())
		}
		return nil
	}

	// Tour bonus : un 6 ou une capture redonne la main au même joueur
	if dice == constants.RollToEnter || captured > 0 {
		if captured > 0 {
			e.session.Message = fmt.Sprintf("%s captured a piece and rolls again!", current.Name)
		} else {
			e.session.Message = fmt.Sprintf("%s rolled a 6 and rolls again!", current.Name)
		}
		e.broadcastLocked()
		return nil
	}

	e.advanceTurnLocked()
	e.broadcastLocked()
	return nil
}

// AddChat ajoute un message de discussion horodaté par le serveur
func (e *Engine) AddChat(playerID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	player := e.session.PlayerByID(playerID)
	if player == nil {
		return nil
	}

	e.chatSeq++
	e.session.ChatMessages = append(e.session.ChatMessages, &models.ChatMessage{
		ID:        e.chatSeq,
		PlayerID:  player.PlayerID,
		Name:      player.Name,
		Color:     player.Color,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})

	e.broadcastLocked()
	return nil
}

// RemovePlayer marque un joueur comme retiré. S'il avait la main, le
// tour passe et les timers en attente sont invalidés. Idempotent.
func (e *Engine) RemovePlayer(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	player := e.session.PlayerByID(playerID)
	if player == nil || player.IsRemoved {
		return
	}

	player.IsRemoved = true
	e.session.Message = fmt.Sprintf("%s left the game.", player.Name)

	if e.session.GameStatus == constants.StatusPlaying && e.session.CurrentPlayer() == player {
		e.advanceTurnLocked()
	}

	e.broadcastLocked()
}

// RequestAdvance passe le tour à la demande de l'hôte (resetGame et
// forceSync : déblocage au mieux, pas de remise à zéro).
func (e *Engine) RequestAdvance(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playerID != e.session.HostID {
		return
	}
	if e.session.GameStatus != constants.StatusPlaying {
		return
	}

	e.advanceTurnLocked()
	e.broadcastLocked()
}

// advanceTurnLocked termine le tour courant (les timers en attente
// deviennent caducs) et donne la main au prochain joueur non retiré.
func (e *Engine) advanceTurnLocked() {
	e.epoch++
	e.session.DiceValue = nil
	e.session.IsRolling = false
	e.session.IsAnimating = false
	e.session.MovablePieces = e.session.MovablePieces[:0]

	count := len(e.session.Players)
	if count == 0 {
		return
	}

	for i := 1; i <= count; i++ {
		idx := (e.session.CurrentPlayerIndex + i) % count
		if e.session.Players[idx].IsRemoved {
			continue
		}

		e.session.CurrentPlayerIndex = idx
		e.session.CurrentTurnPlayer = e.session.Players[idx].PlayerID
		e.session.TurnTimeLeft = constants.TurnTimeSeconds
		e.session.Message = fmt.Sprintf("%s's turn.", e.session.Players[idx].Name)

		e.scheduleWatchdogLocked()
		return
	}

	// Tous les joueurs sont retirés : personne à qui donner la main
}

// scheduleWatchdogLocked programme la passe automatique de fin de tour
func (e *Engine) scheduleWatchdogLocked() {
	if e.turnTimeout <= 0 {
		return
	}

	epoch := e.epoch
	time.AfterFunc(e.turnTimeout, func() {
		e.watchdog(epoch)
	})
}

// watchdog retire la main à un joueur resté inactif tout son tour
func (e *Engine) watchdog(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch || e.session.GameStatus != constants.StatusPlaying {
		return
	}

	if current := e.session.CurrentPlayer(); current != nil {
		current.InactiveTurns++
	}

	e.advanceTurnLocked()
	e.broadcastLocked()
}

// broadcastLocked sérialise l'instantané complet sous verrou et le
// transmet au callback de diffusion.
func (e *Engine) broadcastLocked() {
	if e.callbacks.OnStateChanged == nil {
		return
	}

	data, err := protocol.EncodeMessage(constants.MsgGameStateUpdate, e.session)
	if err != nil {
		log.Printf("[Engine] Failed to serialize snapshot for game %s: %v", e.session.GameID, err)
		return
	}

	e.callbacks.OnStateChanged(data)
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
