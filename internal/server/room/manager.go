// internal/server/room/manager.go
package room

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
)

// Binding associe une connexion à son joueur et sa partie
type Binding struct {
	PlayerID string
	GameID   string
}

// Manager gère le registre des salles actives et les associations
// connexion -> (joueur, partie).
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	bindings map[Conn]Binding
	rand     *rand.Rand
}

// NewManager crée le registre des salles
func NewManager() *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		bindings: make(map[Conn]Binding),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create réserve un identifiant de partie libre et enregistre la salle
// construite par build. La génération et l'insertion se font sous le
// même verrou : deux créations concurrentes ne peuvent pas entrer en
// collision.
func (m *Manager) Create(build func(gameID string) *Room) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	var gameID string
	for {
		gameID = m.generateIDLocked()
		if _, taken := m.rooms[gameID]; !taken {
			break
		}
	}

	r := build(gameID)
	m.rooms[gameID] = r

	log.Printf("[Manager] Room %s created (%d active)", gameID, len(m.rooms))
	return r
}

// generateIDLocked génère un identifiant de partie : 6 caractères base36 majuscules
func (m *Manager) generateIDLocked() string {
	id := make([]byte, constants.GameIDLength)
	for i := range id {
		id[i] = constants.GameIDCharset[m.rand.Intn(len(constants.GameIDCharset))]
	}
	return string(id)
}

// Get retrouve une salle par son identifiant
func (m *Manager) Get(gameID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[gameID]
	return r, ok
}

// Delete retire une salle du registre
func (m *Manager) Delete(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[gameID]; !ok {
		return
	}
	delete(m.rooms, gameID)
	log.Printf("[Manager] Room %s deleted (%d active)", gameID, len(m.rooms))
}

// Bind enregistre l'identité d'une connexion après createGame ou joinGame
func (m *Manager) Bind(conn Conn, playerID, gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[conn] = Binding{PlayerID: playerID, GameID: gameID}
}

// Lookup retrouve l'identité liée à une connexion
func (m *Manager) Lookup(conn Conn) (Binding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bindings[conn]
	return b, ok
}

// Unbind oublie l'identité d'une connexion
func (m *Manager) Unbind(conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, conn)
}

// Count retourne le nombre de salles actives
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
