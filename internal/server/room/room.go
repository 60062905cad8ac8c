// internal/server/room/room.go
package room

import (
	"sync"

	"github.com/obrien-tchaleu/ludo-online-go/internal/server/game"
)

// Conn est la vue minimale d'une connexion cliente côté salle.
// Send ne doit jamais bloquer : un client lent est débranché, pas attendu.
type Conn interface {
	Send(data []byte)
}

// Room regroupe le moteur d'une partie et les connexions abonnées à
// ses diffusions.
type Room struct {
	ID     string
	Engine *game.Engine

	mu    sync.RWMutex
	conns map[Conn]struct{}
}

// NewRoom crée une salle pour une partie
func NewRoom(id string) *Room {
	return &Room{
		ID:    id,
		conns: make(map[Conn]struct{}),
	}
}

// Attach abonne une connexion aux diffusions de la salle
func (r *Room) Attach(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = struct{}{}
}

// Detach désabonne une connexion
func (r *Room) Detach(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
}

// Broadcast envoie une trame à toutes les connexions de la salle
func (r *Room) Broadcast(data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for conn := range r.conns {
		conn.Send(data)
	}
}

// IsEmpty indique si plus aucune connexion n'est abonnée
func (r *Room) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns) == 0
}
