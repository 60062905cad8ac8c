// internal/shared/protocol/protocol.go
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
)

// Envelope représente l'enveloppe d'un message filaire {type, payload}
type Envelope struct {
	Type    constants.MessageType `json:"type"`
	Payload json.RawMessage       `json:"payload"`
}

// DecodeEnvelope décode une trame brute en enveloppe
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("message type is empty")
	}
	return &env, nil
}

// Bind extrait le payload de l'enveloppe dans la structure cible
func (e *Envelope) Bind(target interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// EncodeMessage encode un message serveur -> client complet
func EncodeMessage(msgType constants.MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(struct {
		Type    constants.MessageType `json:"type"`
		Payload interface{}           `json:"payload"`
	}{Type: msgType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}

// ValidatePlayerName valide un nom de joueur
func ValidatePlayerName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("player name cannot be empty")
	}

	if len(name) > 20 {
		return fmt.Errorf("player name must be at most 20 characters")
	}

	return nil
}

// ValidateGameID vérifie le format d'un identifiant de partie :
// exactement 6 caractères base36 majuscules.
func ValidateGameID(gameID string) error {
	if len(gameID) != constants.GameIDLength {
		return fmt.Errorf("game id must be %d characters", constants.GameIDLength)
	}

	for _, char := range gameID {
		if !isGameIDChar(char) {
			return fmt.Errorf("game id contains invalid characters")
		}
	}

	return nil
}

// isGameIDChar vérifie si un caractère est valide pour un identifiant de partie
func isGameIDChar(char rune) bool {
	return (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')
}

// ValidateChatText valide le texte d'un message de discussion
func ValidateChatText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("chat text cannot be empty")
	}

	if len(text) > 500 {
		return fmt.Errorf("chat text must be at most 500 characters")
	}

	return nil
}
