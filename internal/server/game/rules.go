// internal/server/game/rules.go
package game

import (
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/models"
)

// Advance calcule la destination d'un pion pour une valeur de dé.
// Un résultat identique à l'entrée signifie que le coup est illégal.
func Advance(piece *models.Piece, dice int) (int, constants.PieceState) {
	switch piece.State {
	case constants.PieceFinished:
		// Terminal : un pion arrivé ne bouge plus
		return piece.Position, piece.State

	case constants.PieceHome:
		if dice != constants.RollToEnter {
			return piece.Position, piece.State
		}
		return constants.StartSquares[piece.Color], constants.PieceActive

	case constants.PieceActive:
		if piece.Position >= constants.FinishStart {
			// Déjà dans le couloir privé
			k := piece.Position - constants.FinishStart + dice
			return stretchDestination(piece, k)
		}

		// Sur la boucle partagée : distance jusqu'à la case pré-couloir
		distToPreHome := (constants.PreHomeSquares[piece.Color] - piece.Position + constants.TotalSquares) % constants.TotalSquares
		if dice > distToPreHome {
			return stretchDestination(piece, dice-distToPreHome-1)
		}

		// Avance sur la boucle, cases numérotées 1..52 avec bouclage
		return ((piece.Position-1+dice)%constants.TotalSquares + 1), constants.PieceActive
	}

	return piece.Position, piece.State
}

// stretchDestination place un pion à la case k du couloir privé.
// Dépasser la case d'arrivée (k >= 6) est illégal.
func stretchDestination(piece *models.Piece, k int) (int, constants.PieceState) {
	if k >= constants.HomeStretchLen {
		return piece.Position, piece.State
	}
	state := constants.PieceActive
	if k == constants.HomeStretchLen-1 {
		state = constants.PieceFinished
	}
	return constants.FinishStart + k, state
}

// MovablePieces retourne les ids des pions du joueur qui peuvent
// légalement jouer cette valeur de dé.
func MovablePieces(player *models.Player, dice int) []int {
	movable := make([]int, 0, constants.PiecesPerPlayer)

	for _, piece := range player.Pieces {
		if piece.State == constants.PieceFinished {
			continue
		}

		newPos, newState := Advance(piece, dice)
		if newPos == piece.Position && newState == piece.State {
			continue
		}

		// Règle du blocage : deux pions alliés sur la case de destination
		// de la boucle interdisent l'arrivée d'un troisième.
		if newPos < constants.FinishStart && countOwnPiecesAt(player, newPos) >= 2 {
			continue
		}

		movable = append(movable, piece.ID)
	}

	return movable
}

// countOwnPiecesAt compte les pions actifs du joueur occupant une case de la boucle
func countOwnPiecesAt(player *models.Player, square int) int {
	count := 0
	for _, piece := range player.Pieces {
		if piece.State == constants.PieceActive && piece.Position == square {
			count++
		}
	}
	return count
}

// IsSafeSquare vérifie si une case de la boucle est sécurisée
func IsSafeSquare(square int) bool {
	for _, safe := range constants.SafeSquares {
		if square == safe {
			return true
		}
	}
	return false
}

// ResolveCapture renvoie à l'enclos tout pion adverse occupant la case de
// destination, si celle-ci est sur la boucle et non sécurisée.
// Retourne le nombre de pions capturés.
func ResolveCapture(session *models.Session, mover *models.Player, square int) int {
	if square >= constants.FinishStart || IsSafeSquare(square) {
		return 0
	}

	captured := 0
	for _, p := range session.Players {
		if p.PlayerID == mover.PlayerID {
			continue
		}
		for _, piece := range p.Pieces {
			if piece.State == constants.PieceActive && piece.Position == square {
				piece.State = constants.PieceHome
				piece.Position = constants.HomePosition
				captured++
			}
		}
	}

	return captured
}

// HasWon vérifie si les quatre pions du joueur sont arrivés
func HasWon(player *models.Player) bool {
	for _, piece := range player.Pieces {
		if piece.State != constants.PieceFinished {
			return false
		}
	}
	return true
}
