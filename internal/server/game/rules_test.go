// internal/server/game/rules_test.go
package game

import (
	"testing"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/models"
)

func homePiece(id int, color constants.PlayerColor) *models.Piece {
	return &models.Piece{
		ID:       id,
		Color:    color,
		State:    constants.PieceHome,
		Position: constants.HomePosition,
	}
}

func activePiece(id int, color constants.PlayerColor, position int) *models.Piece {
	return &models.Piece{
		ID:       id,
		Color:    color,
		State:    constants.PieceActive,
		Position: position,
	}
}

func TestAdvanceFromHome(t *testing.T) {
	cases := []struct {
		color constants.PlayerColor
		want  int
	}{
		{constants.ColorGreen, 1},
		{constants.ColorRed, 14},
		{constants.ColorBlue, 27},
		{constants.ColorYellow, 40},
	}

	for _, c := range cases {
		piece := homePiece(0, c.color)
		pos, state := Advance(piece, 6)
		if pos != c.want || state != constants.PieceActive {
			t.Errorf("Home exit for %s: got (%d, %s), want (%d, active)", c.color, pos, state, c.want)
		}
	}
}

func TestAdvanceFromHomeRequiresSix(t *testing.T) {
	piece := homePiece(0, constants.ColorRed)

	for dice := 1; dice <= 5; dice++ {
		pos, state := Advance(piece, dice)
		if pos != constants.HomePosition || state != constants.PieceHome {
			t.Errorf("Home piece moved on a %d: got (%d, %s)", dice, pos, state)
		}
	}
}

func TestAdvanceFinishedIsTerminal(t *testing.T) {
	piece := &models.Piece{
		ID:       0,
		Color:    constants.ColorRed,
		State:    constants.PieceFinished,
		Position: constants.FinishStart + 5,
	}

	pos, state := Advance(piece, 6)
	if pos != piece.Position || state != constants.PieceFinished {
		t.Errorf("Finished piece moved: got (%d, %s)", pos, state)
	}
}

func TestAdvanceLoopWraps(t *testing.T) {
	// Un pion rouge en case 50 avance de 4 : 50 -> 51 -> 52 -> 1 -> 2
	piece := activePiece(0, constants.ColorRed, 50)

	pos, state := Advance(piece, 4)
	if pos != 2 || state != constants.PieceActive {
		t.Errorf("Loop wrap: got (%d, %s), want (2, active)", pos, state)
	}
}

func TestAdvanceEntersHomeStretch(t *testing.T) {
	// Vert sur sa case pré-couloir (51) : un 3 le met en case 2 du couloir
	piece := activePiece(0, constants.ColorGreen, 51)

	pos, state := Advance(piece, 3)
	if pos != constants.FinishStart+2 || state != constants.PieceActive {
		t.Errorf("Stretch entry: got (%d, %s), want (%d, active)", pos, state, constants.FinishStart+2)
	}
}

func TestAdvanceExactFinish(t *testing.T) {
	// Case 3 du couloir, un 2 atteint exactement l'arrivée
	piece := activePiece(0, constants.ColorBlue, constants.FinishStart+3)

	pos, state := Advance(piece, 2)
	if pos != constants.FinishStart+5 || state != constants.PieceFinished {
		t.Errorf("Exact finish: got (%d, %s), want (%d, finished)", pos, state, constants.FinishStart+5)
	}
}

func TestAdvanceOvershootIsIllegal(t *testing.T) {
	piece := activePiece(0, constants.ColorBlue, constants.FinishStart+3)

	pos, state := Advance(piece, 4)
	if pos != piece.Position || state != constants.PieceActive {
		t.Errorf("Overshoot accepted: got (%d, %s)", pos, state)
	}
}

func TestAdvancePreHomeWithSix(t *testing.T) {
	// Depuis la case pré-couloir, un 6 atteint exactement l'arrivée
	piece := activePiece(0, constants.ColorGreen, 51)

	pos, state := Advance(piece, 6)
	if pos != constants.FinishStart+5 || state != constants.PieceFinished {
		t.Errorf("Pre-home six: got (%d, %s), want (%d, finished)", pos, state, constants.FinishStart+5)
	}
}

func TestMovablePiecesHomeNeedsSix(t *testing.T) {
	player := models.NewPlayer("p1", "Alice", 0)

	if movable := MovablePieces(player, 3); len(movable) != 0 {
		t.Errorf("Expected no movable pieces on a 3, got %v", movable)
	}

	movable := MovablePieces(player, 6)
	if len(movable) != constants.PiecesPerPlayer {
		t.Errorf("Expected all pieces movable on a 6, got %v", movable)
	}
}

func TestMovablePiecesBlockade(t *testing.T) {
	player := models.NewPlayer("p1", "Alice", 0)

	// Deux pions rouges en case 20 forment un blocage, un troisième en 17
	// ne peut pas les rejoindre avec un 3.
	player.Pieces[0].State = constants.PieceActive
	player.Pieces[0].Position = 20
	player.Pieces[1].State = constants.PieceActive
	player.Pieces[1].Position = 20
	player.Pieces[2].State = constants.PieceActive
	player.Pieces[2].Position = 17

	movable := MovablePieces(player, 3)
	for _, id := range movable {
		if id == player.Pieces[2].ID {
			t.Errorf("Piece %d should be blocked by its own blockade", id)
		}
	}

	// Avec un 4, la case 21 est libre : le pion redevient jouable
	movable = MovablePieces(player, 4)
	found := false
	for _, id := range movable {
		if id == player.Pieces[2].ID {
			found = true
		}
	}
	if !found {
		t.Errorf("Piece %d should be movable past the blockade, got %v", player.Pieces[2].ID, movable)
	}
}

func TestResolveCapture(t *testing.T) {
	session := models.NewSession("ABC123", "p1")
	red := models.NewPlayer("p1", "Alice", 0)
	green := models.NewPlayer("p2", "Bob", 1)
	session.Players = append(session.Players, red, green)

	green.Pieces[0].State = constants.PieceActive
	green.Pieces[0].Position = 13

	captured := ResolveCapture(session, red, 13)
	if captured != 1 {
		t.Fatalf("Expected 1 capture, got %d", captured)
	}
	if green.Pieces[0].State != constants.PieceHome || green.Pieces[0].Position != constants.HomePosition {
		t.Errorf("Captured piece not sent home: (%d, %s)", green.Pieces[0].Position, green.Pieces[0].State)
	}
}

func TestResolveCaptureSafeSquare(t *testing.T) {
	session := models.NewSession("ABC123", "p1")
	red := models.NewPlayer("p1", "Alice", 0)
	green := models.NewPlayer("p2", "Bob", 1)
	session.Players = append(session.Players, red, green)

	// La case 9 est sécurisée : pas de capture possible
	green.Pieces[0].State = constants.PieceActive
	green.Pieces[0].Position = 9

	if captured := ResolveCapture(session, red, 9); captured != 0 {
		t.Errorf("Capture on safe square: got %d, want 0", captured)
	}
	if green.Pieces[0].State != constants.PieceActive {
		t.Errorf("Piece on safe square was sent home")
	}
}

func TestIsSafeSquare(t *testing.T) {
	for _, square := range []int{1, 9, 14, 22, 27, 35, 40, 48} {
		if !IsSafeSquare(square) {
			t.Errorf("Square %d should be safe", square)
		}
	}
	for _, square := range []int{2, 13, 26, 52} {
		if IsSafeSquare(square) {
			t.Errorf("Square %d should not be safe", square)
		}
	}
}

func TestHasWon(t *testing.T) {
	player := models.NewPlayer("p1", "Alice", 0)
	if HasWon(player) {
		t.Fatalf("Fresh player should not have won")
	}

	for _, piece := range player.Pieces {
		piece.State = constants.PieceFinished
		piece.Position = constants.FinishStart + 5
	}
	if !HasWon(player) {
		t.Errorf("Player with four finished pieces should have won")
	}
}
