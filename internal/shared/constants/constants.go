// internal/shared/constants/constants.go
package constants

import "time"

const (
	// Configuration réseau
	DefaultServerPort = "8080"
	MaxPlayers        = 4

	// Configuration du plateau
	TotalSquares    = 52
	HomeStretchLen  = 6
	PiecesPerPlayer = 4

	// FinishStart encode la zone d'arrivée : position >= FinishStart
	// signifie case k = position - FinishStart du couloir privé (0..5).
	FinishStart = 100

	// HomePosition est la position d'un pion encore dans son enclos.
	HomePosition = -1

	// Règles du jeu
	DiceMin     = 1
	DiceMax     = 6
	RollToEnter = 6

	// Timings du contrôleur de tour
	RollResolveDelay = 1000 * time.Millisecond
	AutoPassDelay    = 1500 * time.Millisecond
	TurnTimeout      = 30 * time.Second
	TurnTimeSeconds  = 30

	// Identifiants de partie
	GameIDLength  = 6
	GameIDCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Messages d'erreur visibles côté client
	ErrGameNotFoundFmt  = "Game %s not found."
	ErrGameFull         = "This game is full."
	ErrOnlyHostCanStart = "Only the host can start."
	ErrNotYourTurn      = "It's not your turn!"
)

// Couleurs des joueurs
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorGreen  PlayerColor = "green"
	ColorYellow PlayerColor = "yellow"
	ColorBlue   PlayerColor = "blue"
)

// ColorOrder est l'ordre canonique d'attribution des couleurs par siège.
var ColorOrder = []PlayerColor{ColorRed, ColorGreen, ColorYellow, ColorBlue}

// États d'un pion
type PieceState string

const (
	PieceHome     PieceState = "home"
	PieceActive   PieceState = "active"
	PieceFinished PieceState = "finished"
)

// États d'une partie
type GameStatus string

const (
	StatusSetup    GameStatus = "setup"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// Types de messages réseau. Les valeurs sont celles du protocole filaire.
type MessageType string

const (
	// Client -> Serveur
	MsgCreateGame  MessageType = "createGame"
	MsgJoinGame    MessageType = "joinGame"
	MsgStartGame   MessageType = "startGame"
	MsgRollDice    MessageType = "rollDice"
	MsgMovePiece   MessageType = "movePiece"
	MsgChatMessage MessageType = "chatMessage"
	MsgLeaveGame   MessageType = "leaveGame"
	MsgResetGame   MessageType = "resetGame"
	MsgForceSync   MessageType = "forceSync"

	// Serveur -> Client
	MsgGameStateUpdate MessageType = "gameStateUpdate"
	MsgError           MessageType = "error"
)

// Cases de départ sur la boucle partagée (numérotée 1..52).
var StartSquares = map[PlayerColor]int{
	ColorGreen:  1,
	ColorRed:    14,
	ColorBlue:   27,
	ColorYellow: 40,
}

// Dernière case de la boucle avant l'entrée du couloir privé.
var PreHomeSquares = map[PlayerColor]int{
	ColorGreen:  51,
	ColorRed:    12,
	ColorBlue:   25,
	ColorYellow: 38,
}

// Cases sécurisées : aucune capture possible.
var SafeSquares = []int{1, 9, 14, 22, 27, 35, 40, 48}
