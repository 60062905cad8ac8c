// internal/server/server_test.go
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/models"
)

type testFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// dialTestServer ouvre une connexion websocket vers le serveur de test
func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// readFrame lit la prochaine trame serveur, avec un délai de garde
func readFrame(t *testing.T, conn *websocket.Conn) *testFrame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}

	var frame testFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("Frame is not valid JSON: %v", err)
	}
	return &frame
}

func sendFrame(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()

	if err := conn.WriteJSON(map[string]interface{}{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("Failed to send %s: %v", msgType, err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status: got %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "running") {
		t.Errorf("Unexpected health body: %s", body)
	}
}

func TestLeaderboardWithoutDatabase(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/leaderboard")
	if err != nil {
		t.Fatalf("GET /leaderboard failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Status: got %d, want 503", resp.StatusCode)
	}
}

func TestCreateAndJoinGame(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	host := dialTestServer(t, srv)
	sendFrame(t, host, "createGame", models.CreateGamePayload{PlayerID: "p1", PlayerName: "Alice"})

	frame := readFrame(t, host)
	if frame.Type != "gameStateUpdate" {
		t.Fatalf("Create reply: got %s, want gameStateUpdate", frame.Type)
	}

	var state models.Session
	if err := json.Unmarshal(frame.Payload, &state); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}
	if len(state.GameID) != 6 {
		t.Fatalf("Game id %q has wrong length", state.GameID)
	}
	if len(state.Players) != 1 || !state.Players[0].IsHost {
		t.Fatalf("Creator not seated as host: %+v", state.Players)
	}

	joiner := dialTestServer(t, srv)
	sendFrame(t, joiner, "joinGame", models.JoinGamePayload{GameID: state.GameID, PlayerID: "p2", PlayerName: "Bob"})

	frame = readFrame(t, joiner)
	if frame.Type != "gameStateUpdate" {
		t.Fatalf("Join reply: got %s, want gameStateUpdate", frame.Type)
	}
	if err := json.Unmarshal(frame.Payload, &state); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}
	if len(state.Players) != 2 {
		t.Errorf("Players after join: got %d, want 2", len(state.Players))
	}

	// L'hôte reçoit aussi la diffusion de l'arrivée
	frame = readFrame(t, host)
	if frame.Type != "gameStateUpdate" {
		t.Errorf("Host broadcast: got %s, want gameStateUpdate", frame.Type)
	}
}

func TestJoinUnknownGame(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	conn := dialTestServer(t, srv)
	sendFrame(t, conn, "joinGame", models.JoinGamePayload{GameID: "ZZZZZZ", PlayerID: "p1", PlayerName: "Alice"})

	frame := readFrame(t, conn)
	if frame.Type != "error" {
		t.Fatalf("Reply: got %s, want error", frame.Type)
	}

	var payload models.ErrorPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("Failed to decode error payload: %v", err)
	}
	want := fmt.Sprintf("Game %s not found.", "ZZZZZZ")
	if payload.Message != want {
		t.Errorf("Error message: got %q, want %q", payload.Message, want)
	}
}

func TestJoinFullGame(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	host := dialTestServer(t, srv)
	sendFrame(t, host, "createGame", models.CreateGamePayload{PlayerID: "p0", PlayerName: "Player 0"})

	frame := readFrame(t, host)
	var state models.Session
	if err := json.Unmarshal(frame.Payload, &state); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}

	for i := 1; i < 4; i++ {
		conn := dialTestServer(t, srv)
		sendFrame(t, conn, "joinGame", models.JoinGamePayload{
			GameID:     state.GameID,
			PlayerID:   fmt.Sprintf("p%d", i),
			PlayerName: fmt.Sprintf("Player %d", i),
		})
		if frame := readFrame(t, conn); frame.Type != "gameStateUpdate" {
			t.Fatalf("Seat %d join reply: got %s", i, frame.Type)
		}
	}

	fifth := dialTestServer(t, srv)
	sendFrame(t, fifth, "joinGame", models.JoinGamePayload{GameID: state.GameID, PlayerID: "p4", PlayerName: "Latecomer"})

	frame = readFrame(t, fifth)
	if frame.Type != "error" {
		t.Fatalf("Fifth join reply: got %s, want error", frame.Type)
	}

	var payload models.ErrorPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("Failed to decode error payload: %v", err)
	}
	if payload.Message != "This game is full." {
		t.Errorf("Error message: got %q", payload.Message)
	}
}

func TestMalformedFrameIsDropped(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	conn := dialTestServer(t, srv)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("Failed to send raw frame: %v", err)
	}

	// La connexion survit : une requête valide qui suit est traitée
	sendFrame(t, conn, "createGame", models.CreateGamePayload{PlayerID: "p1", PlayerName: "Alice"})
	frame := readFrame(t, conn)
	if frame.Type != "gameStateUpdate" {
		t.Errorf("Connection did not survive malformed frame: got %s", frame.Type)
	}
}
