package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"nhooyr.io/websocket"

	"hangman/internal/game"
	"hangman/internal/session"
	"hangman/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts       *httptest.Server
	registry *session.Registry
	store    *storage.Store
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	registry := session.NewRegistry(store)

	webFS := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html><body>hangman</body></html>")},
	}
	srv := New(registry, store, webFS)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, registry: registry, store: store}
}

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, key string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/rooms/" + key + "/ws"
}

// dialAndJoin opens a websocket to a room and joins with the given name.
// The caller is responsible for closing the connection.
func dialAndJoin(ctx context.Context, t *testing.T, ts *httptest.Server, key, name string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, key), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	wsSend(ctx, t, conn, "join", joinPayload{Name: name})
	return conn
}

func wsSend(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		p, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		raw = p
	}
	data, err := json.Marshal(session.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("ws write: %v", err)
	}
}

func wsRead(ctx context.Context, t *testing.T, conn *websocket.Conn) session.Envelope {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var msg session.Envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal ws message: %v", err)
	}
	return msg
}

// readUntil reads frames until one of the wanted type arrives, skipping
// everything else.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string) json.RawMessage {
	t.Helper()
	for i := 0; i < 100; i++ {
		msg := wsRead(ctx, t, conn)
		if msg.Type == msgType {
			return msg.Payload
		}
	}
	t.Fatalf("did not receive %s within 100 frames", msgType)
	return nil
}

// readLobbyWithPlayers reads lobby frames until one lists n players.
func readLobbyWithPlayers(ctx context.Context, t *testing.T, conn *websocket.Conn, n int) game.LobbyView {
	t.Helper()
	for i := 0; i < 100; i++ {
		var view game.LobbyView
		mustUnmarshal(t, readUntil(ctx, t, conn, game.EventLobby), &view)
		if len(view.Players) == n {
			return view
		}
	}
	t.Fatalf("no lobby frame with %d players", n)
	return game.LobbyView{}
}

func mustUnmarshal(t *testing.T, data json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
}
