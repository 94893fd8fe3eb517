package server

import (
	"encoding/json"
	"testing"

	"nhooyr.io/websocket"

	"hangman/internal/game"
)

func TestWSJoinReceivesLobbyAndChatHistory(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	conn := dialAndJoin(ctx, t, env.ts, "solo", "Alice")
	defer conn.Close(websocket.StatusNormalClosure, "")

	view := readLobbyWithPlayers(ctx, t, conn, 1)
	if view.Players[0].Name != "Alice" {
		t.Fatalf("expected Alice seated, got %+v", view.Players)
	}

	var history []json.RawMessage
	mustUnmarshal(t, readUntil(ctx, t, conn, "chatHistory"), &history)
	if len(history) != 0 {
		t.Fatalf("expected empty chat history, got %d entries", len(history))
	}
}

func TestWSRoomFullRejection(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	alice := dialAndJoin(ctx, t, env.ts, "full", "Alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	bob := dialAndJoin(ctx, t, env.ts, "full", "Bob")
	defer bob.Close(websocket.StatusNormalClosure, "")
	readLobbyWithPlayers(ctx, t, alice, 2)

	carol := dialAndJoin(ctx, t, env.ts, "full", "Carol")
	defer carol.Close(websocket.StatusNormalClosure, "")

	msg := wsRead(ctx, t, carol)
	if msg.Type != game.EventRoomFull {
		t.Fatalf("expected roomFull, got %s", msg.Type)
	}
}

// TestWSFullMatch plays a complete one-round match end to end: Alice submits
// CAT/animal, Bob submits DOG/pet, Alice guesses DOG cleanly, Bob guesses CAT
// cleanly, and the match finishes 100-100 as a tie.
func TestWSFullMatch(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	alice := dialAndJoin(ctx, t, env.ts, "duel", "Alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	bob := dialAndJoin(ctx, t, env.ts, "duel", "Bob")
	defer bob.Close(websocket.StatusNormalClosure, "")

	lobby := readLobbyWithPlayers(ctx, t, alice, 2)
	aliceID, bobID := lobby.Players[0].ID, lobby.Players[1].ID

	wsSend(ctx, t, alice, "setRounds", setRoundsPayload{Rounds: 1})
	wsSend(ctx, t, alice, "setReady", setReadyPayload{Ready: true})
	wsSend(ctx, t, bob, "setReady", setReadyPayload{Ready: true})

	var entry game.WordEntryPayload
	mustUnmarshal(t, readUntil(ctx, t, alice, game.EventWordEntry), &entry)
	if entry.Round != 1 || entry.TotalRounds != 1 {
		t.Fatalf("unexpected wordEntry payload: %+v", entry)
	}

	wsSend(ctx, t, alice, "submitWord", submitWordPayload{Word: "cat", Hint: "animal"})
	wsSend(ctx, t, bob, "submitWord", submitWordPayload{Word: "dog", Hint: "pet"})

	var started game.RoundView
	mustUnmarshal(t, readUntil(ctx, t, alice, game.EventRoundStarted), &started)
	if started.Turn != aliceID {
		t.Fatalf("slot 0 guesses round A, got turn %s", started.Turn)
	}
	if len(started.Mask) != 3 {
		t.Fatalf("expected a 3-letter mask, got %v", started.Mask)
	}

	// The hint reveal is shared with both players
	wsSend(ctx, t, alice, "requestHint", nil)
	var hint game.HintPayload
	mustUnmarshal(t, readUntil(ctx, t, bob, game.EventHint), &hint)
	if hint.Hint != "pet" {
		t.Fatalf("expected the setter's hint, got %q", hint.Hint)
	}

	for _, l := range []string{"d", "o", "g"} {
		wsSend(ctx, t, alice, "guess", guessPayload{Letter: l})
	}
	var decided game.RoundDecidedPayload
	mustUnmarshal(t, readUntil(ctx, t, bob, game.EventRoundDecided), &decided)
	if !decided.Won {
		t.Fatalf("expected round A won, got %+v", decided)
	}

	wsSend(ctx, t, alice, "next", nil)
	mustUnmarshal(t, readUntil(ctx, t, bob, game.EventRoundStarted), &started)
	if started.Turn != bobID {
		t.Fatalf("slot 1 guesses round B, got turn %s", started.Turn)
	}

	for _, l := range []string{"c", "a", "t"} {
		wsSend(ctx, t, bob, "guess", guessPayload{Letter: l})
	}
	mustUnmarshal(t, readUntil(ctx, t, alice, game.EventRoundDecided), &decided)
	if !decided.Won {
		t.Fatalf("expected round B won, got %+v", decided)
	}

	wsSend(ctx, t, bob, "next", nil)
	var fin game.MatchFinishedPayload
	mustUnmarshal(t, readUntil(ctx, t, alice, game.EventMatchFinished), &fin)
	if fin.WinnerMsg != "It's a tie!" {
		t.Fatalf("expected a tie, got %q", fin.WinnerMsg)
	}
	if fin.Scores[0].Score != 100 || fin.Scores[1].Score != 100 {
		t.Fatalf("expected 100-100, got %+v", fin.Scores)
	}

	// The finished match was recorded
	rows, err := env.store.ListResults(10)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 recorded result, got %d", len(rows))
	}
	if rows[0].Room != "duel" || rows[0].Winner != "" {
		t.Fatalf("unexpected result row: %+v", rows[0])
	}
}

func TestWSDisconnectResetsRoom(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	alice := dialAndJoin(ctx, t, env.ts, "resets", "Alice")
	bob := dialAndJoin(ctx, t, env.ts, "resets", "Bob")
	defer bob.Close(websocket.StatusNormalClosure, "")
	readLobbyWithPlayers(ctx, t, bob, 2)

	wsSend(ctx, t, alice, "setReady", setReadyPayload{Ready: true})
	wsSend(ctx, t, bob, "setReady", setReadyPayload{Ready: true})
	readUntil(ctx, t, bob, game.EventWordEntry)
	wsSend(ctx, t, bob, "submitWord", submitWordPayload{Word: "dog", Hint: "pet"})

	alice.Close(websocket.StatusNormalClosure, "")

	view := readLobbyWithPlayers(ctx, t, bob, 1)
	if view.Phase != game.PhaseLobby {
		t.Fatalf("expected the room back in the lobby, got %s", view.Phase)
	}
	if view.Players[0].Name != "Bob" {
		t.Fatalf("expected Bob to remain, got %+v", view.Players)
	}
	if view.Players[0].HasWord {
		t.Fatal("the survivor's submitted word must be cleared")
	}
}

func TestWSChatAndUnknownFrames(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	alice := dialAndJoin(ctx, t, env.ts, "chatty", "Alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	bob := dialAndJoin(ctx, t, env.ts, "chatty", "Bob")
	defer bob.Close(websocket.StatusNormalClosure, "")
	readLobbyWithPlayers(ctx, t, bob, 2)

	// Unknown types are dropped without killing the connection
	wsSend(ctx, t, alice, "bogus", map[string]string{"x": "y"})
	wsSend(ctx, t, alice, "chat", chatPayload{Text: "hello there"})

	for i := 0; i < 100; i++ {
		msg := wsRead(ctx, t, bob)
		if msg.Type != "chatMessage" {
			continue
		}
		var chat struct {
			Name string `json:"name"`
			Text string `json:"text"`
		}
		mustUnmarshal(t, msg.Payload, &chat)
		if chat.Name == "Alice" && chat.Text == "hello there" {
			return
		}
	}
	t.Fatal("chat message never arrived")
}
