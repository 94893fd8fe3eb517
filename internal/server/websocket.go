package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"hangman/internal/session"
)

// Inbound payloads. Unknown or malformed frames are dropped without a reply;
// the outward protocol has no generic error channel.

type joinPayload struct {
	Name string `json:"name"`
}

type setRoundsPayload struct {
	Rounds int `json:"rounds"`
}

type setReadyPayload struct {
	Ready bool `json:"ready"`
}

type submitWordPayload struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

type guessPayload struct {
	Letter string `json:"letter"`
}

type chatPayload struct {
	Text string `json:"text"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sess := s.registry.Get(key)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// First message must be a join
	msg, err := readEnvelope(ctx, conn)
	if err != nil || msg.Type != "join" {
		return
	}
	var join joinPayload
	if err := json.Unmarshal(msg.Payload, &join); err != nil {
		return
	}

	// The connection handle is the participant identity for its lifetime.
	connID := uuid.NewString()
	send := make(chan []byte, session.SendBuffer)

	if !sess.Join(connID, join.Name, send) {
		// room full: the rejection is already queued on send
		drain(ctx, conn, send)
		return
	}
	log.Info().Str("room", key).Str("conn", connID).Msg("participant joined")

	// Writer goroutine: move frames from the channel to the websocket.
	// Leave closes the channel, which ends the loop.
	go func() {
		for frame := range send {
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				return
			}
		}
	}()

	for {
		msg, err := readEnvelope(ctx, conn)
		if err != nil {
			break
		}
		s.handleMessage(sess, connID, msg)
	}

	s.registry.Leave(key, connID)
	log.Info().Str("room", key).Str("conn", connID).Msg("participant left")
}

func (s *Server) handleMessage(sess *session.Session, connID string, msg session.Envelope) {
	switch msg.Type {
	case "setRounds":
		var p setRoundsPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		sess.SetRounds(connID, p.Rounds)
	case "setReady":
		var p setReadyPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		sess.SetReady(connID, p.Ready)
	case "submitWord":
		var p submitWordPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		sess.SubmitWord(connID, p.Word, p.Hint)
	case "requestHint":
		sess.RequestHint(connID)
	case "guess":
		var p guessPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		sess.Guess(connID, p.Letter)
	case "next":
		sess.Advance(connID)
	case "chat":
		var p chatPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		sess.Chat(connID, p.Text)
	}
}

// readEnvelope reads frames until one parses as an envelope or the
// connection fails. Malformed frames are dropped.
func readEnvelope(ctx context.Context, conn *websocket.Conn) (session.Envelope, error) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return session.Envelope{}, err
		}
		var msg session.Envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		return msg, nil
	}
}

// drain writes whatever is queued on send, then returns.
func drain(ctx context.Context, conn *websocket.Conn, send chan []byte) {
	for {
		select {
		case frame := <-send:
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
