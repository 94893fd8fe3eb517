// Package session ties live connections to a match. A Session owns the
// member send-channels, the chat sidebar, and the delivery of engine events,
// and it serializes every action on one mutex so broadcasts always reflect a
// fully settled state and every member observes the same snapshot sequence.
package session

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hangman/internal/game"
)

const (
	chatLimit  = 200 // retained entries, oldest dropped
	chatMaxLen = 400
	// SendBuffer is the outbound frame buffer per member; frames are dropped
	// when a member falls this far behind.
	SendBuffer = 64
)

// Envelope is the wire format for every message in either direction.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ChatMessage is one entry in the session's chat sidebar. Chat carries no
// game semantics.
type ChatMessage struct {
	Name string `json:"name"`
	Text string `json:"text"`
	TS   int64  `json:"ts"` // unix milliseconds
}

// ResultSink records finished matches. Implemented by storage.Store.
type ResultSink interface {
	SaveResult(room, winner, scoresJSON string) error
}

// Member is one connected participant.
type Member struct {
	ID   string
	Send chan []byte // outbound frames
}

// Session is one live room: a match plus its connections and chat log.
type Session struct {
	Key string

	mu      sync.Mutex
	match   *game.Match
	members map[string]*Member
	chat    []ChatMessage
	results ResultSink
}

// New creates an empty session for a room key.
func New(key string, results ResultSink) *Session {
	return &Session{
		Key:     key,
		match:   game.NewMatch(),
		members: make(map[string]*Member),
		results: results,
	}
}

// Join seats a connection in the room. On success the send channel receives
// all subsequent frames for this member, starting with the lobby snapshot
// and the chat history. Returns false if the room is full; the rejection has
// then already been queued on send and the member was not admitted.
func (s *Session) Join(id, name string, send chan []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.match.Join(id, name)
	p := s.match.Participant(id)
	if p == nil {
		for _, ev := range events {
			trySend(send, encode(ev.Type, ev.Payload))
		}
		return false
	}
	s.members[id] = &Member{ID: id, Send: send}
	s.deliverLocked(events)
	history := s.chat
	if history == nil {
		history = []ChatMessage{}
	}
	trySend(send, encode("chatHistory", history))
	s.pushChatLocked(ChatMessage{Name: "System", Text: p.Name + " joined", TS: time.Now().UnixMilli()})
	return true
}

// Leave removes a connection and closes its send channel. The match resets
// to a fresh lobby around any survivor and the chat log is rebuilt: a match
// does not survive either player leaving.
func (s *Session) Leave(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return
	}
	var name string
	if p := s.match.Participant(id); p != nil {
		name = p.Name
	}
	close(m.Send)
	delete(s.members, id)
	events := s.match.Leave(id)
	s.chat = nil
	s.deliverLocked(events)
	if name != "" {
		s.pushChatLocked(ChatMessage{Name: "System", Text: name + " left", TS: time.Now().UnixMilli()})
	}
}

// Game actions, each applied atomically with its event delivery.

func (s *Session) SetRounds(id string, n int) {
	s.apply(func(m *game.Match) []game.Event { return m.SetRounds(id, n) })
}

func (s *Session) SetReady(id string, ready bool) {
	s.apply(func(m *game.Match) []game.Event { return m.SetReady(id, ready) })
}

func (s *Session) SubmitWord(id, word, hint string) {
	s.apply(func(m *game.Match) []game.Event { return m.SubmitWord(id, word, hint) })
}

func (s *Session) RequestHint(id string) {
	s.apply(func(m *game.Match) []game.Event { return m.RequestHint(id) })
}

func (s *Session) Guess(id, letter string) {
	s.apply(func(m *game.Match) []game.Event { return m.Guess(id, letter) })
}

func (s *Session) Advance(id string) {
	s.apply(func(m *game.Match) []game.Event { return m.Advance(id) })
}

func (s *Session) apply(fn func(*game.Match) []game.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliverLocked(fn(s.match))
}

// Chat appends a participant's message to the sidebar and broadcasts it.
func (s *Session) Chat(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.match.Participant(id)
	if p == nil {
		return
	}
	text = strings.TrimSpace(truncateRunes(text, chatMaxLen))
	if text == "" {
		return
	}
	s.pushChatLocked(ChatMessage{Name: p.Name, Text: text, TS: time.Now().UnixMilli()})
}

// LobbyView returns the current lobby snapshot.
func (s *Session) LobbyView() game.LobbyView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.LobbyView()
}

// Empty reports whether no members remain connected.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members) == 0
}

func (s *Session) deliverLocked(events []game.Event) {
	for _, ev := range events {
		if ev.Type == game.EventMatchFinished {
			s.recordResultLocked(ev.Payload)
		}
		frame := encode(ev.Type, ev.Payload)
		if ev.To != "" {
			if m, ok := s.members[ev.To]; ok {
				trySend(m.Send, frame)
			}
			continue
		}
		for _, m := range s.members {
			trySend(m.Send, frame)
		}
	}
}

func (s *Session) recordResultLocked(payload any) {
	if s.results == nil {
		return
	}
	fin, ok := payload.(game.MatchFinishedPayload)
	if !ok || len(fin.Scores) != 2 {
		return
	}
	var winner string
	if fin.Scores[0].Score > fin.Scores[1].Score {
		winner = fin.Scores[0].Name
	} else if fin.Scores[1].Score > fin.Scores[0].Score {
		winner = fin.Scores[1].Name
	}
	scores, _ := json.Marshal(fin.Scores)
	if err := s.results.SaveResult(s.Key, winner, string(scores)); err != nil {
		log.Error().Err(err).Str("room", s.Key).Msg("save match result")
	}
}

func (s *Session) pushChatLocked(msg ChatMessage) {
	s.chat = append(s.chat, msg)
	if len(s.chat) > chatLimit {
		s.chat = s.chat[len(s.chat)-chatLimit:]
	}
	frame := encode("chatMessage", msg)
	for _, m := range s.members {
		trySend(m.Send, frame)
	}
}

func encode(typ string, payload any) []byte {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	frame, _ := json.Marshal(Envelope{Type: typ, Payload: raw})
	return frame
}

func trySend(send chan []byte, frame []byte) {
	select {
	case send <- frame:
	default:
		// drop frame if the member's buffer is full
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
