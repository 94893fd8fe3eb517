package game

// Event is one outbound message produced by a state transition. The engine
// never talks to the transport directly: every action returns the events it
// caused and the session layer delivers them.
type Event struct {
	Type    string
	To      string // participant ID for a targeted event, empty = broadcast
	Payload any
}

// Outbound event types.
const (
	EventRoomFull      = "roomFull"
	EventLobby         = "lobby"
	EventWordEntry     = "wordEntry"
	EventRoundStarted  = "roundStarted"
	EventRoundUpdated  = "roundUpdated"
	EventHint          = "hint"
	EventRoundDecided  = "roundDecided"
	EventMatchFinished = "matchFinished"
)

// WordEntryPayload announces the word-entry phase of a match round.
type WordEntryPayload struct {
	Round       int `json:"round"`
	TotalRounds int `json:"totalRounds"`
}

// RoundUpdatePayload carries the board after a guess plus immediate feedback
// about the guess itself, so clients can tell a fresh hit from a letter that
// was already revealed.
type RoundUpdatePayload struct {
	Round      RoundView `json:"round"`
	LastLetter string    `json:"lastLetter"`
	Hit        bool      `json:"hit"`
}

type HintPayload struct {
	Hint string `json:"hint"`
}

// RoundDecidedPayload reports the outcome of a play round. On a loss the
// message discloses the answer; the round view never does.
type RoundDecidedPayload struct {
	Won     bool   `json:"won"`
	Message string `json:"message"`
}

// FinalScore is one participant's standing at match end, in slot order.
type FinalScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type MatchFinishedPayload struct {
	Scores    []FinalScore `json:"scores"`
	WinnerMsg string       `json:"winnerMsg"`
}

func broadcast(typ string, payload any) Event {
	return Event{Type: typ, Payload: payload}
}

func target(typ, to string, payload any) Event {
	return Event{Type: typ, To: to, Payload: payload}
}
