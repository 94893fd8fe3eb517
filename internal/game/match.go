// Package game implements the hangman duel engine: a two-player match state
// machine that owns all per-session game state, resolves letter guesses, and
// reports every outward effect as events for the session layer to deliver.
//
// Action methods validate the caller and the current phase first and no-op
// (returning no events) when an action is illegal — the outward protocol has
// no error channel, so invalid input is dropped rather than reported. Methods
// are not safe for concurrent use; the session layer serializes access.
package game

// Phase is the coarse lifecycle stage of a match.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseEntry    Phase = "entry"
	PhaseRoundA   Phase = "roundA"
	PhaseRoundB   Phase = "roundB"
	PhaseFinished Phase = "finished"
)

// Subphase refines the two play phases.
type Subphase string

const (
	SubphaseIdle    Subphase = "idle"
	SubphasePlaying Subphase = "playing"
	SubphaseResult  Subphase = "result"
)

const (
	MaxMistakes        = 6
	MaxWordLen         = 16
	MaxHintLen         = 120
	MaxNameLen         = 20
	MinMatchRounds     = 1
	MaxMatchRounds     = 10
	DefaultMatchRounds = 3
)

// Participant is one seated player. Slot order is join order and never
// changes: slot 0 guesses round A, slot 1 guesses round B.
type Participant struct {
	ID    string
	Name  string
	Ready bool
	Word  string // secret word, "" until submitted this match round
	Hint  string
	Score int
}

// Match holds the canonical state of one session's match.
type Match struct {
	Participants []*Participant
	Phase        Phase
	Subphase     Subphase
	TotalRounds  int
	Pair         int    // completed roundA/roundB pairs
	Turn         string // participant currently allowed to guess
	Answer       string
	Revealed     []bool
	Guesses      []string
	Mistakes     int
}

// NewMatch returns a fresh lobby with no participants.
func NewMatch() *Match {
	return &Match{
		Phase:       PhaseLobby,
		Subphase:    SubphaseIdle,
		TotalRounds: DefaultMatchRounds,
	}
}

// Participant returns the seated participant with the given ID, or nil.
func (m *Match) Participant(id string) *Participant {
	for _, p := range m.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *Match) opponent(id string) *Participant {
	for _, p := range m.Participants {
		if p.ID != id {
			return p
		}
	}
	return nil
}

// Join seats a new participant or renames an existing one. A third distinct
// joiner is rejected with a roomFull event addressed only to them.
func (m *Match) Join(id, name string) []Event {
	name = NormalizeName(name)
	p := m.Participant(id)
	switch {
	case p != nil:
		p.Name = name
	case len(m.Participants) >= 2:
		return []Event{target(EventRoomFull, id, nil)}
	default:
		m.Participants = append(m.Participants, &Participant{ID: id, Name: name})
	}
	return []Event{broadcast(EventLobby, m.LobbyView())}
}

// SetRounds configures the number of match rounds. Only the participant in
// slot 0 may do this, and only in the lobby. Values clamp to [1,10].
func (m *Match) SetRounds(id string, n int) []Event {
	if m.Phase != PhaseLobby || len(m.Participants) == 0 || m.Participants[0].ID != id {
		return nil
	}
	if n < MinMatchRounds {
		n = MinMatchRounds
	}
	if n > MaxMatchRounds {
		n = MaxMatchRounds
	}
	m.TotalRounds = n
	return []Event{broadcast(EventLobby, m.LobbyView())}
}

// SetReady flips the caller's ready flag. When both seats are filled and
// ready in the lobby, the match advances to word entry.
func (m *Match) SetReady(id string, ready bool) []Event {
	p := m.Participant(id)
	if p == nil {
		return nil
	}
	p.Ready = ready
	events := []Event{broadcast(EventLobby, m.LobbyView())}
	if m.Phase == PhaseLobby && len(m.Participants) == 2 &&
		m.Participants[0].Ready && m.Participants[1].Ready {
		m.Phase = PhaseEntry
		events = append(events, broadcast(EventWordEntry, WordEntryPayload{
			Round:       m.Pair + 1,
			TotalRounds: m.TotalRounds,
		}))
	}
	return events
}

// SubmitWord stores the caller's secret word and hint. During word entry,
// once both participants hold a non-empty word, round A starts.
func (m *Match) SubmitWord(id, word, hint string) []Event {
	p := m.Participant(id)
	if p == nil {
		return nil
	}
	p.Word = NormalizeWord(word)
	p.Hint = truncate(hint, MaxHintLen)
	events := []Event{broadcast(EventLobby, m.LobbyView())}
	if m.Phase == PhaseEntry && len(m.Participants) == 2 &&
		m.Participants[0].Word != "" && m.Participants[1].Word != "" {
		m.startRound(PhaseRoundA)
		events = append(events, broadcast(EventRoundStarted, m.RoundView()))
	}
	return events
}

// RequestHint reveals the setter's hint to the whole session. This is an
// intentional shared reveal, not a private one.
func (m *Match) RequestHint(id string) []Event {
	if m.Subphase != SubphasePlaying || m.Participant(id) == nil {
		return nil
	}
	setter := m.opponent(m.Turn)
	if setter == nil {
		return nil
	}
	return []Event{broadcast(EventHint, HintPayload{Hint: setter.Hint})}
}

// Advance moves the match past a round result: round A into round B, round B
// either back to word entry for the next pair or to the final standings.
func (m *Match) Advance(id string) []Event {
	if m.Subphase != SubphaseResult || m.Participant(id) == nil {
		return nil
	}
	switch m.Phase {
	case PhaseRoundA:
		m.startRound(PhaseRoundB)
		return []Event{broadcast(EventRoundStarted, m.RoundView())}
	case PhaseRoundB:
		m.Pair++
		if m.Pair >= m.TotalRounds {
			return m.finish()
		}
		for _, p := range m.Participants {
			p.Word = ""
			p.Hint = ""
		}
		m.Phase = PhaseEntry
		m.Subphase = SubphaseIdle
		return []Event{broadcast(EventWordEntry, WordEntryPayload{
			Round:       m.Pair + 1,
			TotalRounds: m.TotalRounds,
		})}
	}
	return nil
}

func (m *Match) finish() []Event {
	m.Phase = PhaseFinished
	m.Subphase = SubphaseIdle
	scores := make([]FinalScore, len(m.Participants))
	for i, p := range m.Participants {
		scores[i] = FinalScore{ID: p.ID, Name: p.Name, Score: p.Score}
	}
	msg := "It's a tie!"
	if scores[0].Score > scores[1].Score {
		msg = scores[0].Name + " wins!"
	} else if scores[1].Score > scores[0].Score {
		msg = scores[1].Name + " wins!"
	}
	return []Event{broadcast(EventMatchFinished, MatchFinishedPayload{
		Scores:    scores,
		WinnerMsg: msg,
	})}
}

// Leave removes a participant and rebuilds the match as a fresh lobby.
// Survivors keep their name, ready flag and score; everything else,
// including the configured round count, resets.
func (m *Match) Leave(id string) []Event {
	if m.Participant(id) == nil {
		return nil
	}
	survivors := make([]*Participant, 0, 1)
	for _, p := range m.Participants {
		if p.ID != id {
			p.Word = ""
			p.Hint = ""
			survivors = append(survivors, p)
		}
	}
	*m = *NewMatch()
	m.Participants = survivors
	return []Event{broadcast(EventLobby, m.LobbyView())}
}

// NormalizeName falls back to a default for blank names and truncates to the
// display-name limit.
func NormalizeName(name string) string {
	if name == "" {
		return "Player"
	}
	return truncate(name, MaxNameLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
