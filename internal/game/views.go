package game

// LobbyPlayer is the public projection of a participant. The submitted word
// itself is never included, only whether one exists.
type LobbyPlayer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ready   bool   `json:"ready"`
	HasWord bool   `json:"hasWord"`
	Score   int    `json:"score"`
}

// LobbyView is the outward lobby snapshot.
type LobbyView struct {
	Phase   Phase         `json:"phase"`
	Rounds  int           `json:"rounds"`
	Players []LobbyPlayer `json:"players"`
}

// RoundView is the outward board state. Unrevealed positions render as "_";
// the answer never appears here, only in the loss message.
type RoundView struct {
	Phase       Phase    `json:"phase"`
	Subphase    Subphase `json:"subphase"`
	Turn        string   `json:"turn"`
	PlayerOrder []string `json:"playerOrder"`
	Mistakes    int      `json:"mistakes"`
	MaxMistakes int      `json:"maxMistakes"`
	Guesses     []string `json:"guesses"`
	Mask        []string `json:"mask"`
}

// LobbyView projects the current lobby state. Recomputed on demand, never
// stored.
func (m *Match) LobbyView() LobbyView {
	players := make([]LobbyPlayer, len(m.Participants))
	for i, p := range m.Participants {
		players[i] = LobbyPlayer{
			ID:      p.ID,
			Name:    p.Name,
			Ready:   p.Ready,
			HasWord: p.Word != "",
			Score:   p.Score,
		}
	}
	return LobbyView{Phase: m.Phase, Rounds: m.TotalRounds, Players: players}
}

// RoundView projects the current board state.
func (m *Match) RoundView() RoundView {
	order := make([]string, len(m.Participants))
	for i, p := range m.Participants {
		order[i] = p.ID
	}
	mask := make([]string, len(m.Answer))
	for i := range mask {
		if m.Revealed[i] {
			mask[i] = string(m.Answer[i])
		} else {
			mask[i] = "_"
		}
	}
	guesses := make([]string, len(m.Guesses))
	copy(guesses, m.Guesses)
	return RoundView{
		Phase:       m.Phase,
		Subphase:    m.Subphase,
		Turn:        m.Turn,
		PlayerOrder: order,
		Mistakes:    m.Mistakes,
		MaxMistakes: MaxMistakes,
		Guesses:     guesses,
		Mask:        mask,
	}
}
