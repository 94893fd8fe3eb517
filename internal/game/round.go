package game

import (
	"fmt"
	"strings"
)

// startRound begins one play round. Slot 0 guesses round A against slot 1's
// word; slot 1 guesses round B against slot 0's word. The setter never
// guesses their own word.
func (m *Match) startRound(phase Phase) {
	guesser, setter := m.Participants[0], m.Participants[1]
	if phase == PhaseRoundB {
		guesser, setter = setter, guesser
	}
	m.Phase = phase
	m.Subphase = SubphasePlaying
	m.Turn = guesser.ID
	m.Answer = setter.Word
	m.Revealed = make([]bool, len(m.Answer))
	m.Guesses = nil
	m.Mistakes = 0
}

// Guess resolves one letter guess from the current turn holder. A letter
// appearing at several positions reveals all of them and counts as a single
// hit; a repeated guess is ignored entirely. Win is checked before the
// mistake budget, and the two can never trigger in the same step.
func (m *Match) Guess(id, letter string) []Event {
	if m.Subphase != SubphasePlaying || id != m.Turn {
		return nil
	}
	l, ok := NormalizeLetter(letter)
	if !ok {
		return nil
	}
	for _, g := range m.Guesses {
		if g == l {
			return nil
		}
	}

	m.Guesses = append(m.Guesses, l)
	hit := false
	for i := 0; i < len(m.Answer); i++ {
		if string(m.Answer[i]) == l {
			m.Revealed[i] = true
			hit = true
		}
	}
	if !hit {
		m.Mistakes++
	}

	events := []Event{broadcast(EventRoundUpdated, RoundUpdatePayload{
		Round:      m.RoundView(),
		LastLetter: l,
		Hit:        hit,
	})}

	switch {
	case m.allRevealed():
		pts := Score(m.Mistakes)
		m.Participant(m.Turn).Score += pts
		m.Subphase = SubphaseResult
		events = append(events, broadcast(EventRoundDecided, RoundDecidedPayload{
			Won:     true,
			Message: fmt.Sprintf("Your guess was CORRECT.\nYour score is %d points.", pts),
		}))
	case m.Mistakes >= MaxMistakes:
		m.Subphase = SubphaseResult
		events = append(events, broadcast(EventRoundDecided, RoundDecidedPayload{
			Won:     false,
			Message: fmt.Sprintf("Out of tries. Word was %s.", m.Answer),
		}))
	}
	return events
}

func (m *Match) allRevealed() bool {
	for _, r := range m.Revealed {
		if !r {
			return false
		}
	}
	return true
}

// NormalizeWord uppercases its input, strips everything outside A-Z and
// truncates to the word length limit. The result may be empty.
func NormalizeWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(w) {
		if r < 'A' || r > 'Z' {
			continue
		}
		if b.Len() >= MaxWordLen {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeLetter reduces input to a single A-Z character. Input that strips
// down to anything other than exactly one letter is rejected.
func NormalizeLetter(l string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(l) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	if b.Len() != 1 {
		return "", false
	}
	return b.String(), true
}
