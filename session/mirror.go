package session

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

// Mirror is the client side of a room. It may run ahead of the server
// by one predicted action, but every broadcast from the server replaces
// whatever it predicted.
type Mirror struct {
	mu        sync.Mutex
	me        board.Player
	rules     game.Rules
	confirmed *game.State
	predicted *game.State

	mismatches int
}

func NewMirror(me board.Player, st *game.State) *Mirror {
	return &Mirror{me: me, rules: st.Rules, confirmed: st}
}

// Start resets the mirror from a game_start event.
func (m *Mirror) Start(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.Role != nil {
		m.me = *ev.Role
	}
	if ev.Rules != nil {
		m.rules = *ev.Rules
	}
	if ev.State != nil {
		st := ev.State.Copy()
		st.Rules = m.rules
		m.confirmed = st
	}
	m.predicted = nil
}

func (m *Mirror) Me() board.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.me
}

// State is the prediction if one is pending, else the last confirmed
// state.
func (m *Mirror) State() *game.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.predicted != nil {
		return m.predicted
	}
	return m.confirmed
}

// Predict applies a locally with the same checks the server makes.
func (m *Mirror) Predict(a move.Action) (*game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.confirmed
	if m.predicted != nil {
		cur = m.predicted
	}
	ns, err := game.PlayAs(cur, m.me, a)
	if err != nil {
		return nil, err
	}
	m.predicted = ns
	return ns, nil
}

// Confirm installs the server's state. matched is false when a pending
// prediction disagreed with it.
func (m *Mirror) Confirm(st *game.State) (matched bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st = st.Copy()
	st.Rules = m.rules
	matched = true
	if m.predicted != nil {
		want, err := st.Fingerprint()
		if err != nil {
			return false, err
		}
		got, err := m.predicted.Fingerprint()
		if err != nil {
			return false, err
		}
		matched = want == got
		if !matched {
			m.mismatches++
			log.Warn().Uint64("server", want).Uint64("predicted", got).
				Int("mismatches", m.mismatches).Msg("prediction-discarded")
		}
	}
	m.confirmed = st
	m.predicted = nil
	return matched, nil
}

func (m *Mirror) Mismatches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mismatches
}
