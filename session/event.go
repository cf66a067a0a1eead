package session

import (
	"errors"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
)

var (
	ErrRoomFull       = errors.New("room is full")
	ErrNoSuchRoom     = errors.New("no such room")
	ErrNotInRoom      = errors.New("connection is not in this room")
	ErrAlreadyInRoom  = errors.New("connection already joined this room")
	ErrGameNotStarted = errors.New("game has not started")
	ErrGameNotOver    = errors.New("game is still running")
)

type EventType string

const (
	EventWaitingForOpponent   EventType = "waiting_for_opponent"
	EventRoomFull             EventType = "room_full"
	EventGameStart            EventType = "game_start"
	EventGameStateUpdate      EventType = "game_state_update"
	EventOpponentDisconnected EventType = "opponent_disconnected"
	EventError                EventType = "error"
)

// Event is what the room sends to one connection.
type Event struct {
	Type   EventType `json:"type"`
	RoomID string    `json:"roomId"`
	GameID string    `json:"gameId,omitempty"`
	// Role is the recipient's side; set on game_start.
	Role  *board.Player `json:"role,omitempty"`
	Rules *game.Rules   `json:"rules,omitempty"`
	State *game.State   `json:"gameState,omitempty"`

	Message string `json:"message,omitempty"`
}

// Broadcaster delivers events to connections. Implementations must be
// safe for concurrent use.
type Broadcaster interface {
	Send(connID string, ev Event) error
}
