package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

var (
	ErrBadSubject = errors.New("bad room subject")
	ErrBotError   = errors.New("bot returned an error")
)

// MoveRequest asks the bot to play for the side to move in State.
type MoveRequest struct {
	State      *game.State      `json:"state"`
	Rules      game.Rules       `json:"rules"`
	Difficulty aibot.Difficulty `json:"difficulty"`
}

type MoveResponse struct {
	Action *move.Action `json:"action,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func errorResponse(message string, err error) *MoveResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &MoveResponse{Error: msg}
}

// Room operations arrive on <prefix>.<room>.<op>.
const (
	OpJoin    = "join"
	OpMove    = "move"
	OpLeave   = "leave"
	OpRematch = "rematch"
)

// RoomMessage is the body of a room operation. Action is set for OpMove.
type RoomMessage struct {
	ConnID string       `json:"connId"`
	Action *move.Action `json:"action,omitempty"`
}

// RoomReply answers a room operation that was sent as a request.
type RoomReply struct {
	Role  *board.Player `json:"role,omitempty"`
	Error string        `json:"error,omitempty"`
}

var reToken = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// parseRoomSubject splits <prefix>.<room>.<op>.
func parseRoomSubject(prefix, subject string) (room, op string, err error) {
	rest, ok := strings.CutPrefix(subject, prefix+".")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadSubject, subject)
	}
	room, op, ok = strings.Cut(rest, ".")
	if !ok || !reToken.MatchString(room) || strings.Contains(op, ".") {
		return "", "", fmt.Errorf("%w: %q", ErrBadSubject, subject)
	}
	return room, op, nil
}

// EventSubject is where events for one connection in a room are
// published.
func EventSubject(prefix, room, connID string) string {
	return prefix + "." + room + ".events." + connID
}
