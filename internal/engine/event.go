package engine

import (
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventDiceRolled EventType = "DiceRolled"
	EventRollFailed EventType = "RollFailed"
)

// Event is one entry of the roll history.
type Event interface {
	Type() EventType
	Message() string
}

// DiceRolledEvent records a solved roll together with the lines shown to the player.
type DiceRolledEvent struct {
	ID         string    `json:"id"`
	Server     string    `json:"server"`
	User       string    `json:"user"`
	ActorName  string    `json:"actor"`
	Expression string    `json:"expression"`
	Resolved   string    `json:"resolved"`
	Mode       string    `json:"mode,omitempty"`
	Total      string    `json:"total"`
	Lines      []string  `json:"lines"`
	RolledAt   time.Time `json:"rolled_at"`
}

func (e *DiceRolledEvent) Type() EventType { return EventDiceRolled }
func (e *DiceRolledEvent) Message() string {
	return strings.Join(e.Lines, "\n")
}

// RollFailedEvent records an expression that could not be solved.
type RollFailedEvent struct {
	ID         string    `json:"id"`
	Server     string    `json:"server"`
	User       string    `json:"user"`
	ActorName  string    `json:"actor"`
	Expression string    `json:"expression"`
	Reason     string    `json:"reason"`
	RolledAt   time.Time `json:"rolled_at"`
}

func (e *RollFailedEvent) Type() EventType { return EventRollFailed }
func (e *RollFailedEvent) Message() string {
	return fmt.Sprintf("%s could not roll %s: %s", e.ActorName, e.Expression, e.Reason)
}
