package model

import (
	"fmt"
	"strings"
)

type GameState uint32

const (
	WaitingForPlayers GameState = iota
	ShuffleCommit
	ShuffleReveal
	DealCards
	PreFlop
	FlopBetting
	TurnBetting
	RiverBetting
	Showdown
	Finished
	Cancelled
)

var gameStateNames = []string{
	"WaitingForPlayers",
	"ShuffleCommit",
	"ShuffleReveal",
	"DealCards",
	"PreFlop",
	"FlopBetting",
	"TurnBetting",
	"RiverBetting",
	"Showdown",
	"Finished",
	"Cancelled",
}

func (s GameState) String() string {
	if s.Valid() {
		return gameStateNames[s]
	}
	return fmt.Sprintf("GameState(%d)", uint32(s))
}

func (s GameState) Valid() bool {
	return int(s) < len(gameStateNames)
}

func (s GameState) Terminal() bool {
	return s == Finished || s == Cancelled
}

func (s GameState) Betting() bool {
	return s >= PreFlop && s <= RiverBetting
}

// Timeoutable reports whether the contract accepts a timeout claim in this state.
func (s GameState) Timeoutable() bool {
	return s == ShuffleCommit || s == ShuffleReveal || s.Betting() || s == Showdown
}

func ParseGameState(name string) (GameState, error) {
	for i, n := range gameStateNames {
		if strings.EqualFold(n, name) {
			return GameState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown game state %q", name)
}

type Action uint32

const (
	Fold Action = iota
	Check
	Call
	Raise
)

var actionNames = []string{"Fold", "Check", "Call", "Raise"}

func (a Action) String() string {
	if a.Valid() {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint32(a))
}

func (a Action) Valid() bool {
	return int(a) < len(actionNames)
}

func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if strings.EqualFold(n, name) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}
