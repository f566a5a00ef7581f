// Package unique implements the unique-dice game: roll N N-sided dice, keep the
// dice whose face no other die shows, reroll the rest, and repeat until every
// face 1..N is showing exactly once.
package unique

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/reroll/internal/game/dice"
)

// MinDice is the smallest playable die count.
const MinDice = 2

// ErrTooFewDice is returned when a game is configured with fewer than MinDice dice.
var ErrTooFewDice = errors.New("dice count must be at least 2")

// ErrInvalidMaxRounds is returned when the round cap is negative.
var ErrInvalidMaxRounds = errors.New("max rounds must not be negative")

// ErrRoundLimit is returned by Play when a capped game has not finished.
var ErrRoundLimit = errors.New("round limit reached")

// Game describes one configuration of the unique-dice game.
//
// Invariant: Dice >= MinDice; MaxRounds >= 0 (0 means unbounded).
type Game struct {
	Dice      int
	MaxRounds int
}

// Result is the outcome of a single played game.
//
// Postcondition: Rounds >= 1 and Final.Complete() for a game that finished.
type Result struct {
	Rounds int
	Final  *dice.Tally
}

// New validates and returns a Game.
//
// Postcondition: Returns a usable Game or ErrTooFewDice / ErrInvalidMaxRounds.
func New(diceCount, maxRounds int) (Game, error) {
	if diceCount < MinDice {
		return Game{}, fmt.Errorf("%w: got %d", ErrTooFewDice, diceCount)
	}
	if maxRounds < 0 {
		return Game{}, fmt.Errorf("%w: got %d", ErrInvalidMaxRounds, maxRounds)
	}
	return Game{Dice: diceCount, MaxRounds: maxRounds}, nil
}

// Play runs the game to completion using src.
//
// Each round drops every face that is not unique, then rolls one fresh die for
// every dropped die. The game ends once the tally holds Dice distinct faces.
//
// Precondition: g came from New; src must be non-nil.
// Postcondition: On success Result.Rounds >= 1 and Result.Final.Complete().
// Returns ErrRoundLimit when MaxRounds > 0 and the game has not finished after
// MaxRounds rounds.
func (g Game) Play(src dice.Source) (Result, error) {
	tally := dice.NewTally(g.Dice)
	rounds := 0
	for tally.Distinct() < g.Dice {
		if g.MaxRounds > 0 && rounds >= g.MaxRounds {
			return Result{Rounds: rounds, Final: tally}, fmt.Errorf("%w: %d rounds with %s",
				ErrRoundLimit, rounds, dice.Label(g.Dice, g.Dice))
		}
		rounds++
		tally.KeepLocked()
		for i := g.Dice - tally.Locked(); i > 0; i-- {
			tally.Add(dice.Roll(src, g.Dice))
		}
	}
	return Result{Rounds: rounds, Final: tally}, nil
}

// Rounds plays one game and returns only the number of rounds taken.
func (g Game) Rounds(src dice.Source) (int, error) {
	res, err := g.Play(src)
	if err != nil {
		return 0, err
	}
	return res.Rounds, nil
}
