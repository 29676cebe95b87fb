// Package targeting decides which player an Action or Event card affects.
package targeting

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

var (
	ErrNotTargetable = errors.New("card has no target")
	ErrInvalidChoice = errors.New("invalid target choice")
	ErrNoChoice      = errors.New("no choice pending")
)

// Roller is the die used for variable event durations.
type Roller interface {
	Roll() int
}

// DieRoller rolls 0 to 6 inclusive.
type DieRoller struct {
	rng *rand.Rand
}

func NewDieRoller(rng *rand.Rand) DieRoller {
	return DieRoller{rng: rng}
}

func (d DieRoller) Roll() int {
	if d.rng == nil {
		return rand.Intn(7)
	}
	return d.rng.Intn(7)
}

// Fixed always rolls the same value.
type Fixed int

func (f Fixed) Roll() int { return int(f) }

// Resolution is the outcome of targeting a card. While Pending is true the
// drawer still has to pick one of Choices.
type Resolution struct {
	Kind     model.CardType `json:"kind"`
	ID       int            `json:"id"`
	Drawer   model.Color    `json:"drawer"`
	Affected model.Color    `json:"affected,omitempty"`
	Pending  bool           `json:"pending"`
	Choices  []model.Color  `json:"choices,omitempty"`

	// Events only.
	Duration int  `json:"duration,omitempty"`
	Rolled   bool `json:"rolled,omitempty"`
}

// Resolve targets an Action or Event drawn by drawer. others are the
// remaining session colors; the drawer is dropped from them if present.
func Resolve(card catalog.Card, drawer model.Color, others []model.Color, roller Roller) (Resolution, error) {
	res := Resolution{Kind: card.Kind, ID: card.ID, Drawer: drawer}

	switch {
	case card.Kind == model.Actions && card.Action != nil:
		res.Affected = drawer
		if card.Action.Target != nil {
			res.Affected = *card.Action.Target
		}
		return res, nil

	case card.Kind == model.Events && card.Event != nil:
		ev := card.Event
		res.Duration = ev.Duration.Turns
		if ev.Duration.Variable {
			if roller == nil {
				return Resolution{}, fmt.Errorf("event %d: variable duration needs a roller", card.ID)
			}
			res.Duration = roller.Roll()
			res.Rolled = true
		}

		switch {
		case ev.TargetPlayer != nil:
			res.Affected = *ev.TargetPlayer
		case ev.PlayerChoice:
			for _, c := range others {
				if c != drawer && !slices.Contains(res.Choices, c) {
					res.Choices = append(res.Choices, c)
				}
			}
			if len(res.Choices) == 0 {
				return Resolution{}, fmt.Errorf("%w: no other player to choose", ErrInvalidChoice)
			}
			res.Pending = true
		default:
			res.Affected = drawer
		}
		return res, nil
	}

	return Resolution{}, fmt.Errorf("%w: %s", ErrNotTargetable, card.Key())
}

// Choose completes a pending resolution.
func (r Resolution) Choose(c model.Color) (Resolution, error) {
	if !r.Pending {
		return r, ErrNoChoice
	}
	if !slices.Contains(r.Choices, c) {
		return r, fmt.Errorf("%w: %s not in %v", ErrInvalidChoice, c, r.Choices)
	}
	r.Affected = c
	r.Pending = false
	r.Choices = nil
	return r, nil
}
