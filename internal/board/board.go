package board

import (
	"fmt"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

const (
	Size         = 32
	QuadrantSize = 8
)

// Square is one board position: the deck type it draws from and its owner.
type Square struct {
	Type  model.CardType `json:"type"`
	Color model.Color    `json:"color"`
}

// Draws reports whether landing here draws a card.
func (s Square) Draws() bool {
	return s.Type != model.Start
}

// Board is the fixed cyclic track.
type Board struct {
	squares [Size]Square
	starts  map[model.Color]int
}

// quadrant is the layout every color repeats from its start square.
var quadrant = [QuadrantSize]struct {
	t     model.CardType
	owned bool
}{
	{model.Start, false},
	{model.Users, true},
	{model.Services, true},
	{model.Equipments, true},
	{model.Actions, false},
	{model.Activities, true},
	{model.Challenges, false},
	{model.Events, false},
}

// Standard builds the 32 square board, one quadrant per faction.
func Standard() *Board {
	b := &Board{starts: make(map[model.Color]int, len(model.Factions))}
	for q, color := range model.Factions {
		start := q * QuadrantSize
		b.starts[color] = start
		for i, cell := range quadrant {
			sq := Square{Type: cell.t, Color: model.Neutral}
			if cell.owned {
				sq.Color = color
			}
			b.squares[start+i] = sq
		}
	}
	return b
}

// Wrap normalizes any position into [0, Size).
func Wrap(pos int) int {
	pos %= Size
	if pos < 0 {
		pos += Size
	}
	return pos
}

func (b *Board) SquareAt(pos int) Square {
	return b.squares[Wrap(pos)]
}

// Move returns the position reached after steps squares.
func (b *Board) Move(pos, steps int) int {
	return Wrap(pos + steps)
}

func (b *Board) StartPositionFor(c model.Color) (int, error) {
	pos, ok := b.starts[c]
	if !ok {
		return 0, fmt.Errorf("%w: no start square for %q", model.ErrUnknownColor, c)
	}
	return pos, nil
}

// Squares copies the full track in position order.
func (b *Board) Squares() []Square {
	out := make([]Square, Size)
	copy(out, b.squares[:])
	return out
}
