package economy

import (
	"github.com/JoaoRebolo/NetMaster-sub000/internal/deck"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

// State is where a card instance currently is.
type State string

const (
	InDeck      State = "in_deck"
	InTransit   State = "in_transit"
	InInventory State = "in_inventory"
	Discarded   State = "discarded"
	Sold        State = "sold"
)

// Terminal states leave circulation for the rest of the session.
func (s State) Terminal() bool {
	return s == Discarded || s == Sold
}

type Location struct {
	State State       `json:"state"`
	Deck  *deck.Key   `json:"deck,omitempty"`
	Owner model.Color `json:"owner,omitempty"`
}
