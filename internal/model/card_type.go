package model

import (
	"errors"
	"fmt"
	"strings"
)

// CardType identifies a deck category and the square type that draws from it.
type CardType string

const (
	Users      CardType = "users"
	Equipments CardType = "equipments"
	Services   CardType = "services"
	Activities CardType = "activities"
	Challenges CardType = "challenges"
	Actions    CardType = "actions"
	Events     CardType = "events"

	// Start marks the start squares. It has no deck.
	Start CardType = "start"
)

var ErrUnknownCardType = errors.New("unknown card type")

// CardTypes lists the drawable types in catalog order.
var CardTypes = []CardType{Users, Equipments, Services, Activities, Challenges, Actions, Events}

var cardTypeAliases = map[string]CardType{
	"user":       Users,
	"users":      Users,
	"equipment":  Equipments,
	"equipments": Equipments,
	"service":    Services,
	"services":   Services,
	"activity":   Activities,
	"activities": Activities,
	"challenge":  Challenges,
	"challenges": Challenges,
	"action":     Actions,
	"actions":    Actions,
	"event":      Events,
	"events":     Events,
	"start":      Start,
}

// NormalizeCardType maps the singular/plural spellings used by asset
// folders and requests onto the canonical type.
func NormalizeCardType(s string) (CardType, error) {
	if t, ok := cardTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCardType, s)
}

// Drawable reports whether the type has decks.
func (t CardType) Drawable() bool {
	return t != Start && cardTypeAliases[string(t)] == t
}

// Purchasable reports whether cards of this type are bought from the shop.
// The rest are take it or leave it.
func (t CardType) Purchasable() bool {
	switch t {
	case Users, Equipments, Services, Activities:
		return true
	}
	return false
}

func (t CardType) String() string { return string(t) }
