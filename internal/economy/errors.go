package economy

import (
	"errors"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/deck"
)

var (
	// ErrEmpty is returned when a deck and its neutral fallback are exhausted.
	ErrEmpty = deck.ErrEmpty

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotOwned          = errors.New("card not owned")
	ErrIneligibleSquare  = errors.New("card cannot be sold on this square")
	ErrNotInTransit      = errors.New("card is not pending")
	ErrNotPurchasable    = errors.New("card cannot be bought, accept or discard it")
	ErrPurchaseRequired  = errors.New("card must be bought")
	ErrWrongPlayer       = errors.New("card was drawn by another player")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrNoDraw            = errors.New("square has no deck")
)
