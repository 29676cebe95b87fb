package server

import (
	"errors"
	"net/http"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/economy"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/game"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/targeting"
)

var statuses = []struct {
	err    error
	status int
}{
	{economy.ErrInsufficientFunds, http.StatusPaymentRequired},

	{economy.ErrNotOwned, http.StatusNotFound},
	{economy.ErrUnknownPlayer, http.StatusNotFound},
	{catalog.ErrNotFound, http.StatusNotFound},

	{game.ErrNotYourTurn, http.StatusConflict},
	{game.ErrTransactionPending, http.StatusConflict},
	{game.ErrChoicePending, http.StatusConflict},
	{game.ErrNothingPending, http.StatusConflict},
	{game.ErrAlreadyMoved, http.StatusConflict},
	{game.ErrAlreadyDrew, http.StatusConflict},
	{game.ErrSessionEnded, http.StatusConflict},
	{economy.ErrNotInTransit, http.StatusConflict},
	{targeting.ErrNoChoice, http.StatusConflict},

	{economy.ErrIneligibleSquare, http.StatusUnprocessableEntity},
	{economy.ErrNoDraw, http.StatusUnprocessableEntity},
	{economy.ErrNotPurchasable, http.StatusUnprocessableEntity},
	{economy.ErrPurchaseRequired, http.StatusUnprocessableEntity},
	{economy.ErrWrongPlayer, http.StatusUnprocessableEntity},
	{targeting.ErrInvalidChoice, http.StatusUnprocessableEntity},
	{targeting.ErrNotTargetable, http.StatusUnprocessableEntity},
	{model.ErrUnknownColor, http.StatusBadRequest},
	{model.ErrUnknownCardType, http.StatusBadRequest},
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
