package economy

import (
	"fmt"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

// SoldCardPolicy decides where a sold card goes.
type SoldCardPolicy string

const (
	// RetireSold keeps sold cards with the shop, out of circulation.
	RetireSold SoldCardPolicy = "retire"
	// ReturnSold puts sold cards back at the bottom of the deck they came from.
	ReturnSold SoldCardPolicy = "return"
)

// ActivitySellValue picks the resale price of activity cards.
type ActivitySellValue string

const (
	SellApplicationFee ActivitySellValue = "application_fee"
	SellZero           ActivitySellValue = "zero"
)

type Policy struct {
	SoldCards         SoldCardPolicy    `json:"sold_cards"`
	ActivitySellValue ActivitySellValue `json:"activity_sell_value"`
}

func DefaultPolicy() Policy {
	return Policy{SoldCards: RetireSold, ActivitySellValue: SellApplicationFee}
}

func (p Policy) Validate() error {
	switch p.SoldCards {
	case RetireSold, ReturnSold:
	default:
		return fmt.Errorf("unknown sold card policy %q", p.SoldCards)
	}
	switch p.ActivitySellValue {
	case SellApplicationFee, SellZero:
	default:
		return fmt.Errorf("unknown activity sell value %q", p.ActivitySellValue)
	}
	return nil
}

// SellValue is what the shop pays for a card.
func (p Policy) SellValue(c catalog.Card) int {
	if c.Kind == model.Activities && c.Activity != nil {
		if p.ActivitySellValue == SellZero {
			return 0
		}
		return c.Activity.ApplicationFee
	}
	return c.SellCost
}
