package catalog

import (
	"strings"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

type FilterOptions struct {
	Kinds      []model.CardType `json:"kinds"`
	Colors     []model.Color    `json:"colors"`
	MaxBuyCost int              `json:"max_buy_cost"` // 0 means no limit
	FreeWords  string           `json:"free_words"`
}

func Filter(cards []Card, opt FilterOptions) []Card {
	out := []Card{}
	for _, c := range cards {
		if len(opt.Kinds) > 0 {
			matched := false
			for _, k := range opt.Kinds {
				if c.Kind == k {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if len(opt.Colors) > 0 {
			matched := false
			for _, col := range opt.Colors {
				if c.Color == col {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if opt.MaxBuyCost > 0 && c.BuyCost > opt.MaxBuyCost {
			continue
		}
		if opt.FreeWords != "" {
			text := c.text()
			ok := true
			for _, k := range strings.Fields(opt.FreeWords) {
				if !strings.Contains(text, strings.ToLower(k)) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
