package catalog

import (
	"fmt"
	"sort"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

// Catalog is the immutable set of card definitions for one level.
type Catalog struct {
	level string
	cards map[string]Card
	order []string
}

// New validates every card and indexes them by (kind, id).
// Any invalid or duplicate entry fails the whole catalog.
func New(level string, cards []Card) (*Catalog, error) {
	c := &Catalog{
		level: level,
		cards: make(map[string]Card, len(cards)),
		order: make([]string, 0, len(cards)),
	}
	for _, card := range cards {
		if card.Level == "" {
			card.Level = level
		}
		if err := validate(card); err != nil {
			return nil, err
		}
		key := card.Key()
		if _, exists := c.cards[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, key)
		}
		c.cards[key] = card
		c.order = append(c.order, key)
	}

	rank := make(map[model.CardType]int, len(model.CardTypes))
	for i, t := range model.CardTypes {
		rank[t] = i
	}
	sort.Slice(c.order, func(i, j int) bool {
		a, b := c.cards[c.order[i]], c.cards[c.order[j]]
		if a.Kind != b.Kind {
			return rank[a.Kind] < rank[b.Kind]
		}
		return a.ID < b.ID
	})

	return c, nil
}

func (c *Catalog) Level() string { return c.level }

func (c *Catalog) Len() int { return len(c.order) }

// Get returns the card for (kind, id) or ErrNotFound.
func (c *Catalog) Get(kind model.CardType, id int) (Card, error) {
	card, ok := c.cards[model.CardKey(kind, id)]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrNotFound, model.CardKey(kind, id))
	}
	return card, nil
}

// Lookup resolves the catalog entry shown by a card instance.
func (c *Catalog) Lookup(ref model.CardRef) (Card, error) {
	return c.Get(ref.Type, ref.ID)
}

func (c *Catalog) All() []Card {
	out := make([]Card, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.cards[key])
	}
	return out
}

func (c *Catalog) ByKind(kind model.CardType) []Card {
	out := []Card{}
	for _, key := range c.order {
		if card := c.cards[key]; card.Kind == kind {
			out = append(out, card)
		}
	}
	return out
}

func (c *Catalog) ByColor(color model.Color) []Card {
	out := []Card{}
	for _, key := range c.order {
		if card := c.cards[key]; card.Color == color {
			out = append(out, card)
		}
	}
	return out
}

// Resolve checks that every reference names a catalog entry.
func (c *Catalog) Resolve(refs []model.CardRef) error {
	for _, ref := range refs {
		if _, err := c.Lookup(ref); err != nil {
			return fmt.Errorf("instance %s: %w", ref.Instance, err)
		}
	}
	return nil
}
