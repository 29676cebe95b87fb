package deck

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

var (
	ErrEmpty             = errors.New("no cards available")
	ErrDuplicateInstance = errors.New("card instance already in a deck")
	ErrUnknownDeck       = errors.New("unknown deck")
)

// Key identifies one draw pile.
type Key struct {
	Color model.Color    `json:"color"`
	Type  model.CardType `json:"type"`
}

func (k Key) String() string { return fmt.Sprintf("%s/%s", k.Color, k.Type) }

// Source lists the physical card instances available for a deck.
type Source interface {
	ListCardInstances(ctx context.Context, t model.CardType, c model.Color) ([]model.CardRef, error)
}

// Manager owns every draw pile. Decks are shuffled once when built; draws
// take from the front, returns go to the back.
type Manager struct {
	mu    sync.Mutex
	decks map[Key][]model.CardRef
	where map[string]Key
}

// NewManager builds one deck per (color, drawable type) from src.
func NewManager(ctx context.Context, src Source, rng *rand.Rand) (*Manager, error) {
	m := &Manager{
		decks: make(map[Key][]model.CardRef),
		where: make(map[string]Key),
	}

	for _, t := range model.CardTypes {
		for _, c := range model.Colors {
			refs, err := src.ListCardInstances(ctx, t, c)
			if err != nil {
				return nil, fmt.Errorf("list %s/%s: %w", c, t, err)
			}
			key := Key{Color: c, Type: t}
			pile := make([]model.CardRef, 0, len(refs))
			for _, ref := range refs {
				if prev, exists := m.where[ref.Instance]; exists {
					return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateInstance, ref.Instance, prev, key)
				}
				if ref.Type != t {
					return nil, fmt.Errorf("instance %s is %s, listed under %s", ref.Instance, ref.Type, key)
				}
				m.where[ref.Instance] = key
				pile = append(pile, ref)
			}
			if rng != nil {
				rng.Shuffle(len(pile), func(i, j int) { pile[i], pile[j] = pile[j], pile[i] })
			}
			m.decks[key] = pile
		}
	}

	return m, nil
}

// Draw removes and returns the first card of deck(color, t) that skip
// does not reject, falling back to deck(neutral, t). Rejected cards keep
// their place.
func (m *Manager) Draw(color model.Color, t model.CardType, skip func(model.CardRef) bool) (model.CardRef, Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !t.Drawable() {
		return model.CardRef{}, Key{}, fmt.Errorf("%w: %s/%s", ErrUnknownDeck, color, t)
	}

	keys := []Key{{Color: color, Type: t}}
	if color != model.Neutral {
		keys = append(keys, Key{Color: model.Neutral, Type: t})
	}

	for _, key := range keys {
		if ref, ok := m.take(key, skip); ok {
			return ref, key, nil
		}
	}
	return model.CardRef{}, Key{}, ErrEmpty
}

func (m *Manager) take(key Key, skip func(model.CardRef) bool) (model.CardRef, bool) {
	pile := m.decks[key]
	for i, ref := range pile {
		if skip != nil && skip(ref) {
			continue
		}
		m.decks[key] = append(pile[:i:i], pile[i+1:]...)
		delete(m.where, ref.Instance)
		return ref, true
	}
	return model.CardRef{}, false
}

// Return puts a card back at the bottom of a deck.
func (m *Manager) Return(key Key, ref model.CardRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.decks[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDeck, key)
	}
	if ref.Type != key.Type {
		return fmt.Errorf("instance %s is %s, cannot go to %s", ref.Instance, ref.Type, key)
	}
	if prev, exists := m.where[ref.Instance]; exists {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateInstance, ref.Instance, prev)
	}
	m.decks[key] = append(m.decks[key], ref)
	m.where[ref.Instance] = key
	return nil
}

// Remaining counts the cards left in a deck.
func (m *Manager) Remaining(key Key) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.decks[key])
}

// Contains reports which deck holds an instance, if any.
func (m *Manager) Contains(instance string) (Key, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.where[instance]
	return key, ok
}

// Snapshot copies every non-empty deck in draw order.
func (m *Manager) Snapshot() map[Key][]model.CardRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[Key][]model.CardRef, len(m.decks))
	for key, pile := range m.decks {
		if len(pile) == 0 {
			continue
		}
		cp := make([]model.CardRef, len(pile))
		copy(cp, pile)
		out[key] = cp
	}
	return out
}

// Instances lists every instance currently in a deck.
func (m *Manager) Instances() []model.CardRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.CardRef, 0, len(m.where))
	for _, pile := range m.decks {
		out = append(out, pile...)
	}
	return out
}
