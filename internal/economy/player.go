package economy

import "github.com/JoaoRebolo/NetMaster-sub000/internal/model"

// Player is one faction's board position, picoin balance and owned cards.
// Inventory slices keep acquisition order.
type Player struct {
	Color     model.Color                        `json:"color"`
	Position  int                                `json:"position"`
	Balance   int                                `json:"balance"`
	Inventory map[model.CardType][]model.CardRef `json:"inventory"`
}

func NewPlayer(color model.Color, position, balance int) *Player {
	return &Player{
		Color:     color,
		Position:  position,
		Balance:   balance,
		Inventory: make(map[model.CardType][]model.CardRef),
	}
}

// Shop is the bank side of every transaction.
type Shop struct {
	Balance int `json:"balance"`
}

// Owns returns the inventory index of an instance under type t.
func (p *Player) Owns(instance string, t model.CardType) (int, bool) {
	for i, ref := range p.Inventory[t] {
		if ref.Instance == instance {
			return i, true
		}
	}
	return -1, false
}

// Holds reports whether any owned instance shows catalog entry (t, id).
func (p *Player) Holds(t model.CardType, id int) bool {
	for _, ref := range p.Inventory[t] {
		if ref.ID == id {
			return true
		}
	}
	return false
}

func (p *Player) Cards(t model.CardType) []model.CardRef {
	out := make([]model.CardRef, len(p.Inventory[t]))
	copy(out, p.Inventory[t])
	return out
}

// Count is the number of owned cards across all types.
func (p *Player) Count() int {
	n := 0
	for _, refs := range p.Inventory {
		n += len(refs)
	}
	return n
}

func (p *Player) add(ref model.CardRef) {
	p.Inventory[ref.Type] = append(p.Inventory[ref.Type], ref)
}

func (p *Player) remove(t model.CardType, i int) {
	refs := p.Inventory[t]
	p.Inventory[t] = append(refs[:i:i], refs[i+1:]...)
}

func (p *Player) clone() Player {
	cp := *p
	cp.Inventory = make(map[model.CardType][]model.CardRef, len(p.Inventory))
	for t, refs := range p.Inventory {
		cp.Inventory[t] = append([]model.CardRef(nil), refs...)
	}
	return cp
}
