package economy

import (
	"fmt"
	"sort"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/board"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/deck"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

type Op string

const (
	OpBuy     Op = "buy"
	OpSell    Op = "sell"
	OpAccept  Op = "accept"
	OpDiscard Op = "discard"
	OpAbandon Op = "abandon"
)

// Drawn is a card removed from its deck and waiting for the drawer's decision.
type Drawn struct {
	Ref         model.CardRef `json:"ref"`
	Card        catalog.Card  `json:"card"`
	Source      deck.Key      `json:"source"`
	Drawer      model.Color   `json:"drawer"`
	Purchasable bool          `json:"purchasable"`
}

// Receipt describes a committed transaction.
type Receipt struct {
	Op            Op            `json:"op"`
	Player        model.Color   `json:"player,omitempty"`
	Ref           model.CardRef `json:"ref"`
	Amount        int           `json:"amount"`
	PlayerBalance int           `json:"player_balance"`
	ShopBalance   int           `json:"shop_balance"`
	Returned      bool          `json:"returned,omitempty"`
}

// Engine applies draws and transactions to players, the shop and the decks.
// Every operation validates first and mutates only once nothing can fail.
// Engine is not safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	decks   *deck.Manager
	board   *board.Board
	policy  Policy

	players map[model.Color]*Player
	order   []model.Color
	shop    *Shop

	transit   map[string]Drawn
	origin    map[string]deck.Key
	locations map[string]Location
}

// NewEngine checks that every deck instance resolves in the catalog.
func NewEngine(cat *catalog.Catalog, decks *deck.Manager, b *board.Board, players []*Player, shop *Shop, policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	instances := decks.Instances()
	if err := cat.Resolve(instances); err != nil {
		return nil, err
	}

	e := &Engine{
		catalog:   cat,
		decks:     decks,
		board:     b,
		policy:    policy,
		players:   make(map[model.Color]*Player, len(players)),
		shop:      shop,
		transit:   make(map[string]Drawn),
		origin:    make(map[string]deck.Key),
		locations: make(map[string]Location, len(instances)),
	}
	for _, p := range players {
		if _, dup := e.players[p.Color]; dup {
			return nil, fmt.Errorf("duplicate player %s", p.Color)
		}
		if p.Inventory == nil {
			p.Inventory = make(map[model.CardType][]model.CardRef)
		}
		e.players[p.Color] = p
		e.order = append(e.order, p.Color)
	}
	for _, ref := range instances {
		key, _ := decks.Contains(ref.Instance)
		e.origin[ref.Instance] = key
		e.locations[ref.Instance] = Location{State: InDeck, Deck: &key}
	}
	return e, nil
}

func (e *Engine) player(c model.Color) (*Player, error) {
	p, ok := e.players[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, c)
	}
	return p, nil
}

// held is the set of catalog keys owned by anyone or pending.
func (e *Engine) held() map[string]bool {
	out := map[string]bool{}
	for _, p := range e.players {
		for _, refs := range p.Inventory {
			for _, ref := range refs {
				out[ref.Key()] = true
			}
		}
	}
	for _, d := range e.transit {
		out[d.Ref.Key()] = true
	}
	return out
}

// Draw takes a card for the player from the deck of the square's color.
// Cards whose catalog entry is already owned by any player are passed over.
func (e *Engine) Draw(playerColor, squareColor model.Color, t model.CardType) (Drawn, error) {
	if _, err := e.player(playerColor); err != nil {
		return Drawn{}, err
	}
	if !t.Drawable() {
		return Drawn{}, fmt.Errorf("%w: %s", ErrNoDraw, t)
	}

	held := e.held()
	ref, source, err := e.decks.Draw(squareColor, t, func(r model.CardRef) bool {
		return held[r.Key()]
	})
	if err != nil {
		return Drawn{}, err
	}

	card, err := e.catalog.Lookup(ref)
	if err != nil {
		_ = e.decks.Return(source, ref)
		return Drawn{}, err
	}

	d := Drawn{
		Ref:         ref,
		Card:        card,
		Source:      source,
		Drawer:      playerColor,
		Purchasable: card.Purchasable(),
	}
	e.transit[ref.Instance] = d
	e.origin[ref.Instance] = source
	e.locations[ref.Instance] = Location{State: InTransit, Owner: playerColor}
	return d, nil
}

func (e *Engine) pending(c model.Color, instance string) (*Player, Drawn, error) {
	p, err := e.player(c)
	if err != nil {
		return nil, Drawn{}, err
	}
	d, ok := e.transit[instance]
	if !ok {
		return nil, Drawn{}, fmt.Errorf("%w: %s", ErrNotInTransit, instance)
	}
	if d.Drawer != c {
		return nil, Drawn{}, fmt.Errorf("%w: %s drew %s", ErrWrongPlayer, d.Drawer, instance)
	}
	return p, d, nil
}

// Buy pays the card's cost to the shop and moves it into the inventory.
func (e *Engine) Buy(c model.Color, instance string) (Receipt, error) {
	p, d, err := e.pending(c, instance)
	if err != nil {
		return Receipt{}, err
	}
	if !d.Purchasable {
		return Receipt{}, fmt.Errorf("%w: %s", ErrNotPurchasable, d.Ref.Key())
	}
	cost := d.Card.BuyCost
	if p.Balance < cost {
		return Receipt{}, fmt.Errorf("%w: %s has %d, %s costs %d", ErrInsufficientFunds, c, p.Balance, d.Ref.Key(), cost)
	}

	p.Balance -= cost
	e.shop.Balance += cost
	p.add(d.Ref)
	delete(e.transit, instance)
	e.locations[instance] = Location{State: InInventory, Owner: c}

	return Receipt{Op: OpBuy, Player: c, Ref: d.Ref, Amount: cost, PlayerBalance: p.Balance, ShopBalance: e.shop.Balance}, nil
}

// Accept keeps a take-it-or-leave-it card at no cost.
func (e *Engine) Accept(c model.Color, instance string) (Receipt, error) {
	p, d, err := e.pending(c, instance)
	if err != nil {
		return Receipt{}, err
	}
	if d.Purchasable {
		return Receipt{}, fmt.Errorf("%w: %s", ErrPurchaseRequired, d.Ref.Key())
	}

	p.add(d.Ref)
	delete(e.transit, instance)
	e.locations[instance] = Location{State: InInventory, Owner: c}

	return Receipt{Op: OpAccept, Player: c, Ref: d.Ref, PlayerBalance: p.Balance, ShopBalance: e.shop.Balance}, nil
}

// Discard removes a pending card from circulation for good.
func (e *Engine) Discard(instance string) (Receipt, error) {
	d, ok := e.transit[instance]
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s", ErrNotInTransit, instance)
	}

	delete(e.transit, instance)
	e.locations[instance] = Location{State: Discarded}

	r := Receipt{Op: OpDiscard, Player: d.Drawer, Ref: d.Ref, ShopBalance: e.shop.Balance}
	if p, ok := e.players[d.Drawer]; ok {
		r.PlayerBalance = p.Balance
	}
	return r, nil
}

// Abandon cancels a pending draw and puts the card back under its deck.
func (e *Engine) Abandon(instance string) (Receipt, error) {
	d, ok := e.transit[instance]
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s", ErrNotInTransit, instance)
	}
	if err := e.decks.Return(d.Source, d.Ref); err != nil {
		return Receipt{}, err
	}

	delete(e.transit, instance)
	key := d.Source
	e.locations[instance] = Location{State: InDeck, Deck: &key}

	r := Receipt{Op: OpAbandon, Player: d.Drawer, Ref: d.Ref, ShopBalance: e.shop.Balance, Returned: true}
	if p, ok := e.players[d.Drawer]; ok {
		r.PlayerBalance = p.Balance
	}
	return r, nil
}

// CanSell checks the square rule: cards sell only on a square of their own
// type, and never on a start square.
func (e *Engine) CanSell(c model.Color, t model.CardType) error {
	p, err := e.player(c)
	if err != nil {
		return err
	}
	sq := e.board.SquareAt(p.Position)
	if sq.Type == model.Start || sq.Type != t {
		return fmt.Errorf("%w: %s on %s/%s", ErrIneligibleSquare, t, sq.Type, sq.Color)
	}
	return nil
}

// Sell pays the card's sell value from the shop and applies the sold card policy.
func (e *Engine) Sell(c model.Color, instance string, t model.CardType) (Receipt, error) {
	if err := e.CanSell(c, t); err != nil {
		return Receipt{}, err
	}
	p := e.players[c]
	idx, ok := p.Owns(instance, t)
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s does not hold %s", ErrNotOwned, c, instance)
	}
	ref := p.Inventory[t][idx]
	card, err := e.catalog.Lookup(ref)
	if err != nil {
		return Receipt{}, err
	}
	value := e.policy.SellValue(card)

	loc := Location{State: Sold}
	if e.policy.SoldCards == ReturnSold {
		key, ok := e.origin[instance]
		if !ok {
			key = deck.Key{Color: card.Color, Type: t}
		}
		if err := e.decks.Return(key, ref); err != nil {
			return Receipt{}, err
		}
		loc = Location{State: InDeck, Deck: &key}
	}

	p.remove(t, idx)
	p.Balance += value
	e.shop.Balance -= value
	e.locations[instance] = loc

	return Receipt{
		Op:            OpSell,
		Player:        c,
		Ref:           ref,
		Amount:        value,
		PlayerBalance: p.Balance,
		ShopBalance:   e.shop.Balance,
		Returned:      loc.State == InDeck,
	}, nil
}

// Move advances a player and returns the new position.
func (e *Engine) Move(c model.Color, steps int) (int, error) {
	p, err := e.player(c)
	if err != nil {
		return 0, err
	}
	p.Position = e.board.Move(p.Position, steps)
	return p.Position, nil
}

func (e *Engine) Player(c model.Color) (Player, error) {
	p, err := e.player(c)
	if err != nil {
		return Player{}, err
	}
	return p.clone(), nil
}

// Players returns copies in seating order.
func (e *Engine) Players() []Player {
	out := make([]Player, 0, len(e.order))
	for _, c := range e.order {
		out = append(out, e.players[c].clone())
	}
	return out
}

func (e *Engine) Shop() Shop { return *e.shop }

func (e *Engine) Policy() Policy { return e.policy }

// Pending lists cards drawn but not yet committed, by instance.
func (e *Engine) Pending() []Drawn {
	out := make([]Drawn, 0, len(e.transit))
	for _, d := range e.transit {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.Instance < out[j].Ref.Instance })
	return out
}

func (e *Engine) PendingFor(instance string) (Drawn, bool) {
	d, ok := e.transit[instance]
	return d, ok
}

// Locate reports where an instance is.
func (e *Engine) Locate(instance string) (Location, bool) {
	loc, ok := e.locations[instance]
	return loc, ok
}

// SellValue prices an owned or pending card under the current policy.
func (e *Engine) SellValue(ref model.CardRef) (int, error) {
	card, err := e.catalog.Lookup(ref)
	if err != nil {
		return 0, err
	}
	return e.policy.SellValue(card), nil
}
