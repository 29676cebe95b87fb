package economy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/board"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/deck"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource map[deck.Key][]model.CardRef

func (f fakeSource) ListCardInstances(_ context.Context, t model.CardType, c model.Color) ([]model.CardRef, error) {
	return f[deck.Key{Color: c, Type: t}], nil
}

func ref(instance string, t model.CardType, id int) model.CardRef {
	return model.CardRef{Instance: instance, Type: t, ID: id}
}

func key(c model.Color, t model.CardType) deck.Key {
	return deck.Key{Color: c, Type: t}
}

type fixture struct {
	engine *Engine
	decks  *deck.Manager
}

func newFixture(t *testing.T, src fakeSource, policy Policy, players ...*Player) fixture {
	t.Helper()
	cat, err := catalog.Residential()
	require.NoError(t, err)
	decks, err := deck.NewManager(context.Background(), src, nil)
	require.NoError(t, err)
	e, err := NewEngine(cat, decks, board.Standard(), players, &Shop{Balance: 1000}, policy)
	require.NoError(t, err)
	return fixture{engine: e, decks: decks}
}

func TestNewEngine_RejectsUnknownCards(t *testing.T) {
	cat, err := catalog.Residential()
	require.NoError(t, err)
	decks, err := deck.NewManager(context.Background(), fakeSource{
		key(model.Blue, model.Users): {ref("u-99", model.Users, 99)},
	}, nil)
	require.NoError(t, err)

	_, err = NewEngine(cat, decks, board.Standard(), nil, &Shop{}, DefaultPolicy())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestNewEngine_RejectsBadPolicy(t *testing.T) {
	cat, err := catalog.Residential()
	require.NoError(t, err)
	decks, err := deck.NewManager(context.Background(), fakeSource{}, nil)
	require.NoError(t, err)

	_, err = NewEngine(cat, decks, board.Standard(), nil, &Shop{}, Policy{SoldCards: "burn", ActivitySellValue: SellZero})
	assert.Error(t, err)
}

func TestBuy_InsufficientFundsChangesNothing(t *testing.T) {
	blue := NewPlayer(model.Blue, 3, 50)
	f := newFixture(t, fakeSource{
		key(model.Blue, model.Equipments): {ref("e-1", model.Equipments, 1)},
	}, DefaultPolicy(), blue)

	d, err := f.engine.Draw(model.Blue, model.Blue, model.Equipments)
	require.NoError(t, err)
	require.Equal(t, 80, d.Card.BuyCost)
	require.True(t, d.Purchasable)

	_, err = f.engine.Buy(model.Blue, "e-1")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	p, err := f.engine.Player(model.Blue)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Balance)
	assert.Zero(t, p.Count())
	assert.Equal(t, 1000, f.engine.Shop().Balance)

	loc, ok := f.engine.Locate("e-1")
	require.True(t, ok)
	assert.Equal(t, InTransit, loc.State)
}

func TestBuyAndSell_ConserveBalances(t *testing.T) {
	blue := NewPlayer(model.Blue, 3, 200)
	f := newFixture(t, fakeSource{
		key(model.Blue, model.Equipments): {ref("e-1", model.Equipments, 1)},
	}, DefaultPolicy(), blue)

	_, err := f.engine.Draw(model.Blue, model.Blue, model.Equipments)
	require.NoError(t, err)

	r, err := f.engine.Buy(model.Blue, "e-1")
	require.NoError(t, err)
	assert.Equal(t, OpBuy, r.Op)
	assert.Equal(t, 80, r.Amount)
	assert.Equal(t, 120, r.PlayerBalance)
	assert.Equal(t, 1080, r.ShopBalance)

	p, _ := f.engine.Player(model.Blue)
	assert.Equal(t, []model.CardRef{ref("e-1", model.Equipments, 1)}, p.Cards(model.Equipments))

	r, err = f.engine.Sell(model.Blue, "e-1", model.Equipments)
	require.NoError(t, err)
	assert.Equal(t, 40, r.Amount)
	assert.Equal(t, 160, r.PlayerBalance)
	assert.Equal(t, 1040, r.ShopBalance)
	assert.False(t, r.Returned)

	loc, _ := f.engine.Locate("e-1")
	assert.Equal(t, Sold, loc.State)
	assert.Zero(t, f.decks.Remaining(key(model.Blue, model.Equipments)))
}

func TestSell_Eligibility(t *testing.T) {
	blue := NewPlayer(model.Blue, 6, 100)
	f := newFixture(t, fakeSource{
		key(model.Neutral, model.Challenges): {ref("c-1", model.Challenges, 1)},
		key(model.Blue, model.Users):         {ref("u-1", model.Users, 1)},
	}, DefaultPolicy(), blue)

	_, err := f.engine.Draw(model.Blue, model.Neutral, model.Challenges)
	require.NoError(t, err)
	_, err = f.engine.Accept(model.Blue, "c-1")
	require.NoError(t, err)

	t.Run("start square refuses every type", func(t *testing.T) {
		_, err := f.engine.Move(model.Blue, board.Size-6)
		require.NoError(t, err)
		for _, typ := range model.CardTypes {
			assert.ErrorIs(t, f.engine.CanSell(model.Blue, typ), ErrIneligibleSquare, typ)
		}
		_, err = f.engine.Sell(model.Blue, "c-1", model.Challenges)
		assert.ErrorIs(t, err, ErrIneligibleSquare)
	})

	t.Run("square type must match", func(t *testing.T) {
		_, err := f.engine.Move(model.Blue, 1)
		require.NoError(t, err)
		_, err = f.engine.Sell(model.Blue, "c-1", model.Challenges)
		assert.ErrorIs(t, err, ErrIneligibleSquare)
	})

	t.Run("not owned", func(t *testing.T) {
		_, err := f.engine.Sell(model.Blue, "u-1", model.Users)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("matching square sells", func(t *testing.T) {
		_, err := f.engine.Move(model.Blue, 5)
		require.NoError(t, err)
		r, err := f.engine.Sell(model.Blue, "c-1", model.Challenges)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Amount)
		assert.Equal(t, 100, r.PlayerBalance)
	})
}

func TestDraw_SkipsCardsAlreadyOwned(t *testing.T) {
	blue := NewPlayer(model.Blue, 1, 500)
	red := NewPlayer(model.Red, 9, 500)
	f := newFixture(t, fakeSource{
		key(model.Blue, model.Users): {ref("u-1a", model.Users, 1)},
		key(model.Neutral, model.Users): {
			ref("u-1b", model.Users, 1),
			ref("u-13", model.Users, 13),
		},
	}, DefaultPolicy(), blue, red)

	d, err := f.engine.Draw(model.Blue, model.Blue, model.Users)
	require.NoError(t, err)
	require.Equal(t, "u-1a", d.Ref.Instance)
	_, err = f.engine.Buy(model.Blue, "u-1a")
	require.NoError(t, err)

	d, err = f.engine.Draw(model.Red, model.Blue, model.Users)
	require.NoError(t, err)
	assert.Equal(t, "u-13", d.Ref.Instance)
	assert.Equal(t, key(model.Neutral, model.Users), d.Source)

	t.Run("pending cards count as held", func(t *testing.T) {
		_, err := f.engine.Draw(model.Red, model.Neutral, model.Users)
		assert.ErrorIs(t, err, ErrEmpty)
	})

	_, ok := f.decks.Contains("u-1b")
	assert.True(t, ok, "skipped card keeps its place")
}

func TestSell_Policies(t *testing.T) {
	setup := func(t *testing.T, policy Policy) fixture {
		blue := NewPlayer(model.Blue, 5, 100)
		f := newFixture(t, fakeSource{
			key(model.Blue, model.Activities): {ref("a-2", model.Activities, 2), ref("a-1", model.Activities, 1)},
		}, policy, blue)
		_, err := f.engine.Draw(model.Blue, model.Blue, model.Activities)
		require.NoError(t, err)
		r, err := f.engine.Buy(model.Blue, "a-2")
		require.NoError(t, err)
		require.Equal(t, 45, r.Amount)
		return f
	}

	t.Run("retire with application fee", func(t *testing.T) {
		f := setup(t, DefaultPolicy())
		r, err := f.engine.Sell(model.Blue, "a-2", model.Activities)
		require.NoError(t, err)
		assert.Equal(t, 45, r.Amount)
		assert.Equal(t, 100, r.PlayerBalance)
		assert.Equal(t, 1, f.decks.Remaining(key(model.Blue, model.Activities)))
	})

	t.Run("return with zero value", func(t *testing.T) {
		f := setup(t, Policy{SoldCards: ReturnSold, ActivitySellValue: SellZero})
		r, err := f.engine.Sell(model.Blue, "a-2", model.Activities)
		require.NoError(t, err)
		assert.Zero(t, r.Amount)
		assert.True(t, r.Returned)

		pile := f.decks.Snapshot()[key(model.Blue, model.Activities)]
		require.Len(t, pile, 2)
		assert.Equal(t, "a-2", pile[1].Instance)

		loc, _ := f.engine.Locate("a-2")
		assert.Equal(t, InDeck, loc.State)
		require.NotNil(t, loc.Deck)
		assert.Equal(t, key(model.Blue, model.Activities), *loc.Deck)
	})
}

func TestPendingDecisions(t *testing.T) {
	src := fakeSource{
		key(model.Neutral, model.Events): {
			ref("ev-1", model.Events, 1),
			ref("ev-2", model.Events, 2),
			ref("ev-3", model.Events, 3),
		},
		key(model.Red, model.Users): {ref("u-4", model.Users, 4)},
	}
	blue := NewPlayer(model.Blue, 7, 100)
	red := NewPlayer(model.Red, 9, 100)
	f := newFixture(t, src, DefaultPolicy(), blue, red)

	d, err := f.engine.Draw(model.Blue, model.Neutral, model.Events)
	require.NoError(t, err)
	assert.False(t, d.Purchasable)

	t.Run("free cards cannot be bought", func(t *testing.T) {
		_, err := f.engine.Buy(model.Blue, "ev-1")
		assert.ErrorIs(t, err, ErrNotPurchasable)
	})

	t.Run("only the drawer decides", func(t *testing.T) {
		_, err := f.engine.Accept(model.Red, "ev-1")
		assert.ErrorIs(t, err, ErrWrongPlayer)
	})

	t.Run("accept", func(t *testing.T) {
		r, err := f.engine.Accept(model.Blue, "ev-1")
		require.NoError(t, err)
		assert.Equal(t, 100, r.PlayerBalance)
		p, _ := f.engine.Player(model.Blue)
		assert.Len(t, p.Cards(model.Events), 1)
		_, err = f.engine.Accept(model.Blue, "ev-1")
		assert.ErrorIs(t, err, ErrNotInTransit)
	})

	t.Run("discard is terminal", func(t *testing.T) {
		_, err := f.engine.Draw(model.Blue, model.Neutral, model.Events)
		require.NoError(t, err)
		_, err = f.engine.Discard("ev-2")
		require.NoError(t, err)
		loc, _ := f.engine.Locate("ev-2")
		assert.Equal(t, Discarded, loc.State)
		assert.True(t, loc.State.Terminal())
		_, ok := f.decks.Contains("ev-2")
		assert.False(t, ok)
	})

	t.Run("abandon returns to the deck", func(t *testing.T) {
		_, err := f.engine.Draw(model.Red, model.Red, model.Users)
		require.NoError(t, err)
		_, err = f.engine.Accept(model.Red, "u-4")
		assert.ErrorIs(t, err, ErrPurchaseRequired)

		r, err := f.engine.Abandon("u-4")
		require.NoError(t, err)
		assert.True(t, r.Returned)
		k, ok := f.decks.Contains("u-4")
		require.True(t, ok)
		assert.Equal(t, key(model.Red, model.Users), k)
		assert.Empty(t, f.engine.Pending())
	})

	t.Run("unknown player", func(t *testing.T) {
		_, err := f.engine.Draw(model.Green, model.Neutral, model.Events)
		assert.ErrorIs(t, err, ErrUnknownPlayer)
	})

	t.Run("start is not a deck", func(t *testing.T) {
		_, err := f.engine.Draw(model.Blue, model.Neutral, model.Start)
		assert.ErrorIs(t, err, ErrNoDraw)
	})
}

// Random play never duplicates or loses an instance, and picoins only move
// between players and the shop.
func TestRandomPlay_KeepsInvariants(t *testing.T) {
	src := fakeSource{}
	var instances []string
	cat, err := catalog.Residential()
	require.NoError(t, err)
	for _, c := range cat.All() {
		for copyN := 0; copyN < 2; copyN++ {
			inst := fmt.Sprintf("%s-%d-%d", c.Kind, c.ID, copyN)
			k := key(c.Color, c.Kind)
			src[k] = append(src[k], ref(inst, c.Kind, c.ID))
			instances = append(instances, inst)
		}
	}

	for _, policy := range []Policy{DefaultPolicy(), {SoldCards: ReturnSold, ActivitySellValue: SellZero}} {
		t.Run(string(policy.SoldCards), func(t *testing.T) {
			players := []*Player{
				NewPlayer(model.Blue, 0, 300),
				NewPlayer(model.Red, 8, 300),
				NewPlayer(model.Yellow, 16, 300),
			}
			f := newFixture(t, src, policy, players...)
			total := 3*300 + 1000
			rng := rand.New(rand.NewSource(42))
			b := board.Standard()

			for step := 0; step < 500; step++ {
				p := players[rng.Intn(len(players))]
				switch rng.Intn(5) {
				case 0:
					_, err := f.engine.Move(p.Color, 1+rng.Intn(6))
					require.NoError(t, err)
				case 1:
					sq := b.SquareAt(p.Position)
					if !sq.Draws() {
						continue
					}
					_, err := f.engine.Draw(p.Color, sq.Color, sq.Type)
					if err != nil {
						require.ErrorIs(t, err, ErrEmpty)
					}
				case 2:
					for _, d := range f.engine.Pending() {
						if d.Drawer != p.Color {
							continue
						}
						var err error
						if d.Purchasable {
							_, err = f.engine.Buy(p.Color, d.Ref.Instance)
						} else {
							_, err = f.engine.Accept(p.Color, d.Ref.Instance)
						}
						if err != nil {
							require.ErrorIs(t, err, ErrInsufficientFunds)
						}
					}
				case 3:
					for _, d := range f.engine.Pending() {
						if rng.Intn(2) == 0 {
							_, err := f.engine.Discard(d.Ref.Instance)
							require.NoError(t, err)
						} else {
							_, err := f.engine.Abandon(d.Ref.Instance)
							require.NoError(t, err)
						}
					}
				case 4:
					for typ, refs := range p.Inventory {
						for _, r := range refs {
							_, err := f.engine.Sell(p.Color, r.Instance, typ)
							if err != nil && !errors.Is(err, ErrIneligibleSquare) {
								require.NoError(t, err)
							}
						}
					}
				}

				assertEachInstanceOnce(t, f, instances)
				sum := f.engine.Shop().Balance
				for _, pl := range f.engine.Players() {
					sum += pl.Balance
				}
				require.Equal(t, total, sum, "step %d", step)
			}
		})
	}
}

func assertEachInstanceOnce(t *testing.T, f fixture, instances []string) {
	t.Helper()
	seen := map[string]int{}
	owners := map[string]map[string]bool{}
	for _, pile := range f.decks.Snapshot() {
		for _, r := range pile {
			seen[r.Instance]++
		}
	}
	for _, p := range f.engine.Players() {
		for _, refs := range p.Inventory {
			for _, r := range refs {
				seen[r.Instance]++
				if owners[r.Key()] == nil {
					owners[r.Key()] = map[string]bool{}
				}
				owners[r.Key()][string(p.Color)] = true
			}
		}
	}
	for _, d := range f.engine.Pending() {
		seen[d.Ref.Instance]++
	}
	for _, inst := range instances {
		loc, ok := f.engine.Locate(inst)
		require.True(t, ok, inst)
		if loc.State.Terminal() {
			seen[inst]++
		}
		require.Equal(t, 1, seen[inst], "%s is %s", inst, loc.State)
	}
	for k, who := range owners {
		require.Len(t, who, 1, "%s owned by several players", k)
	}
}
