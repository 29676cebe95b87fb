package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/assets"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/board"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/deck"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/economy"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/targeting"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPlayerCount        = errors.New("a session needs 2 to 4 players")
	ErrDuplicateColor     = errors.New("color already taken")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrTransactionPending = errors.New("a drawn card is still pending")
	ErrChoicePending      = errors.New("a target choice is still pending")
	ErrNothingPending     = errors.New("no card pending")
	ErrAlreadyMoved       = errors.New("already moved this turn")
	ErrAlreadyDrew        = errors.New("already drew this turn")
	ErrSessionEnded       = errors.New("session ended")
)

const (
	MinPlayers = 2
	MaxPlayers = 4
)

// Options configure a session. Assets populates the decks and defaults to
// one instance per catalog entry. Rand shuffles decks and rolls dice; when
// nil it is seeded from the clock.
type Options struct {
	Colors          []model.Color
	StartingBalance int
	ShopBalance     int
	Policy          economy.Policy

	Catalog *catalog.Catalog
	Assets  deck.Source

	Rand   *rand.Rand
	Roller targeting.Roller
	Clock  Clock
	Events telemetry.Repository
	Logger *zap.Logger
}

// Session is one game on the shared device. Every exported method takes the
// session lock, so calls from the view never interleave.
type Session struct {
	mu sync.Mutex

	id      string
	board   *board.Board
	catalog *catalog.Catalog
	decks   *deck.Manager
	engine  *economy.Engine
	dice    *rand.Rand
	roller  targeting.Roller
	clock   Clock
	events  telemetry.Repository
	log     *zap.Logger

	order []model.Color
	turn  int
	round int
	moved bool
	drew  bool

	pending *economy.Drawn
	choice  *pendingChoice

	started time.Time
	ended   bool
	done    chan struct{}
}

type pendingChoice struct {
	instance string
	res      targeting.Resolution
}

type RollResult struct {
	Die      int          `json:"die"`
	Position int          `json:"position"`
	Square   board.Square `json:"square"`
}

func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, errors.New("session needs a catalog")
	}
	if n := len(opts.Colors); n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, n)
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Clock.Now().UnixNano()))
	}
	if opts.Roller == nil {
		opts.Roller = targeting.NewDieRoller(opts.Rand)
	}
	if opts.Events == nil {
		opts.Events = telemetry.NewMemoryRepository(opts.Clock.Now)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Policy == (economy.Policy{}) {
		opts.Policy = economy.DefaultPolicy()
	}

	b := board.Standard()
	players := make([]*economy.Player, 0, len(opts.Colors))
	seen := map[model.Color]bool{}
	for _, c := range opts.Colors {
		if !c.IsFaction() {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownColor, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColor, c)
		}
		seen[c] = true
		pos, err := b.StartPositionFor(c)
		if err != nil {
			return nil, err
		}
		players = append(players, economy.NewPlayer(c, pos, opts.StartingBalance))
	}

	src := opts.Assets
	if src == nil {
		src = assets.CatalogSource{Catalog: opts.Catalog}
	}
	decks, err := deck.NewManager(ctx, src, opts.Rand)
	if err != nil {
		return nil, fmt.Errorf("build decks: %w", err)
	}
	engine, err := economy.NewEngine(opts.Catalog, decks, b, players, &economy.Shop{Balance: opts.ShopBalance}, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	s := &Session{
		id:      uuid.NewString(),
		board:   b,
		catalog: opts.Catalog,
		decks:   decks,
		engine:  engine,
		dice:    opts.Rand,
		roller:  opts.Roller,
		clock:   opts.Clock,
		events:  opts.Events,
		order:   append([]model.Color(nil), opts.Colors...),
		started: opts.Clock.Now(),
		done:    make(chan struct{}),
	}
	s.log = opts.Logger.With(zap.String("session", s.id))

	colors := make([]string, len(s.order))
	for i, c := range s.order {
		colors[i] = string(c)
	}
	s.record(telemetry.EventSessionStarted, telemetry.EventMetadata{
		"session": s.id,
		"players": colors,
		"catalog": opts.Catalog.Level(),
		"cards":   len(decks.Instances()),
		"policy":  string(opts.Policy.SoldCards),
		"balance": opts.StartingBalance,
		"shop":    opts.ShopBalance,
	})
	s.log.Info("session started",
		zap.Strings("players", colors),
		zap.Int("cards", len(decks.Instances())),
		zap.String("sold_cards", string(opts.Policy.SoldCards)),
	)
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Board() *board.Board { return s.board }

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Events() telemetry.Repository { return s.events }

// act runs the shared checks for a player action.
func (s *Session) act(c model.Color) error {
	if s.ended {
		return ErrSessionEnded
	}
	if cur := s.order[s.turn]; c != cur {
		return fmt.Errorf("%w: %s plays now, not %s", ErrNotYourTurn, cur, c)
	}
	return nil
}

func (s *Session) Current() model.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order[s.turn]
}

// Roll throws a six-sided die and moves the current player.
func (s *Session) Roll(c model.Color) (RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(c, 1+s.dice.Intn(6))
}

// Move advances the current player by a fixed number of squares.
func (s *Session) Move(c model.Color, steps int) (RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(c, steps)
}

func (s *Session) move(c model.Color, steps int) (RollResult, error) {
	if err := s.act(c); err != nil {
		return RollResult{}, s.reject("move", c, err)
	}
	if s.moved {
		return RollResult{}, s.reject("move", c, ErrAlreadyMoved)
	}
	if err := s.idle(); err != nil {
		return RollResult{}, s.reject("move", c, err)
	}

	pos, err := s.engine.Move(c, steps)
	if err != nil {
		return RollResult{}, s.reject("move", c, err)
	}
	s.moved = true
	sq := s.board.SquareAt(pos)

	s.record(telemetry.EventPlayerMoved, telemetry.EventMetadata{
		"player": string(c), "steps": steps, "position": pos, "square": string(sq.Type),
	})
	s.log.Info("player moved",
		zap.String("player", string(c)),
		zap.Int("steps", steps),
		zap.Int("position", pos),
		zap.String("square", fmt.Sprintf("%s/%s", sq.Type, sq.Color)),
	)
	return RollResult{Die: steps, Position: pos, Square: sq}, nil
}

func (s *Session) idle() error {
	if s.pending != nil {
		return fmt.Errorf("%w: %s", ErrTransactionPending, s.pending.Ref.Instance)
	}
	if s.choice != nil {
		return fmt.Errorf("%w: %s", ErrChoicePending, s.choice.instance)
	}
	return nil
}

// Draw takes a card from the deck of the square under the current player.
func (s *Session) Draw(c model.Color) (economy.Drawn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.act(c); err != nil {
		return economy.Drawn{}, s.reject("draw", c, err)
	}
	if s.drew {
		return economy.Drawn{}, s.reject("draw", c, ErrAlreadyDrew)
	}
	if err := s.idle(); err != nil {
		return economy.Drawn{}, s.reject("draw", c, err)
	}

	p, err := s.engine.Player(c)
	if err != nil {
		return economy.Drawn{}, s.reject("draw", c, err)
	}
	sq := s.board.SquareAt(p.Position)
	if !sq.Draws() {
		return economy.Drawn{}, s.reject("draw", c, fmt.Errorf("%w: start square", economy.ErrNoDraw))
	}

	d, err := s.engine.Draw(c, sq.Color, sq.Type)
	if errors.Is(err, economy.ErrEmpty) {
		s.drew = true
		s.record(telemetry.EventDeckEmpty, telemetry.EventMetadata{
			"player": string(c), "type": string(sq.Type), "color": string(sq.Color),
		})
		s.log.Info("no cards available", zap.String("player", string(c)), zap.String("deck", fmt.Sprintf("%s/%s", sq.Color, sq.Type)))
		return economy.Drawn{}, err
	}
	if err != nil {
		return economy.Drawn{}, s.reject("draw", c, err)
	}

	s.drew = true
	s.pending = &d
	s.record(telemetry.EventCardDrawn, telemetry.EventMetadata{
		"player":      string(c),
		"instance":    d.Ref.Instance,
		"type":        string(d.Ref.Type),
		"id":          d.Ref.ID,
		"deck":        d.Source.String(),
		"purchasable": d.Purchasable,
	})
	s.log.Info("card drawn",
		zap.String("player", string(c)),
		zap.String("instance", d.Ref.Instance),
		zap.String("card", d.Ref.Key()),
		zap.String("deck", d.Source.String()),
	)
	return d, nil
}

// Pending is the card drawn this turn and not yet committed.
func (s *Session) Pending() (economy.Drawn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return economy.Drawn{}, false
	}
	return *s.pending, true
}

func (s *Session) decide(c model.Color, instance string) error {
	if err := s.act(c); err != nil {
		return err
	}
	if s.pending == nil {
		return ErrNothingPending
	}
	if s.pending.Ref.Instance != instance {
		return fmt.Errorf("%w: %s", economy.ErrNotInTransit, instance)
	}
	return nil
}

func (s *Session) Buy(c model.Color, instance string) (economy.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.decide(c, instance); err != nil {
		return economy.Receipt{}, s.reject("buy", c, err)
	}
	r, err := s.engine.Buy(c, instance)
	if err != nil {
		return economy.Receipt{}, s.reject("buy", c, err)
	}
	s.commit(telemetry.EventCardBought, r)
	return r, nil
}

func (s *Session) Accept(c model.Color, instance string) (economy.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.decide(c, instance); err != nil {
		return economy.Receipt{}, s.reject("accept", c, err)
	}
	r, err := s.engine.Accept(c, instance)
	if err != nil {
		return economy.Receipt{}, s.reject("accept", c, err)
	}
	s.commit(telemetry.EventCardAccepted, r)
	return r, nil
}

// Discard declines the pending card for good.
func (s *Session) Discard(c model.Color, instance string) (economy.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.decide(c, instance); err != nil {
		return economy.Receipt{}, s.reject("discard", c, err)
	}
	r, err := s.engine.Discard(instance)
	if err != nil {
		return economy.Receipt{}, s.reject("discard", c, err)
	}
	s.commit(telemetry.EventCardDiscarded, r)
	return r, nil
}

// Abandon cancels the pending draw; the card goes back under its deck.
func (s *Session) Abandon(c model.Color, instance string) (economy.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.decide(c, instance); err != nil {
		return economy.Receipt{}, s.reject("abandon", c, err)
	}
	r, err := s.engine.Abandon(instance)
	if err != nil {
		return economy.Receipt{}, s.reject("abandon", c, err)
	}
	s.commit(telemetry.EventDrawAbandoned, r)
	return r, nil
}

// commit clears the pending draw after a successful decision.
func (s *Session) commit(et telemetry.EventType, r economy.Receipt) {
	s.pending = nil
	if s.choice != nil && s.choice.instance == r.Ref.Instance && r.Op != economy.OpAccept {
		s.choice = nil
	}
	s.logReceipt(et, r)
}

func (s *Session) logReceipt(et telemetry.EventType, r economy.Receipt) {
	s.record(et, telemetry.EventMetadata{
		"player":   string(r.Player),
		"instance": r.Ref.Instance,
		"type":     string(r.Ref.Type),
		"id":       r.Ref.ID,
		"amount":   r.Amount,
		"balance":  r.PlayerBalance,
		"shop":     r.ShopBalance,
		"returned": r.Returned,
	})
	s.log.Info("card "+string(r.Op),
		zap.String("player", string(r.Player)),
		zap.String("instance", r.Ref.Instance),
		zap.Int("amount", r.Amount),
		zap.Int("balance", r.PlayerBalance),
		zap.Int("shop", r.ShopBalance),
	)
}

// Sell sells an owned card on a square of the card's type.
func (s *Session) Sell(c model.Color, instance string, t model.CardType) (economy.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.act(c); err != nil {
		return economy.Receipt{}, s.reject("sell", c, err)
	}
	if err := s.idle(); err != nil {
		return economy.Receipt{}, s.reject("sell", c, err)
	}
	r, err := s.engine.Sell(c, instance, t)
	if err != nil {
		return economy.Receipt{}, s.reject("sell", c, err)
	}
	s.logReceipt(telemetry.EventCardSold, r)
	return r, nil
}

// ResolveTarget works out who the pending or an owned Action/Event affects.
// A player-choice event stays pending until ChooseTarget answers it.
func (s *Session) ResolveTarget(c model.Color, instance string) (targeting.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.act(c); err != nil {
		return targeting.Resolution{}, s.reject("target", c, err)
	}
	if s.choice != nil {
		return targeting.Resolution{}, s.reject("target", c, fmt.Errorf("%w: %s", ErrChoicePending, s.choice.instance))
	}

	ref, err := s.held(c, instance)
	if err != nil {
		return targeting.Resolution{}, s.reject("target", c, err)
	}
	card, err := s.catalog.Lookup(ref)
	if err != nil {
		return targeting.Resolution{}, s.reject("target", c, err)
	}
	res, err := targeting.Resolve(card, c, s.order, s.roller)
	if err != nil {
		return targeting.Resolution{}, s.reject("target", c, err)
	}

	if res.Pending {
		s.choice = &pendingChoice{instance: instance, res: res}
		s.log.Info("target choice pending", zap.String("player", string(c)), zap.String("instance", instance))
		return res, nil
	}
	s.resolved(instance, res)
	return res, nil
}

// ChooseTarget answers a pending player-choice event.
func (s *Session) ChooseTarget(c model.Color, target model.Color) (targeting.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.act(c); err != nil {
		return targeting.Resolution{}, s.reject("choose", c, err)
	}
	if s.choice == nil {
		return targeting.Resolution{}, s.reject("choose", c, targeting.ErrNoChoice)
	}
	res, err := s.choice.res.Choose(target)
	if err != nil {
		return targeting.Resolution{}, s.reject("choose", c, err)
	}
	instance := s.choice.instance
	s.choice = nil
	s.resolved(instance, res)
	return res, nil
}

func (s *Session) resolved(instance string, res targeting.Resolution) {
	s.record(telemetry.EventTargetResolved, telemetry.EventMetadata{
		"player":   string(res.Drawer),
		"instance": instance,
		"type":     string(res.Kind),
		"affected": string(res.Affected),
		"duration": res.Duration,
		"rolled":   res.Rolled,
	})
	s.log.Info("target resolved",
		zap.String("player", string(res.Drawer)),
		zap.String("instance", instance),
		zap.String("affected", string(res.Affected)),
		zap.Int("duration", res.Duration),
	)
}

// held finds an instance that is pending for c or owned by c.
func (s *Session) held(c model.Color, instance string) (model.CardRef, error) {
	if s.pending != nil && s.pending.Ref.Instance == instance {
		return s.pending.Ref, nil
	}
	p, err := s.engine.Player(c)
	if err != nil {
		return model.CardRef{}, err
	}
	for _, t := range []model.CardType{model.Actions, model.Events} {
		if i, ok := p.Owns(instance, t); ok {
			return p.Inventory[t][i], nil
		}
	}
	return model.CardRef{}, fmt.Errorf("%w: %s does not hold %s", economy.ErrNotOwned, c, instance)
}

// EndTurn passes play to the next color. It is refused while a card or a
// target choice is pending.
func (s *Session) EndTurn(c model.Color) (model.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.act(c); err != nil {
		return "", s.reject("end_turn", c, err)
	}
	if err := s.idle(); err != nil {
		return "", s.reject("end_turn", c, err)
	}

	s.turn = (s.turn + 1) % len(s.order)
	if s.turn == 0 {
		s.round++
	}
	s.moved, s.drew = false, false
	next := s.order[s.turn]

	s.record(telemetry.EventTurnEnded, telemetry.EventMetadata{"player": string(c), "next": string(next), "round": s.round})
	s.log.Debug("turn ended", zap.String("player", string(c)), zap.String("next", string(next)))
	return next, nil
}

func (s *Session) Player(c model.Color) (economy.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Player(c)
}

func (s *Session) Locate(instance string) (economy.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Locate(instance)
}

// CanSell reports whether c could sell cards of type t where it stands.
func (s *Session) CanSell(c model.Color, t model.CardType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.CanSell(c, t)
}

// Snapshot is the full view state of a session.
type Snapshot struct {
	ID      string                `json:"id"`
	Current model.Color           `json:"current"`
	Round   int                   `json:"round"`
	Moved   bool                  `json:"moved"`
	Drew    bool                  `json:"drew"`
	Players []economy.Player      `json:"players"`
	Shop    economy.Shop          `json:"shop"`
	Policy  economy.Policy        `json:"policy"`
	Pending *economy.Drawn        `json:"pending,omitempty"`
	Choice  *targeting.Resolution `json:"choice,omitempty"`
	Decks   map[string]int        `json:"decks"`
	Ended   bool                  `json:"ended"`
	Started time.Time             `json:"started"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:      s.id,
		Current: s.order[s.turn],
		Round:   s.round,
		Moved:   s.moved,
		Drew:    s.drew,
		Players: s.engine.Players(),
		Shop:    s.engine.Shop(),
		Policy:  s.engine.Policy(),
		Decks:   map[string]int{},
		Ended:   s.ended,
		Started: s.started,
	}
	if s.pending != nil {
		d := *s.pending
		snap.Pending = &d
	}
	if s.choice != nil {
		res := s.choice.res
		snap.Choice = &res
	}
	for key, pile := range s.decks.Snapshot() {
		snap.Decks[key.String()] = len(pile)
	}
	return snap
}

// Stats summarises this session's telemetry.
func (s *Session) Stats() (telemetry.Stats, error) {
	events, err := s.events.GetEvents(s.started, nil)
	if err != nil {
		return telemetry.Stats{}, err
	}
	return telemetry.CalculateStats(events, s.started)
}

// End stops the session. Later actions fail with ErrSessionEnded.
func (s *Session) End(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	close(s.done)
	s.record(telemetry.EventSessionEnded, telemetry.EventMetadata{"reason": reason, "rounds": s.round})
	s.log.Info("session ended", zap.String("reason", reason), zap.Int("rounds", s.round))
}

func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *Session) record(et telemetry.EventType, md telemetry.EventMetadata) {
	if err := s.events.RecordEvent(et, md); err != nil {
		s.log.Warn("telemetry record failed", zap.String("event", string(et)), zap.Error(err))
	}
}

// reject logs and records a refused action, then hands err back.
func (s *Session) reject(op string, c model.Color, err error) error {
	reason := Reason(err)
	s.record(telemetry.EventTransactionRejected, telemetry.EventMetadata{
		"op": op, "player": string(c), "reason": reason,
	})
	s.log.Debug("action rejected",
		zap.String("op", op),
		zap.String("player", string(c)),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return err
}

var reasons = []error{
	economy.ErrInsufficientFunds,
	economy.ErrNotOwned,
	economy.ErrIneligibleSquare,
	economy.ErrNotInTransit,
	economy.ErrNotPurchasable,
	economy.ErrPurchaseRequired,
	economy.ErrWrongPlayer,
	economy.ErrUnknownPlayer,
	economy.ErrNoDraw,
	economy.ErrEmpty,
	targeting.ErrNotTargetable,
	targeting.ErrInvalidChoice,
	targeting.ErrNoChoice,
	catalog.ErrNotFound,
	ErrNotYourTurn,
	ErrTransactionPending,
	ErrChoicePending,
	ErrNothingPending,
	ErrAlreadyMoved,
	ErrAlreadyDrew,
	ErrSessionEnded,
}

// Reason names the sentinel behind err, or "other".
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	return "other"
}
