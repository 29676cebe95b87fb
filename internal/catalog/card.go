package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"

	"gopkg.in/yaml.v3"
)

// EquipmentCategory splits equipment cards into routers and links.
type EquipmentCategory string

const (
	Router EquipmentCategory = "router"
	Link   EquipmentCategory = "link"
)

// Card is one catalog entry. Exactly one of the kind blocks is set,
// matching Kind.
type Card struct {
	ID       int            `json:"id"`
	Kind     model.CardType `json:"kind"`
	Color    model.Color    `json:"color"`
	Level    string         `json:"level"`
	BuyCost  int            `json:"buy_cost"`
	SellCost int            `json:"sell_cost"`

	User      *User      `json:"user,omitempty"`
	Equipment *Equipment `json:"equipment,omitempty"`
	Service   *Service   `json:"service,omitempty"`
	Activity  *Activity  `json:"activity,omitempty"`
	Challenge *Challenge `json:"challenge,omitempty"`
	Action    *Action    `json:"action,omitempty"`
	Event     *Event     `json:"event,omitempty"`
}

type User struct {
	UsersCount   int      `yaml:"users_count" json:"users_count"`
	Applications []string `yaml:"applications" json:"applications"`
	Services     []string `yaml:"services" json:"services"`
}

type Equipment struct {
	Category   EquipmentCategory `yaml:"category" json:"category"`
	Model      string            `yaml:"model" json:"model"`
	SpecificID int               `yaml:"specific_id" json:"specific_id"`
	QueueSize  int               `yaml:"queue_size,omitempty" json:"queue_size,omitempty"`
	LinkRate   int               `yaml:"link_rate,omitempty" json:"link_rate,omitempty"`
	LinkLength int               `yaml:"link_length,omitempty" json:"link_length,omitempty"`
}

type Service struct {
	Title      string `yaml:"title" json:"title"`
	Conditions string `yaml:"conditions" json:"conditions"`
	Validity   string `yaml:"validity" json:"validity"`
}

type Activity struct {
	Title            string `yaml:"title" json:"title"`
	MessageSize      int    `yaml:"message_size" json:"message_size"`
	Rate             int    `yaml:"rate" json:"rate"`
	DropsAllowed     int    `yaml:"drops_allowed" json:"drops_allowed"`
	RewardPerPacket  int    `yaml:"reward_per_packet" json:"reward_per_packet"`
	MessageBonus     *int   `yaml:"message_bonus,omitempty" json:"message_bonus,omitempty"`
	PenaltyPerPacket *int   `yaml:"penalty_per_packet,omitempty" json:"penalty_per_packet,omitempty"`
	ApplicationFee   int    `yaml:"application_fee" json:"application_fee"`
	BonusCondition   string `yaml:"bonus_condition,omitempty" json:"bonus_condition,omitempty"`
	PenaltyCondition string `yaml:"penalty_condition,omitempty" json:"penalty_condition,omitempty"`
}

type Challenge struct {
	Title            string `yaml:"title" json:"title"`
	NTurns           int    `yaml:"n_turns" json:"n_turns"`
	MessageSize      int    `yaml:"message_size" json:"message_size"`
	RewardRules      string `yaml:"reward_rules" json:"reward_rules"`
	QuitFee          int    `yaml:"quit_fee" json:"quit_fee"`
	TimeLimitSeconds *int   `yaml:"time_limit_seconds,omitempty" json:"time_limit_seconds,omitempty"`
	TimeBonus        *int   `yaml:"time_bonus,omitempty" json:"time_bonus,omitempty"`
}

// Action targets the drawing player when Target is nil.
type Action struct {
	Title       string       `yaml:"title" json:"title"`
	Description string       `yaml:"description" json:"description"`
	Target      *model.Color `yaml:"target,omitempty" json:"target,omitempty"`
	RouterID    *int         `yaml:"router_id,omitempty" json:"router_id,omitempty"`
}

// Event hits either a link or a router queue, never both.
type Event struct {
	Title        string       `yaml:"title" json:"title"`
	Description  string       `yaml:"description" json:"description"`
	Duration     Duration     `yaml:"duration" json:"duration"`
	RouterID     *int         `yaml:"router_id,omitempty" json:"router_id,omitempty"`
	TargetLink   *int         `yaml:"target_link,omitempty" json:"target_link,omitempty"`
	TargetQueue  *int         `yaml:"target_queue,omitempty" json:"target_queue,omitempty"`
	TargetPlayer *model.Color `yaml:"target_player,omitempty" json:"target_player,omitempty"`
	PlayerChoice bool         `yaml:"player_choice,omitempty" json:"player_choice,omitempty"`
}

// Duration is a fixed number of turns or "variable", rolled at play time.
type Duration struct {
	Turns    int  `json:"turns"`
	Variable bool `json:"variable"`
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a number or \"variable\"", n.Line)
	}
	if strings.EqualFold(strings.TrimSpace(n.Value), "variable") {
		*d = Duration{Variable: true}
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		return fmt.Errorf("line %d: duration %q: %w", n.Line, n.Value, err)
	}
	*d = Duration{Turns: v}
	return nil
}

func (d Duration) String() string {
	if d.Variable {
		return "variable"
	}
	return strconv.Itoa(d.Turns)
}

// Key is the catalog key, e.g. "equipments/4".
func (c Card) Key() string {
	return model.CardKey(c.Kind, c.ID)
}

// Purchasable reports whether the card is bought rather than accepted.
func (c Card) Purchasable() bool {
	return c.Kind.Purchasable()
}

// Title is a short display name for any kind.
func (c Card) Title() string {
	switch {
	case c.User != nil:
		return fmt.Sprintf("%d users", c.User.UsersCount)
	case c.Equipment != nil:
		return fmt.Sprintf("%s %s", c.Equipment.Category, c.Equipment.Model)
	case c.Service != nil:
		return c.Service.Title
	case c.Activity != nil:
		return c.Activity.Title
	case c.Challenge != nil:
		return c.Challenge.Title
	case c.Action != nil:
		return c.Action.Title
	case c.Event != nil:
		return c.Event.Title
	}
	return c.Key()
}

// text is everything free-word search looks at.
func (c Card) text() string {
	parts := []string{c.Title()}
	switch {
	case c.User != nil:
		parts = append(parts, c.User.Applications...)
		parts = append(parts, c.User.Services...)
	case c.Service != nil:
		parts = append(parts, c.Service.Conditions, c.Service.Validity)
	case c.Activity != nil:
		parts = append(parts, c.Activity.BonusCondition, c.Activity.PenaltyCondition)
	case c.Challenge != nil:
		parts = append(parts, c.Challenge.RewardRules)
	case c.Action != nil:
		parts = append(parts, c.Action.Description)
	case c.Event != nil:
		parts = append(parts, c.Event.Description)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
