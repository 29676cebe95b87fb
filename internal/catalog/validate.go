package catalog

import (
	"errors"
	"fmt"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

var (
	ErrNotFound      = errors.New("card not found")
	ErrDuplicateCard = errors.New("duplicate card")
	ErrMalformedCard = errors.New("malformed card")
)

func malformed(c Card, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedCard, c.Key(), fmt.Sprintf(format, args...))
}

func validate(c Card) error {
	if !c.Kind.Drawable() {
		return malformed(c, "unknown kind %q", c.Kind)
	}
	if c.ID <= 0 {
		return malformed(c, "id must be positive")
	}
	if _, err := model.ParseColor(string(c.Color)); err != nil {
		return malformed(c, "%v", err)
	}
	if c.BuyCost < 0 || c.SellCost < 0 {
		return malformed(c, "negative cost")
	}

	blocks := 0
	for _, set := range []bool{
		c.User != nil, c.Equipment != nil, c.Service != nil, c.Activity != nil,
		c.Challenge != nil, c.Action != nil, c.Event != nil,
	} {
		if set {
			blocks++
		}
	}
	if blocks != 1 {
		return malformed(c, "expected exactly one %s block, found %d", c.Kind, blocks)
	}

	switch c.Kind {
	case model.Users:
		if c.User == nil {
			return malformed(c, "missing users block")
		}
		if c.User.UsersCount <= 0 {
			return malformed(c, "users_count must be positive")
		}
	case model.Equipments:
		return validateEquipment(c)
	case model.Services:
		if c.Service == nil {
			return malformed(c, "missing services block")
		}
		if c.Service.Title == "" {
			return malformed(c, "service title is required")
		}
	case model.Activities:
		if c.Activity == nil {
			return malformed(c, "missing activities block")
		}
		if c.Activity.MessageSize <= 0 || c.Activity.Rate <= 0 {
			return malformed(c, "message_size and rate must be positive")
		}
		if c.Activity.ApplicationFee < 0 {
			return malformed(c, "negative application_fee")
		}
	case model.Challenges:
		if c.Challenge == nil {
			return malformed(c, "missing challenges block")
		}
		if c.Challenge.NTurns <= 0 {
			return malformed(c, "n_turns must be positive")
		}
		if c.Color != model.Neutral {
			return malformed(c, "challenges are neutral")
		}
	case model.Actions:
		if c.Action == nil {
			return malformed(c, "missing actions block")
		}
		if c.Action.Target != nil && !c.Action.Target.IsFaction() {
			return malformed(c, "action target %q is not a player color", *c.Action.Target)
		}
		if c.Color != model.Neutral {
			return malformed(c, "actions are neutral")
		}
	case model.Events:
		return validateEvent(c)
	}
	return nil
}

func validateEquipment(c Card) error {
	e := c.Equipment
	if e == nil {
		return malformed(c, "missing equipments block")
	}
	switch e.Category {
	case Router:
		if e.QueueSize <= 0 {
			return malformed(c, "router needs a positive queue_size")
		}
		if e.LinkRate != 0 || e.LinkLength != 0 {
			return malformed(c, "router cannot carry link fields")
		}
	case Link:
		if e.LinkRate <= 0 || e.LinkLength <= 0 {
			return malformed(c, "link needs positive link_rate and link_length")
		}
		if e.QueueSize != 0 {
			return malformed(c, "link cannot carry queue_size")
		}
	default:
		return malformed(c, "unknown equipment category %q", e.Category)
	}
	return nil
}

func validateEvent(c Card) error {
	e := c.Event
	if e == nil {
		return malformed(c, "missing events block")
	}
	if c.Color != model.Neutral {
		return malformed(c, "events are neutral")
	}
	if !e.Duration.Variable && e.Duration.Turns < 0 {
		return malformed(c, "negative duration")
	}
	if e.TargetLink != nil && e.TargetQueue != nil {
		return malformed(c, "target_link and target_queue are exclusive")
	}
	if e.PlayerChoice && e.TargetPlayer != nil {
		return malformed(c, "player_choice requires no target_player")
	}
	if e.TargetPlayer != nil && !e.TargetPlayer.IsFaction() {
		return malformed(c, "target_player %q is not a player color", *e.TargetPlayer)
	}
	return nil
}
