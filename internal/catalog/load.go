package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed residential.yml
var residentialYAML []byte

type common struct {
	ID       int         `yaml:"id"`
	Color    model.Color `yaml:"color"`
	BuyCost  int         `yaml:"buy_cost"`
	SellCost int         `yaml:"sell_cost"`
}

type userEntry struct {
	common `yaml:",inline"`
	User   `yaml:",inline"`
}

type equipmentEntry struct {
	common    `yaml:",inline"`
	Equipment `yaml:",inline"`
}

type serviceEntry struct {
	common  `yaml:",inline"`
	Service `yaml:",inline"`
}

type activityEntry struct {
	common   `yaml:",inline"`
	Activity `yaml:",inline"`
}

type challengeEntry struct {
	common    `yaml:",inline"`
	Challenge `yaml:",inline"`
}

type actionEntry struct {
	common `yaml:",inline"`
	Action `yaml:",inline"`
}

type eventEntry struct {
	common `yaml:",inline"`
	Event  `yaml:",inline"`
}

type document struct {
	Level      string           `yaml:"level"`
	Users      []userEntry      `yaml:"users"`
	Equipments []equipmentEntry `yaml:"equipments"`
	Services   []serviceEntry   `yaml:"services"`
	Activities []activityEntry  `yaml:"activities"`
	Challenges []challengeEntry `yaml:"challenges"`
	Actions    []actionEntry    `yaml:"actions"`
	Events     []eventEntry     `yaml:"events"`
}

// Residential returns the built-in residential level catalog.
func Residential() (*Catalog, error) {
	return Load(bytes.NewReader(residentialYAML))
}

// Load decodes a catalog document. Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Level == "" {
		doc.Level = "residential"
	}
	return New(doc.Level, doc.cards())
}

func (d document) cards() []Card {
	out := []Card{}
	base := func(kind model.CardType, c common) Card {
		color := c.Color
		if color == "" && !kind.Purchasable() {
			color = model.Neutral
		}
		return Card{ID: c.ID, Kind: kind, Color: color, Level: d.Level, BuyCost: c.BuyCost, SellCost: c.SellCost}
	}

	for _, e := range d.Users {
		c := base(model.Users, e.common)
		u := e.User
		c.User = &u
		out = append(out, c)
	}
	for _, e := range d.Equipments {
		c := base(model.Equipments, e.common)
		eq := e.Equipment
		c.Equipment = &eq
		out = append(out, c)
	}
	for _, e := range d.Services {
		c := base(model.Services, e.common)
		s := e.Service
		c.Service = &s
		out = append(out, c)
	}
	for _, e := range d.Activities {
		c := base(model.Activities, e.common)
		a := e.Activity
		c.Activity = &a
		// Taking on an activity costs its application fee.
		if c.BuyCost == 0 {
			c.BuyCost = a.ApplicationFee
		}
		out = append(out, c)
	}
	for _, e := range d.Challenges {
		c := base(model.Challenges, e.common)
		ch := e.Challenge
		c.Challenge = &ch
		out = append(out, c)
	}
	for _, e := range d.Actions {
		c := base(model.Actions, e.common)
		a := e.Action
		c.Action = &a
		out = append(out, c)
	}
	for _, e := range d.Events {
		c := base(model.Events, e.common)
		ev := e.Event
		c.Event = &ev
		out = append(out, c)
	}
	return out
}
