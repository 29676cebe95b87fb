package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "netmaster.yml"

type Config struct {
	Version   string    `yaml:"version" json:"version"`
	Session   Session   `yaml:"session" json:"session"`
	Shop      Shop      `yaml:"shop" json:"shop"`
	Economy   Economy   `yaml:"economy" json:"economy"`
	SeededRNG SeededRNG `yaml:"seeded_rng" json:"seeded_rng"`
	Assets    Assets    `yaml:"assets" json:"assets"`
	Server    Server    `yaml:"server" json:"server"`
	Input     Input     `yaml:"input" json:"input"`
	Log       Log       `yaml:"log" json:"log"`
}

type Session struct {
	Colors          []string `yaml:"colors" json:"colors"`
	StartingBalance int      `yaml:"starting_balance" json:"starting_balance"`
}

type Shop struct {
	StartingBalance int `yaml:"starting_balance" json:"starting_balance"`
}

// Economy picks the sold card and activity pricing rules.
type Economy struct {
	SoldCards         string `yaml:"sold_cards" json:"sold_cards"`
	ActivitySellValue string `yaml:"activity_sell_value" json:"activity_sell_value"`
}

type SeededRNG struct {
	Enabled bool  `yaml:"enabled" json:"enabled"`
	Seed    int64 `yaml:"seed" json:"seed"`
}

// Assets.Dir is empty when decks come straight from the catalog.
type Assets struct {
	Dir            string `yaml:"dir" json:"dir"`
	ThumbnailWidth int    `yaml:"thumbnail_width" json:"thumbnail_width"`
}

type Server struct {
	Addr      string `yaml:"addr" json:"addr"`
	PublicURL string `yaml:"public_url" json:"public_url"`
}

type Input struct {
	Signals     bool   `yaml:"signals" json:"signals"`
	NATSURL     string `yaml:"nats_url" json:"nats_url"`
	ExitSubject string `yaml:"exit_subject" json:"exit_subject"`
}

type Log struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// Default is the configuration used when no file exists.
func Default() *Config {
	c := &Config{Input: Input{Signals: true}}
	c.ApplyDefaults()
	return c
}

func (s *Session) ApplyDefaults(b Balance) {
	if len(s.Colors) == 0 {
		s.Colors = []string{"blue", "red", "yellow", "green"}
	}
	if s.StartingBalance == 0 {
		s.StartingBalance = b.PlayerStartingBalance
	}
}

func (c *Config) ApplyDefaults() {
	c.ApplyBalance(DefaultBalance())
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Economy.SoldCards == "" {
		c.Economy.SoldCards = "retire"
	}
	if c.Economy.ActivitySellValue == "" {
		c.Economy.ActivitySellValue = "application_fee"
	}
	if c.Assets.ThumbnailWidth == 0 {
		c.Assets.ThumbnailWidth = 320
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Input.ExitSubject == "" {
		c.Input.ExitSubject = "netmaster.input"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ApplyBalance fills balances that are still unset from b.
func (c *Config) ApplyBalance(b Balance) {
	c.Session.ApplyDefaults(b)
	if c.Shop.StartingBalance == 0 {
		c.Shop.StartingBalance = b.ShopStartingBalance
	}
}

// Load reads a YAML config. A missing file yields Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	r := Config{Input: Input{Signals: true}}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r.ApplyDefaults()
	return &r, nil
}
