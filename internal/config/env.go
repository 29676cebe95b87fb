package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// FromEnv overrides c from environment variables. DIFFICULTY picks a
// balance preset; explicit balance variables win over the preset.
func FromEnv(c *Config) {
	switch os.Getenv("DIFFICULTY") {
	case "casual":
		c.Session.StartingBalance = 0
		c.Shop.StartingBalance = 0
		c.ApplyBalance(Casual())
	case "hard":
		c.Session.StartingBalance = 0
		c.Shop.StartingBalance = 0
		c.ApplyBalance(Hard())
	}

	if val := getEnvInt("NETMASTER_STARTING_BALANCE"); val > 0 {
		c.Session.StartingBalance = val
	}
	if val := getEnvInt("NETMASTER_SHOP_BALANCE"); val > 0 {
		c.Shop.StartingBalance = val
	}
	if val := os.Getenv("NETMASTER_COLORS"); val != "" {
		c.Session.Colors = splitList(val)
	}
	if val := os.Getenv("NETMASTER_SOLD_CARDS"); val != "" {
		c.Economy.SoldCards = val
	}
	if val := os.Getenv("NETMASTER_ACTIVITY_SELL_VALUE"); val != "" {
		c.Economy.ActivitySellValue = val
	}
	if val := os.Getenv("NETMASTER_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.SeededRNG.Enabled = true
			c.SeededRNG.Seed = seed
		}
	}
	if val := os.Getenv("NETMASTER_ASSETS_DIR"); val != "" {
		c.Assets.Dir = val
	}
	if val := os.Getenv("NETMASTER_ADDR"); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv("NATS_URL"); val != "" {
		c.Input.NATSURL = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
