package config

// Balance holds the picoin amounts a session starts with
type Balance struct {
	PlayerStartingBalance int `json:"player_starting_balance"`
	ShopStartingBalance   int `json:"shop_starting_balance"`
}

// DefaultBalance returns the standard starting amounts
func DefaultBalance() Balance {
	return Balance{
		PlayerStartingBalance: 500,
		ShopStartingBalance:   10000,
	}
}

// Casual returns more generous starting amounts
func Casual() Balance {
	cfg := DefaultBalance()
	cfg.PlayerStartingBalance = 800
	return cfg
}

// Hard returns tighter starting amounts for experienced players
func Hard() Balance {
	cfg := DefaultBalance()
	cfg.PlayerStartingBalance = 300
	cfg.ShopStartingBalance = 5000
	return cfg
}
