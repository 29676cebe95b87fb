package model

import "fmt"

// CardRef points at one physical card instance and the catalog entry it shows.
type CardRef struct {
	Instance string   `json:"instance"`
	Type     CardType `json:"type"`
	ID       int      `json:"id"`
}

// Key is the catalog key of the referenced card, e.g. "users/3".
func (r CardRef) Key() string {
	return CardKey(r.Type, r.ID)
}

func CardKey(t CardType, id int) string {
	return fmt.Sprintf("%s/%d", t, id)
}
