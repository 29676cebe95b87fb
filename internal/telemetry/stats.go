package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period        string            `json:"period"`
	EventCounts   map[EventType]int `json:"event_counts"`
	Draws         int               `json:"draws"`
	EmptyDraws    int               `json:"empty_draws"`
	Purchases     int               `json:"purchases"`
	Sales         int               `json:"sales"`
	Rejections    int               `json:"rejections"`
	PicoinsSpent  int               `json:"picoins_spent"`
	PicoinsEarned int               `json:"picoins_earned"`
	DrawsByType   map[string]int    `json:"draws_by_type"`
	RejectedBy    map[string]int    `json:"rejected_by"`
	BuyRate       float64           `json:"buy_rate"`
}

// CalculateStats summarises the card economy from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:      since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
		DrawsByType: make(map[string]int),
		RejectedBy:  make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventCardDrawn:
			stats.Draws++
			if t, ok := metadata["type"].(string); ok {
				stats.DrawsByType[t]++
			}
		case EventDeckEmpty:
			stats.EmptyDraws++
		case EventCardBought:
			stats.Purchases++
			stats.PicoinsSpent += amount(metadata)
		case EventCardSold:
			stats.Sales++
			stats.PicoinsEarned += amount(metadata)
		case EventTransactionRejected:
			stats.Rejections++
			if reason, ok := metadata["reason"].(string); ok {
				stats.RejectedBy[reason]++
			}
		}
	}

	if stats.Draws > 0 {
		stats.BuyRate = float64(stats.Purchases) / float64(stats.Draws)
	}

	return stats, nil
}

// JSON numbers decode as float64.
func amount(m EventMetadata) int {
	if v, ok := m["amount"].(float64); ok {
		return int(v)
	}
	return 0
}
