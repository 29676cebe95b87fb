package telemetry

import "time"

type EventType string

const (
	EventSessionStarted      EventType = "session_started"
	EventSessionEnded        EventType = "session_ended"
	EventTurnEnded           EventType = "turn_ended"
	EventPlayerMoved         EventType = "player_moved"
	EventCardDrawn           EventType = "card_drawn"
	EventDeckEmpty           EventType = "deck_empty"
	EventCardBought          EventType = "card_bought"
	EventCardSold            EventType = "card_sold"
	EventCardAccepted        EventType = "card_accepted"
	EventCardDiscarded       EventType = "card_discarded"
	EventDrawAbandoned       EventType = "draw_abandoned"
	EventTargetResolved      EventType = "target_resolved"
	EventTransactionRejected EventType = "transaction_rejected"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
