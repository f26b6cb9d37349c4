package events

import "time"

const (
	EventNameCartChanged = "CartChanged"
	cartChangedVersion   = 1
	cartChangedSchema    = "marketplace.cart.changed.v1"
)

type CartChangedPayload struct {
	UserID    string    `json:"userId"`
	ChangedAt time.Time `json:"changedAt"`
}

type CartChangedEvent = EventEnvelope[CartChangedPayload]

func newCartChangedEvent(eventID string, meta EventMeta, seq int64, producer string, payload CartChangedPayload) CartChangedEvent {
	return CartChangedEvent{
		EventName:     EventNameCartChanged,
		EventVersion:  cartChangedVersion,
		EventID:       eventID,
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  payload.UserID,
		Sequence:      &seq,
		OccurredAt:    payload.ChangedAt,
		Schema:        cartChangedSchema,
		Payload:       payload,
	}
}
