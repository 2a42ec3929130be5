// Package queue defines message payloads exchanged over the message broker.
package queue

// DecisionAuditEvent is published when a publisher request is approved or
// rejected.  It carries enough context for downstream consumers to log or
// notify without querying the primary database.
type DecisionAuditEvent struct {
	RequestID     int64  `json:"request_id"`
	PublisherName string `json:"publisher_name"`
	OfferID       string `json:"offer_id"`
	Status        string `json:"status"`
	ActorID       int64  `json:"actor_id"`
	Notes         string `json:"notes,omitempty"`
	DecidedAt     string `json:"decided_at"`
}
