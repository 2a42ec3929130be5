package model

import (
	"encoding/json"
	"time"
)

// Publisher request lifecycle.  Earlier handler generations wrote
// "admin_approved"/"admin_rejected" while newer ones wrote the bare forms;
// the vocabulary is collapsed to one enum and the legacy spellings are
// accepted as read/filter aliases via NormalizeStatus.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Priorities accepted on submission.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PublisherRequest is the central workflow entity: a creative/offer request
// submitted by an affiliate, reviewed by staff.  SubmittedData preserves the
// original submission payload verbatim.
//
// Fields map 1:1 onto the `publisher_requests` table.  ApprovedBy/RejectedBy
// reference the deciding user; only one pair is populated for a decided row.
type PublisherRequest struct {
	ID            int64           // publisher_requests.id
	PublisherName string          // publisher_requests.publisher_name
	Email         string          // publisher_requests.email
	CompanyName   string          // publisher_requests.company_name
	TelegramID    *string         // publisher_requests.telegram_id (nullable)
	OfferID       string          // publisher_requests.offer_id (external platform offer)
	CreativeType  string          // publisher_requests.creative_type
	Priority      string          // publisher_requests.priority
	Status        string          // publisher_requests.status
	SubmittedData json.RawMessage // publisher_requests.submitted_data
	AdminNotes    *string         // publisher_requests.admin_notes (nullable)
	ClientNotes   *string         // publisher_requests.client_notes (nullable)
	ApprovedBy    *int64          // publisher_requests.approved_by (nullable)
	ApprovedAt    *time.Time      // publisher_requests.approved_at (nullable)
	RejectedBy    *int64          // publisher_requests.rejected_by (nullable)
	RejectedAt    *time.Time      // publisher_requests.rejected_at (nullable)
	CreatedAt     time.Time       // publisher_requests.created_at
	UpdatedAt     time.Time       // publisher_requests.updated_at
}

// NormalizeStatus maps any accepted status spelling, including the legacy
// admin_-prefixed forms, onto the canonical enum.  It returns "" for values
// outside the vocabulary so callers can reject them.
func NormalizeStatus(s string) string {
	switch s {
	case StatusPending:
		return StatusPending
	case StatusApproved, "admin_approved":
		return StatusApproved
	case StatusRejected, "admin_rejected":
		return StatusRejected
	}
	return ""
}

// ValidPriority reports whether p is one of the accepted priorities.
func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}
