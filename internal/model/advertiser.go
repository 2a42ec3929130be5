package model

import "time"

// Advertiser statuses.
const (
	AdvertiserActive    = "active"
	AdvertiserInactive  = "inactive"
	AdvertiserSuspended = "suspended"
)

// How the local advertiser row came to exist.
const (
	CreatedManual = "manual"
	CreatedViaAPI = "api"
)

// Advertiser is a merchant/brand record.  Rows are either entered manually
// through the admin form or pulled from the tracking platform, in which case
// ExternalID holds the platform's advertiser id.  (platform, external_id)
// is unique so the same platform advertiser cannot be imported twice.
type Advertiser struct {
	ID         int64     // advertisers.id
	Name       string    // advertisers.name
	Company    string    // advertisers.company
	Email      string    // advertisers.email
	Website    string    // advertisers.website
	Platform   string    // advertisers.platform
	ExternalID *string   // advertisers.external_id (nullable for manual rows)
	CreatedVia string    // advertisers.created_via: manual | api
	Status     string    // advertisers.status
	CreatedBy  *int64    // advertisers.created_by (nullable)
	CreatedAt  time.Time // advertisers.created_at
	UpdatedAt  time.Time // advertisers.updated_at
}

// ValidAdvertiserStatus reports whether s is an accepted advertiser status.
func ValidAdvertiserStatus(s string) bool {
	return s == AdvertiserActive || s == AdvertiserInactive || s == AdvertiserSuspended
}
