package models

import "time"

// Sportsbook is the internal identity for a betting book. The integer key is
// stable once assigned; display metadata may change without affecting any
// BettingLine that already references it.
type Sportsbook struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	IsSharp     bool      `json:"is_sharp"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SportsbookMapping relates an external identifier or name, tagged by source,
// to an internal Sportsbook. Created at bootstrap and augmented lazily per
// §4.4 whenever a collector reports an identifier the resolver hasn't seen.
type SportsbookMapping struct {
	Source            string    `json:"source"`
	ExternalID         string    `json:"external_id,omitempty"`
	ExternalName       string    `json:"external_name,omitempty"`
	SportsbookID       int64     `json:"sportsbook_id"`
	NeedsManualReview  bool      `json:"needs_manual_review"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
