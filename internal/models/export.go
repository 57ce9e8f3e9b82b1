package models

import "time"

// Export is one record in the exports ledger file, created by the
// template-adaptation flow.
type Export struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`   // "image" or "video"
	Format    string    `json:"format"` // "PNG", "JPG", ...
	Project   string    `json:"project"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
