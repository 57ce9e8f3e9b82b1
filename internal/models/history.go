package models

import "time"

// HistoryEntry is one append-only record in the history ledger file.
type HistoryEntry struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	Action      string    `json:"action"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Time        string    `json:"time"`
	CreatedAt   time.Time `json:"createdAt"`
}
