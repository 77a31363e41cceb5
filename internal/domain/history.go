package domain

import "time"

// HistoryEntry records one enhancement with its before and after values.
type HistoryEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	User        Actor     `json:"user"`
	ProductID   string    `json:"productId"`
	ProductCode string    `json:"productCode"`
	Field       string    `json:"field"`
	Before      string    `json:"before"`
	After       string    `json:"after"`
}
