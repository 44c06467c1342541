package models

// DailyStats represents per-day signup counts for the admin dashboard.
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
