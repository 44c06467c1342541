package models

import "time"

// WatchProgress tracks playback position per user and Jellyfin item. Ticks
// are Jellyfin's 100ns units, stored as int64 to survive long runtimes.
type WatchProgress struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:ux_watch_progress_user_item,unique,priority:1" json:"user_id"`
	JellyfinItemID string    `gorm:"type:varchar(100);not null;index:ux_watch_progress_user_item,unique,priority:2" json:"jellyfin_item_id"`
	PositionTicks  int64     `gorm:"not null;default:0" json:"position_ticks"`
	TotalTicks     int64     `gorm:"not null;default:0" json:"total_ticks"`
	IsWatched      bool      `gorm:"not null;default:false" json:"is_watched"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}
