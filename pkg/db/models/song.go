package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Song is user-submitted track metadata. The paths reference objects in the
// song/image buckets; there is no deletion path.
type Song struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	Title     string         `gorm:"column:title;not null"`
	Author    string         `gorm:"column:author;not null"`
	SongPath  string         `gorm:"column:song_path;not null"`
	ImagePath string         `gorm:"column:image_path;not null"`
	Genres    pq.StringArray `gorm:"column:genres;type:text[];default:ARRAY[]::text[]"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}
