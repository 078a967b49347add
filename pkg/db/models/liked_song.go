package models

import (
	"time"

	"github.com/google/uuid"
)

// LikedSong is the (user, song) join row behind the like toggle. Insert and
// delete only; the composite key makes re-likes idempotent.
type LikedSong struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	SongID    uuid.UUID `gorm:"column:song_id;type:uuid;primaryKey"`
	Song      *Song     `gorm:"foreignKey:SongID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
