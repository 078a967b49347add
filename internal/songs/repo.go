package songs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	"github.com/calebmoran/tunewave-backend/pkg/pagination"
)

// ListQuery configures the catalog listing.
type ListQuery struct {
	Search string
	Page   pagination.Params
}

// Repository handles song and liked-song persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, song *models.Song) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Song, error)
	List(ctx context.Context, query ListQuery) ([]models.Song, *pagination.Cursor, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Song, error)
	Like(ctx context.Context, userID, songID uuid.UUID) error
	Unlike(ctx context.Context, userID, songID uuid.UUID) error
	IsLiked(ctx context.Context, userID, songID uuid.UUID) (bool, error)
	ListLiked(ctx context.Context, userID uuid.UUID) ([]models.LikedSong, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a songs repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, song *models.Song) error {
	return r.db.WithContext(ctx).Create(song).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	var song models.Song
	if err := r.db.WithContext(ctx).First(&song, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &song, nil
}

// List returns newest-first songs, optionally filtered by title substring,
// with keyset pagination on (created_at, id).
func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Song, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Page.Limit)

	q := r.db.WithContext(ctx).Model(&models.Song{})
	if search := strings.TrimSpace(query.Search); search != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	cursor, err := pagination.ParseCursor(query.Page.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Song
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Page.Limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Song, error) {
	var rows []models.Song
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Like inserts the join row; re-likes hit the composite PK and no-op.
func (r *repository) Like(ctx context.Context, userID, songID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LikedSong{UserID: userID, SongID: songID}).Error
}

func (r *repository) Unlike(ctx context.Context, userID, songID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Delete(&models.LikedSong{}).Error
}

func (r *repository) IsLiked(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LikedSong{}).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListLiked(ctx context.Context, userID uuid.UUID) ([]models.LikedSong, error) {
	var rows []models.LikedSong
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Song").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
