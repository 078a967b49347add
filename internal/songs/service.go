package songs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/pagination"
)

type uploadGate interface {
	CanUpload(ctx context.Context, userID uuid.UUID) (bool, error)
}

// UploadInput carries a validated upload request. The storage paths reference
// objects already written through presigned URLs.
type UploadInput struct {
	Title     string
	Author    string
	SongPath  string
	ImagePath string
	Genres    []string
}

type ServiceParams struct {
	Repo         Repository
	Entitlements uploadGate
}

// Service owns the song catalog and the like toggle.
type Service struct {
	repo Repository
	gate uploadGate
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "songs repo required")
	}
	if params.Entitlements == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service required")
	}
	return &Service{repo: params.Repo, gate: params.Entitlements}, nil
}

// Upload inserts a song row for a subscriber. Non-subscribers get a
// payment-required failure before any write.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, input UploadInput) (*models.Song, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Author) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and author are required")
	}
	if strings.TrimSpace(input.SongPath) == "" || strings.TrimSpace(input.ImagePath) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "song and image paths are required")
	}

	allowed, err := s.gate.CanUpload(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodePaymentRequired, "active subscription required to upload")
	}

	song := &models.Song{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(input.Title),
		Author:    strings.TrimSpace(input.Author),
		SongPath:  strings.TrimSpace(input.SongPath),
		ImagePath: strings.TrimSpace(input.ImagePath),
		Genres:    pq.StringArray(input.Genres),
	}
	if err := s.repo.Create(ctx, song); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert song")
	}
	return song, nil
}

// List returns the public catalog page.
func (s *Service) List(ctx context.Context, search string, page pagination.Params) ([]models.Song, *pagination.Cursor, error) {
	rows, next, err := s.repo.List(ctx, ListQuery{Search: search, Page: page})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list songs")
	}
	return rows, next, nil
}

// Find loads a single song by id.
func (s *Service) Find(ctx context.Context, songID uuid.UUID) (*models.Song, error) {
	if songID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "song id is required")
	}
	song, err := s.repo.FindByID(ctx, songID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load song")
	}
	if song == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "song not found")
	}
	return song, nil
}

// ListByUser returns the user's own uploads.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Song, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user songs")
	}
	return rows, nil
}

// Like marks the song as liked. Safe to repeat.
func (s *Service) Like(ctx context.Context, userID, songID uuid.UUID) error {
	if userID == uuid.Nil || songID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and song ids are required")
	}
	song, err := s.repo.FindByID(ctx, songID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load song")
	}
	if song == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "song not found")
	}
	if err := s.repo.Like(ctx, userID, songID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "like song")
	}
	return nil
}

// Unlike removes the like if present.
func (s *Service) Unlike(ctx context.Context, userID, songID uuid.UUID) error {
	if userID == uuid.Nil || songID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and song ids are required")
	}
	if err := s.repo.Unlike(ctx, userID, songID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlike song")
	}
	return nil
}

// ListLiked returns the user's liked songs with song detail attached.
func (s *Service) ListLiked(ctx context.Context, userID uuid.UUID) ([]models.LikedSong, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	rows, err := s.repo.ListLiked(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list liked songs")
	}
	return rows, nil
}
