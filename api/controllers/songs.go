package controllers

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calebmoran/tunewave-backend/api/middleware"
	"github.com/calebmoran/tunewave-backend/api/responses"
	"github.com/calebmoran/tunewave-backend/api/validators"
	songsvc "github.com/calebmoran/tunewave-backend/internal/songs"
	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
	"github.com/calebmoran/tunewave-backend/pkg/pagination"
)

type SongService interface {
	Upload(ctx context.Context, userID uuid.UUID, input songsvc.UploadInput) (*models.Song, error)
	Find(ctx context.Context, songID uuid.UUID) (*models.Song, error)
	List(ctx context.Context, search string, page pagination.Params) ([]models.Song, *pagination.Cursor, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Song, error)
	Like(ctx context.Context, userID, songID uuid.UUID) error
	Unlike(ctx context.Context, userID, songID uuid.UUID) error
	ListLiked(ctx context.Context, userID uuid.UUID) ([]models.LikedSong, error)
}

type SongStorage interface {
	SignedSongUploadURL(object, contentType string, now time.Time) (string, error)
	SignedImageUploadURL(object, contentType string, now time.Time) (string, error)
	SignedSongDownloadURL(object string, now time.Time) (string, error)
	SignedImageDownloadURL(object string, now time.Time) (string, error)
}

type songPresignRequest struct {
	SongContentType  string `json:"song_content_type" validate:"required"`
	ImageContentType string `json:"image_content_type" validate:"required"`
}

type songPresignResponse struct {
	SongPath       string `json:"song_path"`
	SongUploadURL  string `json:"song_upload_url"`
	ImagePath      string `json:"image_path"`
	ImageUploadURL string `json:"image_upload_url"`
}

type songCreateRequest struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Author    string   `json:"author" validate:"required,max=200"`
	SongPath  string   `json:"song_path" validate:"required"`
	ImagePath string   `json:"image_path" validate:"required"`
	Genres    []string `json:"genres,omitempty" validate:"max=10"`
}

type songResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	SongPath  string    `json:"song_path"`
	ImagePath string    `json:"image_path"`
	Genres    []string  `json:"genres"`
	CreatedAt time.Time `json:"created_at"`
}

type songListResponse struct {
	Songs      []songResponse `json:"songs"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

type songStreamResponse struct {
	SongURL  string `json:"song_url"`
	ImageURL string `json:"image_url"`
}

func newSongResponse(song models.Song) songResponse {
	genres := []string(song.Genres)
	if genres == nil {
		genres = []string{}
	}
	return songResponse{
		ID:        song.ID,
		UserID:    song.UserID,
		Title:     song.Title,
		Author:    song.Author,
		SongPath:  song.SongPath,
		ImagePath: song.ImagePath,
		Genres:    genres,
		CreatedAt: song.CreatedAt,
	}
}

// SongPresign issues signed PUT URLs for a track and its artwork. The object
// names are generated server-side so clients cannot overwrite other uploads.
func SongPresign(storage SongStorage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storage unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload songPresignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		uploadID := uuid.NewString()
		songObject := path.Join("songs", userID.String(), uploadID+extensionFor(payload.SongContentType, ".mp3"))
		imageObject := path.Join("images", userID.String(), uploadID+extensionFor(payload.ImageContentType, ".jpg"))

		songURL, err := storage.SignedSongUploadURL(songObject, payload.SongContentType, now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign song upload url"))
			return
		}
		imageURL, err := storage.SignedImageUploadURL(imageObject, payload.ImageContentType, now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign image upload url"))
			return
		}

		responses.WriteSuccess(w, songPresignResponse{
			SongPath:       songObject,
			SongUploadURL:  songURL,
			ImagePath:      imageObject,
			ImageUploadURL: imageURL,
		})
	}
}

// SongCreate registers an uploaded track. Requires an active subscription.
func SongCreate(svc SongService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload songCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		song, err := svc.Upload(r.Context(), userID, songsvc.UploadInput{
			Title:     payload.Title,
			Author:    payload.Author,
			SongPath:  payload.SongPath,
			ImagePath: payload.ImagePath,
			Genres:    payload.Genres,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSongResponse(*song))
	}
}

// SongList returns the public catalog, newest first, with optional title search.
func SongList(svc SongService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := pagination.Params{Limit: limit}
		if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
			if _, err := pagination.ParseCursor(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
				return
			}
			page.Cursor = raw
		}

		search := validators.SanitizeString(r.URL.Query().Get("search"), 200)

		songs, next, err := svc.List(r.Context(), search, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := songListResponse{Songs: make([]songResponse, 0, len(songs))}
		for _, song := range songs {
			resp.Songs = append(resp.Songs, newSongResponse(song))
		}
		if next != nil {
			encoded := pagination.EncodeCursor(*next)
			resp.NextCursor = &encoded
		}

		responses.WriteSuccess(w, resp)
	}
}

// SongListMine returns the caller's uploaded tracks.
func SongListMine(svc SongService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		songs, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]songResponse, 0, len(songs))
		for _, song := range songs {
			resp = append(resp, newSongResponse(song))
		}
		responses.WriteSuccess(w, resp)
	}
}

// SongStreamURLs signs short-lived GET URLs for a track and its artwork.
func SongStreamURLs(svc SongService, storage SongStorage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || storage == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		songID, err := parseSongID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		song, err := svc.Find(r.Context(), songID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		songURL, err := storage.SignedSongDownloadURL(song.SongPath, now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign song download url"))
			return
		}
		imageURL, err := storage.SignedImageDownloadURL(song.ImagePath, now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign image download url"))
			return
		}

		responses.WriteSuccess(w, songStreamResponse{SongURL: songURL, ImageURL: imageURL})
	}
}

// SongLike records a like for the signed-in user. Repeats are no-ops.
func SongLike(svc SongService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		songID, err := parseSongID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Like(r.Context(), userID, songID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// SongUnlike removes a like for the signed-in user.
func SongUnlike(svc SongService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		songID, err := parseSongID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unlike(r.Context(), userID, songID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// SongListLiked returns the caller's liked tracks, most recently liked first.
func SongListLiked(svc SongService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		liked, err := svc.ListLiked(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]songResponse, 0, len(liked))
		for _, row := range liked {
			if row.Song == nil {
				continue
			}
			resp = append(resp, newSongResponse(*row.Song))
		}
		responses.WriteSuccess(w, resp)
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, nil
}

func parseSongID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "songId")
	songID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid song id")
	}
	return songID, nil
}

func extensionFor(contentType, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/flac":
		return ".flac"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return fallback
}
