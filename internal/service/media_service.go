package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/ecofit/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrMediaUnavailable = errors.New("media storage is not configured")
	ErrMediaNotFound    = errors.New("exercise has no media")
)

// MediaUpload is a presigned PUT for a new exercise demonstration file.
type MediaUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MediaService interface {
	UploadURL(ctx context.Context, professionalID uuid.UUID, contentType string) (*MediaUpload, error)
	// DownloadURL presigns the exercise's media for the workout's author, its
	// client or an admin.
	DownloadURL(ctx context.Context, caller Principal, workoutID, exerciseID uuid.UUID) (string, error)
}

type mediaService struct {
	files    storage.FileStorage
	plans    PlanService
	expiry   time.Duration
	calendar Calendar
}

// NewMediaService accepts nil files; calls then fail with ErrMediaUnavailable.
func NewMediaService(files storage.FileStorage, plans PlanService, expiry time.Duration, calendar Calendar) MediaService {
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	return &mediaService{files: files, plans: plans, expiry: expiry, calendar: calendar}
}

func (s *mediaService) UploadURL(ctx context.Context, professionalID uuid.UUID, contentType string) (*MediaUpload, error) {
	if s.files == nil {
		return nil, ErrMediaUnavailable
	}
	key, err := storage.ExerciseMediaKey(professionalID, contentType)
	if err != nil {
		return nil, invalid("%v", err)
	}
	u, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, err
	}
	return &MediaUpload{Key: key, UploadURL: u, ExpiresAt: s.calendar.now().Add(s.expiry)}, nil
}

func (s *mediaService) DownloadURL(ctx context.Context, caller Principal, workoutID, exerciseID uuid.UUID) (string, error) {
	if s.files == nil {
		return "", ErrMediaUnavailable
	}
	w, err := s.plans.GetWorkout(ctx, caller, workoutID)
	if err != nil {
		return "", err
	}
	e, ok := w.Exercise(exerciseID)
	if !ok {
		return "", ErrExerciseNotFound
	}
	if e.MediaKey == "" {
		return "", ErrMediaNotFound
	}
	return s.files.GeneratePresignedDownloadURL(ctx, e.MediaKey, s.expiry)
}
