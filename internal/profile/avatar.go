package profile

import (
	"context"
	"fmt"
	"strings"
)

// ObjectStore uploads public objects and returns their URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// AvatarService uploads avatars and points the profile at them.
type AvatarService struct {
	objects ObjectStore
	repo    *Repository
}

// NewAvatarService creates a new avatar service.
func NewAvatarService(objects ObjectStore, repo *Repository) *AvatarService {
	return &AvatarService{objects: objects, repo: repo}
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Upload stores the image and records its URL on the profile. The two steps
// are independent: a failed profile update leaves the uploaded object behind.
func (s *AvatarService) Upload(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("avatar must be an image, got %q", contentType)
	}
	ext, ok := extensions[contentType]
	if !ok {
		ext = "img"
	}

	key := fmt.Sprintf("avatars/%s.%s", userID, ext)
	url, err := s.objects.Put(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.repo.setAvatarURL(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}
