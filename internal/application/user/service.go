// Package user handles profile reads and updates for the authenticated account.
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-retail-api/internal/domain"
	"github.com/go-retail-api/internal/pkg/validate"
)

// avatarURLTTL bounds how long a presigned avatar link stays fetchable.
const avatarURLTTL = 15 * time.Minute

type Service interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type avatarStore interface {
	UploadAvatar(ctx context.Context, userID, b64Data string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	repo    userStore
	avatars avatarStore
}

func NewService(repo userStore, avatars avatarStore) Service {
	return &service{repo: repo, avatars: avatars}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.attachAvatarURL(ctx, u)
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.E(domain.ErrBadRequest, err.Error())
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.AvatarBase64 != nil && s.avatars != nil {
		key, err := s.avatars.UploadAvatar(ctx, userID, *req.AvatarBase64)
		if err != nil {
			return nil, domain.E(domain.ErrBadRequest, "Avatar image could not be processed.")
		}
		updates["avatar_key"] = key
	}
	if len(updates) == 0 {
		return s.GetProfile(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *service) attachAvatarURL(ctx context.Context, u *domain.User) {
	if u.AvatarKey == "" || s.avatars == nil {
		return
	}
	url, err := s.avatars.PresignedURL(ctx, u.AvatarKey, avatarURLTTL)
	if err != nil {
		slog.Warn("failed to presign avatar url", "user_id", u.UserID, "err", err)
		return
	}
	u.AvatarURL = url
}
