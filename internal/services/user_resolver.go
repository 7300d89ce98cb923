package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/photomap/backend/internal/models"
)

// UserResolver makes sure a local User exists for a Slack user id. Known users
// come from an expiring LRU in front of the store.
type UserResolver struct {
	store UserStore
	cache *expirable.LRU[string, models.User]
}

func NewUserResolver(store UserStore, cacheSize int, ttl time.Duration) *UserResolver {
	return &UserResolver{
		store: store,
		cache: expirable.NewLRU[string, models.User](cacheSize, nil, ttl),
	}
}

// EnsureUser returns the stored user, creating it from users.info on first
// sight. Existing records are never refreshed. A users.info failure is
// returned to the caller.
func (r *UserResolver) EnsureUser(ctx context.Context, session Platform, userID string) (*models.User, error) {
	if u, ok := r.cache.Get(userID); ok {
		return &u, nil
	}

	u, err := r.store.GetUser(ctx, userID)
	if err == nil {
		r.cache.Add(userID, *u)
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	profile, err := session.UserInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("users.info: %w", err)
	}

	u = &models.User{
		ID:                userID,
		Username:          profile.Name,
		FullName:          profile.RealName,
		IgnoreFilesShared: false,
		CreatedAt:         time.Now().UTC(),
	}
	if err := r.store.PutUser(ctx, u); err != nil {
		return nil, fmt.Errorf("put user: %w", err)
	}
	r.cache.Add(userID, *u)
	return u, nil
}

// MarkIgnoreFilesShared opts the user out of future confirmations.
func (r *UserResolver) MarkIgnoreFilesShared(ctx context.Context, userID string) error {
	r.cache.Remove(userID)
	if err := r.store.SetIgnoreFilesShared(ctx, userID); err != nil {
		return err
	}
	// Drop anything a concurrent EnsureUser cached while the write was in flight.
	r.cache.Remove(userID)
	return nil
}
