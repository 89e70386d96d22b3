package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nightbloom-ai/nightbloom/internal/profile"
	"github.com/nightbloom-ai/nightbloom/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	userProfileCache *cache.Cache // cache for user profiles
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:           driver,
		profile:          profile,
		cacheConfig:      cacheConfig,
		userProfileCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userProfileCache.Close()

	return s.driver.Close()
}

func (s *Store) EnsureUserProfile(ctx context.Context, userID int32) error {
	return s.driver.EnsureUserProfile(ctx, userID)
}

func (s *Store) GetUserProfile(ctx context.Context, find *FindUserProfile) (*UserProfile, error) {
	if find.UserID != nil {
		if value, ok := s.userProfileCache.Get(ctx, userProfileCacheKey(*find.UserID)); ok {
			if userProfile, ok := value.(*UserProfile); ok {
				return userProfile, nil
			}
		}
	}

	userProfile, err := s.driver.GetUserProfile(ctx, find)
	if err != nil {
		return nil, err
	}
	if userProfile != nil {
		s.userProfileCache.Set(ctx, userProfileCacheKey(userProfile.UserID), userProfile)
	}
	return userProfile, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, update *UpdateUserProfile) (int32, error) {
	return s.driver.UpdateUserProfile(ctx, update)
}

// InvalidateUserProfile marks the cached profile view for the user as stale.
// It is the one-way notification consumed after successful writes.
func (s *Store) InvalidateUserProfile(ctx context.Context, userID int32) {
	s.userProfileCache.Delete(ctx, userProfileCacheKey(userID))
}

func userProfileCacheKey(userID int32) string {
	return fmt.Sprintf("user_profile:%d", userID)
}
