// Package userprofile implements profile-field mutations for the
// personalization subsystem. Every mutation follows the same shape:
// authenticate, validate, normalize, one atomic keyed write, invalidate
// the cached profile view. The writer is stateless per call and safe to
// retry: re-submitting the same payload produces the same stored state.
package userprofile

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	perrors "github.com/nightbloom-ai/nightbloom/server/internal/errors"
	"github.com/nightbloom-ai/nightbloom/server/internal/observability"
	"github.com/nightbloom-ai/nightbloom/store"
)

const (
	// MaxKinks is the cap applied to the kink set during normalization.
	MaxKinks = store.MaxKinks
	// MaxNicknameLength is the maximum nickname length in runes.
	MaxNicknameLength = 100
)

// Store is the interface for store operations needed by the profile service.
type Store interface {
	EnsureUserProfile(ctx context.Context, userID int32) error
	GetUserProfile(ctx context.Context, find *store.FindUserProfile) (*store.UserProfile, error)
	UpdateUserProfile(ctx context.Context, update *store.UpdateUserProfile) (int32, error)
	InvalidateUserProfile(ctx context.Context, userID int32)
}

// Service is the preference writer.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new profile service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ValidGender reports whether the value is one of the allowed gender
// categories. The empty string (unset) is not a valid write value.
func ValidGender(gender string) bool {
	switch gender {
	case store.GenderMale, store.GenderFemale, store.GenderNonBinary:
		return true
	}
	return false
}

// NormalizeKinks sanitizes a proposed kink sequence: trim each entry, drop
// empty results, deduplicate by exact match (first occurrence wins), and
// truncate to MaxKinks. Normalization never rejects input — gender is
// validated, kinks are repaired; the two policies are deliberately
// asymmetric and must not be unified.
func NormalizeKinks(kinks []string) []string {
	normalized := make([]string, 0, len(kinks))
	seen := make(map[string]struct{}, len(kinks))
	for _, kink := range kinks {
		trimmed := strings.TrimSpace(kink)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
		if len(normalized) == MaxKinks {
			break
		}
	}
	return normalized
}

// GetProfile returns the user's profile record, or nil when none exists.
func (s *Service) GetProfile(ctx context.Context, userID int32) (*store.UserProfile, error) {
	if userID <= 0 {
		return nil, perrors.Unauthenticated("no valid session")
	}
	userProfile, err := s.store.GetUserProfile(ctx, &store.FindUserProfile{UserID: &userID})
	if err != nil {
		return nil, perrors.PersistenceFailure(err)
	}
	return userProfile, nil
}

// UpdatePreferences validates and persists the gender + kinks field group
// as one atomic update. Gender and kinks always travel together; a write
// never partially applies.
func (s *Service) UpdatePreferences(ctx context.Context, userID int32, gender string, kinks []string) error {
	reqCtx := observability.NewRequestContext(s.logger, "update_preferences", userID)
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest("update_preferences")
	defer func() {
		metrics.RecordDuration("update_preferences", time.Since(reqCtx.StartTime))
	}()

	// Identity first, before any data is touched.
	if userID <= 0 {
		return perrors.Unauthenticated("no valid session")
	}
	if !ValidGender(gender) {
		return perrors.InvalidGender(gender)
	}
	normalized := NormalizeKinks(kinks)

	// The row must exist before the keyed update; updating zero rows is an
	// error by contract.
	if err := s.store.EnsureUserProfile(ctx, userID); err != nil {
		reqCtx.Error("failed to ensure profile record", err)
		metrics.RecordFailure("update_preferences")
		return perrors.PersistenceFailure(err)
	}

	if _, err := s.store.UpdateUserProfile(ctx, &store.UpdateUserProfile{
		UserID: userID,
		Gender: &gender,
		Kinks:  &normalized,
	}); err != nil {
		reqCtx.Error("failed to update preferences", err)
		metrics.RecordFailure("update_preferences")
		return perrors.PersistenceFailure(err)
	}

	s.store.InvalidateUserProfile(ctx, userID)
	reqCtx.Info("preferences updated",
		slog.Int("kink_count", len(normalized)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return nil
}

// UpdateNickname is the single-field sibling of UpdatePreferences: trim,
// reject empty, reject over-long, one keyed update, invalidate on success.
func (s *Service) UpdateNickname(ctx context.Context, userID int32, nickname string) error {
	reqCtx := observability.NewRequestContext(s.logger, "update_nickname", userID)
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest("update_nickname")
	defer func() {
		metrics.RecordDuration("update_nickname", time.Since(reqCtx.StartTime))
	}()

	if userID <= 0 {
		return perrors.Unauthenticated("no valid session")
	}
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return perrors.InvalidNickname("nickname must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNicknameLength {
		return perrors.InvalidNickname("nickname must not exceed 100 characters")
	}

	if err := s.store.EnsureUserProfile(ctx, userID); err != nil {
		reqCtx.Error("failed to ensure profile record", err)
		metrics.RecordFailure("update_nickname")
		return perrors.PersistenceFailure(err)
	}

	if _, err := s.store.UpdateUserProfile(ctx, &store.UpdateUserProfile{
		UserID:   userID,
		Nickname: &trimmed,
	}); err != nil {
		reqCtx.Error("failed to update nickname", err)
		metrics.RecordFailure("update_nickname")
		return perrors.PersistenceFailure(err)
	}

	s.store.InvalidateUserProfile(ctx, userID)
	reqCtx.Info("nickname updated", slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return nil
}
