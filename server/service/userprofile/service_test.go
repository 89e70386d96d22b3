package userprofile

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/nightbloom-ai/nightbloom/server/internal/errors"
	"github.com/nightbloom-ai/nightbloom/store"
)

// fakeStore is an in-memory Store recording call order.
type fakeStore struct {
	profiles map[int32]*store.UserProfile
	calls    []string

	ensureErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[int32]*store.UserProfile{}}
}

func (f *fakeStore) EnsureUserProfile(_ context.Context, userID int32) error {
	f.calls = append(f.calls, "ensure")
	if f.ensureErr != nil {
		return f.ensureErr
	}
	if _, ok := f.profiles[userID]; !ok {
		f.profiles[userID] = &store.UserProfile{UserID: userID, Kinks: []string{}}
	}
	return nil
}

func (f *fakeStore) GetUserProfile(_ context.Context, find *store.FindUserProfile) (*store.UserProfile, error) {
	f.calls = append(f.calls, "get")
	if find.UserID == nil {
		return nil, errors.New("user_id is required")
	}
	return f.profiles[*find.UserID], nil
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, update *store.UpdateUserProfile) (int32, error) {
	f.calls = append(f.calls, "update")
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	userProfile, ok := f.profiles[update.UserID]
	if !ok {
		return 0, errors.Errorf("no row matched user_id %d", update.UserID)
	}
	if update.Nickname != nil {
		userProfile.Nickname = *update.Nickname
	}
	if update.Gender != nil {
		userProfile.Gender = *update.Gender
	}
	if update.Kinks != nil {
		userProfile.Kinks = append([]string{}, (*update.Kinks)...)
	}
	return update.UserID, nil
}

func (f *fakeStore) InvalidateUserProfile(_ context.Context, _ int32) {
	f.calls = append(f.calls, "invalidate")
}

func TestNormalizeKinks(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "empty input",
			input:    nil,
			expected: []string{},
		},
		{
			name:     "trims entries",
			input:    []string{" 捆绑 ", "角色扮演"},
			expected: []string{"捆绑", "角色扮演"},
		},
		{
			name:     "drops blank entries",
			input:    []string{"", "   ", "调教"},
			expected: []string{"调教"},
		},
		{
			name:     "dedupes exact match first wins",
			input:    []string{"a", "b", "a"},
			expected: []string{"a", "b"},
		},
		{
			name:     "duplicates differing only by whitespace collapse",
			input:    []string{"足控", " 足控", "足控 "},
			expected: []string{"足控"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeKinks(tt.input))
		})
	}

	t.Run("truncates to 24 after dedup", func(t *testing.T) {
		input := []string{"足控", " 足控", "足控 ", "", "a", "a"}
		for i := 0; i < 25; i++ {
			input = append(input, fmt.Sprintf("tag-%d", i))
		}
		got := NormalizeKinks(input)
		require.Len(t, got, 24)
		seen := map[string]int{}
		for _, kink := range got {
			seen[kink]++
			assert.NotEmpty(t, strings.TrimSpace(kink))
		}
		assert.Equal(t, 1, seen["足控"])
		for kink, count := range seen {
			assert.Equal(t, 1, count, "duplicate entry %q", kink)
		}
	})
}

func TestValidGender(t *testing.T) {
	assert.True(t, ValidGender(store.GenderMale))
	assert.True(t, ValidGender(store.GenderFemale))
	assert.True(t, ValidGender(store.GenderNonBinary))
	assert.False(t, ValidGender(""))
	assert.False(t, ValidGender("alien"))
	assert.False(t, ValidGender("MALE"))
}

func TestUpdatePreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		err := svc.UpdatePreferences(ctx, 1, store.GenderFemale, []string{" 温柔爱抚 ", "挑逗", "挑逗"})
		require.NoError(t, err)

		userProfile := fs.profiles[1]
		require.NotNil(t, userProfile)
		assert.Equal(t, store.GenderFemale, userProfile.Gender)
		assert.Equal(t, []string{"温柔爱抚", "挑逗"}, userProfile.Kinks)
		// Ensure must precede the keyed update; invalidation follows success.
		assert.Equal(t, []string{"ensure", "update", "invalidate"}, fs.calls)
	})

	t.Run("unauthenticated before any store call", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		err := svc.UpdatePreferences(ctx, 0, store.GenderMale, nil)
		require.Error(t, err)
		assert.True(t, perrors.IsCode(err, perrors.ErrCodeUnauthenticated))
		assert.Empty(t, fs.calls)
	})

	t.Run("invalid gender rejected without touching storage", func(t *testing.T) {
		fs := newFakeStore()
		fs.profiles[1] = &store.UserProfile{UserID: 1, Gender: store.GenderMale, Kinks: []string{"捆绑"}}
		svc := NewService(fs, nil)

		err := svc.UpdatePreferences(ctx, 1, "alien", []string{"x"})
		require.Error(t, err)
		assert.True(t, perrors.IsCode(err, perrors.ErrCodeInvalidGender))
		assert.Empty(t, fs.calls)
		// Stored record untouched.
		assert.Equal(t, store.GenderMale, fs.profiles[1].Gender)
		assert.Equal(t, []string{"捆绑"}, fs.profiles[1].Kinks)
	})

	t.Run("idempotent", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		payload := []string{"足控", "制服诱惑"}
		require.NoError(t, svc.UpdatePreferences(ctx, 2, store.GenderNonBinary, payload))
		first := *fs.profiles[2]

		require.NoError(t, svc.UpdatePreferences(ctx, 2, store.GenderNonBinary, payload))
		second := *fs.profiles[2]

		assert.Equal(t, first.Gender, second.Gender)
		assert.Equal(t, first.Kinks, second.Kinks)
	})

	t.Run("persistence failure passes message through", func(t *testing.T) {
		fs := newFakeStore()
		fs.updateErr = errors.New("connection reset by peer")
		svc := NewService(fs, nil)

		err := svc.UpdatePreferences(ctx, 3, store.GenderMale, nil)
		require.Error(t, err)
		assert.True(t, perrors.IsCode(err, perrors.ErrCodePersistenceFailure))
		var perr *perrors.ProfileError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "connection reset by peer", perr.UserMessage())
		// No invalidation on failure.
		assert.NotContains(t, fs.calls, "invalidate")
	})

	t.Run("ensure failure aborts before update", func(t *testing.T) {
		fs := newFakeStore()
		fs.ensureErr = errors.New("ensure failed")
		svc := NewService(fs, nil)

		err := svc.UpdatePreferences(ctx, 4, store.GenderMale, nil)
		require.Error(t, err)
		assert.Equal(t, []string{"ensure"}, fs.calls)
	})
}

func TestUpdateNickname(t *testing.T) {
	ctx := context.Background()

	t.Run("trims and persists", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		require.NoError(t, svc.UpdateNickname(ctx, 1, "  夜来香  "))
		assert.Equal(t, "夜来香", fs.profiles[1].Nickname)
		assert.Equal(t, []string{"ensure", "update", "invalidate"}, fs.calls)
	})

	t.Run("rejects empty", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		err := svc.UpdateNickname(ctx, 1, "   ")
		require.Error(t, err)
		assert.True(t, perrors.IsCode(err, perrors.ErrCodeInvalidNickname))
		assert.Empty(t, fs.calls)
	})

	t.Run("rejects over 100 characters", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		err := svc.UpdateNickname(ctx, 1, strings.Repeat("夜", 101))
		require.Error(t, err)
		assert.True(t, perrors.IsCode(err, perrors.ErrCodeInvalidNickname))
	})

	t.Run("accepts exactly 100 characters", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		require.NoError(t, svc.UpdateNickname(ctx, 1, strings.Repeat("夜", 100)))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		err := svc.UpdateNickname(ctx, -1, "x")
		require.Error(t, err)
		assert.True(t, perrors.IsCode(err, perrors.ErrCodeUnauthenticated))
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("absent record is nil", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs, nil)

		userProfile, err := svc.GetProfile(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, userProfile)
	})

	t.Run("existing record", func(t *testing.T) {
		fs := newFakeStore()
		fs.profiles[1] = &store.UserProfile{UserID: 1, Gender: store.GenderFemale, Kinks: []string{"亲吻增强"}}
		svc := NewService(fs, nil)

		userProfile, err := svc.GetProfile(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, userProfile)
		assert.Equal(t, store.GenderFemale, userProfile.Gender)
	})
}
