package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightbloom-ai/nightbloom/internal/profile"
	"github.com/nightbloom-ai/nightbloom/server/auth"
	"github.com/nightbloom-ai/nightbloom/store"
)

const testSecret = "test-secret"

// fakeDriver is an in-memory store.Driver counting calls.
type fakeDriver struct {
	profiles  map[int32]*store.UserProfile
	callCount int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{profiles: map[int32]*store.UserProfile{}}
}

func (f *fakeDriver) GetDB() *sql.DB { return nil }
func (f *fakeDriver) Close() error   { return nil }

func (f *fakeDriver) EnsureUserProfile(_ context.Context, userID int32) error {
	f.callCount++
	if _, ok := f.profiles[userID]; !ok {
		f.profiles[userID] = &store.UserProfile{UserID: userID, Kinks: []string{}}
	}
	return nil
}

func (f *fakeDriver) GetUserProfile(_ context.Context, find *store.FindUserProfile) (*store.UserProfile, error) {
	f.callCount++
	if find.UserID == nil {
		return nil, errors.New("user_id is required")
	}
	return f.profiles[*find.UserID], nil
}

func (f *fakeDriver) UpdateUserProfile(_ context.Context, update *store.UpdateUserProfile) (int32, error) {
	f.callCount++
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

func newTestService(t *testing.T) (*APIV1Service, *fakeDriver, *echo.Echo) {
	t.Helper()
	driver := newFakeDriver()
	st := store.New(driver, &profile.Profile{Mode: "dev"})
	t.Cleanup(func() { _ = st.Close() })

	svc := NewAPIV1Service(testSecret, &profile.Profile{Mode: "dev"}, st, nil)
	e := echo.New()
	svc.RegisterRoutes(e)
	return svc, driver, e
}

func accessToken(t *testing.T, userID int32) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(userID, testSecret, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeWrite(t *testing.T, rec *httptest.ResponseRecorder) WriteResponse {
	t.Helper()
	var resp WriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestUpdatePreferences_Unauthenticated(t *testing.T) {
	_, driver, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/profile/preferences", "", `{"gender":"male","kinks":[]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeWrite(t, rec)
	assert.False(t, resp.Ok)
	assert.Contains(t, resp.Error, "authentication")
	// No store calls attempted.
	assert.Zero(t, driver.callCount)
}

func TestUpdatePreferences_InvalidGender(t *testing.T) {
	_, driver, e := newTestService(t)
	driver.profiles[1] = &store.UserProfile{UserID: 1, Gender: store.GenderMale, Kinks: []string{"捆绑"}}

	rec := doJSON(e, http.MethodPost, "/api/v1/profile/preferences", accessToken(t, 1), `{"gender":"alien","kinks":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeWrite(t, rec)
	assert.False(t, resp.Ok)
	assert.Contains(t, resp.Error, "invalid gender")
	// Stored record untouched.
	assert.Equal(t, store.GenderMale, driver.profiles[1].Gender)
	assert.Equal(t, []string{"捆绑"}, driver.profiles[1].Kinks)
}

func TestUpdatePreferences_Success(t *testing.T) {
	_, driver, e := newTestService(t)

	body := `{"gender":"non_binary","kinks":[" 足控 ","足控","","角色扮演"]}`
	rec := doJSON(e, http.MethodPost, "/api/v1/profile/preferences", accessToken(t, 7), body)
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeWrite(t, rec)
	assert.True(t, resp.Ok)
	assert.Empty(t, resp.Error)

	stored := driver.profiles[7]
	require.NotNil(t, stored)
	assert.Equal(t, store.GenderNonBinary, stored.Gender)
	assert.Equal(t, []string{"足控", "角色扮演"}, stored.Kinks)
}

func TestUpdatePreferences_MalformedBody(t *testing.T) {
	_, _, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/profile/preferences", accessToken(t, 1), `{"gender":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeWrite(t, rec)
	assert.False(t, resp.Ok)
}

func TestUpdateNickname(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, driver, e := newTestService(t)
		rec := doJSON(e, http.MethodPost, "/api/v1/profile/nickname", accessToken(t, 2), `{"nickname":" 夜来香 "}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeWrite(t, rec).Ok)
		assert.Equal(t, "夜来香", driver.profiles[2].Nickname)
	})

	t.Run("too long", func(t *testing.T) {
		_, _, e := newTestService(t)
		body, err := json.Marshal(UpdateNicknameRequest{Nickname: strings.Repeat("夜", 101)})
		require.NoError(t, err)
		rec := doJSON(e, http.MethodPost, "/api/v1/profile/nickname", accessToken(t, 2), string(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, decodeWrite(t, rec).Ok)
	})
}

func TestGetMyProfile(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		_, _, e := newTestService(t)
		rec := doJSON(e, http.MethodGet, "/api/v1/profile/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("absent record yields empty profile", func(t *testing.T) {
		_, _, e := newTestService(t)
		rec := doJSON(e, http.MethodGet, "/api/v1/profile/me", accessToken(t, 5), "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Gender)
		assert.Empty(t, resp.Kinks)
	})

	t.Run("existing record", func(t *testing.T) {
		_, driver, e := newTestService(t)
		driver.profiles[5] = &store.UserProfile{
			UserID: 5,
			Gender: store.GenderFemale,
			Kinks:  []string{"温柔爱抚", "挑逗"},
		}
		rec := doJSON(e, http.MethodGet, "/api/v1/profile/me", accessToken(t, 5), "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, store.GenderFemale, resp.Gender)
		assert.Equal(t, []string{"温柔爱抚", "挑逗"}, resp.Kinks)
	})
}
