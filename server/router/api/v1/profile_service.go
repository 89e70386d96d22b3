package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nightbloom-ai/nightbloom/server/auth"
	perrors "github.com/nightbloom-ai/nightbloom/server/internal/errors"
)

// UpdatePreferencesRequest is the preference writer's input payload.
type UpdatePreferencesRequest struct {
	Gender string   `json:"gender"`
	Kinks  []string `json:"kinks"`
}

// UpdateNicknameRequest is the nickname writer's input payload.
type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

// WriteResponse is the result shape of every profile mutation.
type WriteResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ProfileResponse is the bootstrap read payload consumed by the editor.
type ProfileResponse struct {
	Nickname string   `json:"nickname"`
	Gender   string   `json:"gender"`
	Kinks    []string `json:"kinks"`
}

func (s *APIV1Service) getMyProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return c.JSON(http.StatusUnauthorized, WriteResponse{Ok: false, Error: "authentication required"})
	}

	userProfile, err := s.ProfileService.GetProfile(ctx, userID)
	if err != nil {
		return c.JSON(statusForError(err), WriteResponse{Ok: false, Error: userMessage(err)})
	}

	resp := ProfileResponse{Kinks: []string{}}
	if userProfile != nil {
		resp.Nickname = userProfile.Nickname
		resp.Gender = userProfile.Gender
		if userProfile.Kinks != nil {
			resp.Kinks = userProfile.Kinks
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) updatePreferences(c echo.Context) error {
	ctx := c.Request().Context()
	// Identity is checked before the payload is even read.
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return c.JSON(http.StatusUnauthorized, WriteResponse{Ok: false, Error: "authentication required"})
	}
	if !s.writeLimiter.AllowUser(userID) {
		return c.JSON(http.StatusTooManyRequests, WriteResponse{Ok: false, Error: "too many requests"})
	}

	req := &UpdatePreferencesRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, WriteResponse{Ok: false, Error: "malformed request body"})
	}

	if err := s.ProfileService.UpdatePreferences(ctx, userID, req.Gender, req.Kinks); err != nil {
		return c.JSON(statusForError(err), WriteResponse{Ok: false, Error: userMessage(err)})
	}
	return c.JSON(http.StatusOK, WriteResponse{Ok: true})
}

func (s *APIV1Service) updateNickname(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return c.JSON(http.StatusUnauthorized, WriteResponse{Ok: false, Error: "authentication required"})
	}
	if !s.writeLimiter.AllowUser(userID) {
		return c.JSON(http.StatusTooManyRequests, WriteResponse{Ok: false, Error: "too many requests"})
	}

	req := &UpdateNicknameRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, WriteResponse{Ok: false, Error: "malformed request body"})
	}

	if err := s.ProfileService.UpdateNickname(ctx, userID, req.Nickname); err != nil {
		return c.JSON(statusForError(err), WriteResponse{Ok: false, Error: userMessage(err)})
	}
	return c.JSON(http.StatusOK, WriteResponse{Ok: true})
}

func statusForError(err error) int {
	switch perrors.GetCodeFromError(err, perrors.ErrCodePersistenceFailure) {
	case perrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case perrors.ErrCodeInvalidGender, perrors.ErrCodeInvalidNickname:
		return http.StatusBadRequest
	case perrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	if perr, ok := err.(*perrors.ProfileError); ok {
		return perr.UserMessage()
	}
	return err.Error()
}
