package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/nightbloom-ai/nightbloom/internal/profile"
	"github.com/nightbloom-ai/nightbloom/server/auth"
	"github.com/nightbloom-ai/nightbloom/server/middleware"
	"github.com/nightbloom-ai/nightbloom/server/service/userprofile"
	"github.com/nightbloom-ai/nightbloom/store"
)

type APIV1Service struct {
	Secret         string
	Profile        *profile.Profile
	Store          *store.Store
	ProfileService *userprofile.Service

	authenticator *auth.Authenticator
	// writeLimiter bounds per-user mutation throughput; writes are
	// user-initiated so the limit is generous.
	writeLimiter *middleware.RateLimiter
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store, logger *slog.Logger) *APIV1Service {
	return &APIV1Service{
		Secret:         secret,
		Profile:        profile,
		Store:          store,
		ProfileService: userprofile.NewService(store, logger),
		authenticator:  auth.NewAuthenticator(secret),
		writeLimiter:   middleware.NewRateLimiter(5, 10),
	}
}

// RegisterRoutes registers the API routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1", echomiddleware.CORS(), s.sessionMiddleware)

	group.GET("/profile/me", s.getMyProfile)
	group.POST("/profile/preferences", s.updatePreferences)
	group.POST("/profile/nickname", s.updateNickname)
}

// sessionMiddleware resolves caller identity from the Authorization header.
// It never rejects by itself; handlers enforce authentication so that the
// wire result keeps the {ok, error} shape.
func (s *APIV1Service) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := s.authenticator.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
		if err == nil && claims != nil {
			ctx := auth.SetUserIDInContext(c.Request().Context(), claims.UserID)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		return next(c)
	}
}
