package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/labstack/echo/v4"
)

// authMiddleware checks for a valid session token and loads the user.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		ctx := c.Request().Context()
		session, err := s.store.GetSessionByToken(ctx, token)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		if err != nil {
			c.Logger().Error("session lookup failed: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		if time.Now().After(session.ExpiresAt) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
		}

		user, err := s.store.GetUser(ctx, session.UserID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		c.Set("user", user)
		c.Set("session_token", token)
		return next(c)
	}
}

// organizationMiddleware resolves the :organization path parameter and the
// acting user's membership in it. Every downstream handler runs with an
// explicit organization + member context instead of ambient state.
func (s *Server) organizationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		orgID := c.Param("organization")
		ctx := c.Request().Context()

		org, err := s.store.GetOrganization(ctx, orgID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "organization not found"})
		}
		if err != nil {
			c.Logger().Error("organization lookup failed: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}

		user := c.Get("user").(model.User)
		member, err := s.store.GetMemberByUser(ctx, org.ID, user.ID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "not a member of this organization"})
		}
		if err != nil {
			c.Logger().Error("member lookup failed: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}

		c.Set("organization", org)
		c.Set("member", member)
		return next(c)
	}
}
