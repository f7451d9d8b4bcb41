package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 30 * 24 * time.Hour

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Organization string `json:"organization"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token          string `json:"token"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// handleRegister creates a user together with their organization and owner
// membership.
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and password required"})
	}
	if req.Name == "" {
		req.Name = req.Email
	}
	if req.Organization == "" {
		req.Organization = req.Name + "'s Organization"
	}

	if _, err := s.store.GetUserByEmail(c.Request().Context(), req.Email); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
	} else if !errors.Is(err, store.ErrNotFound) {
		c.Logger().Error("register lookup failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Error("bcrypt error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	hashStr := string(hash)

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &hashStr,
		Timezone:     s.cfg.Timezone,
		WeekStart:    s.cfg.WeekStart,
		CreatedAt:    now,
	}
	org := model.NewOrganization(uuid.NewString(), req.Organization)
	member := model.Member{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           model.RoleOwner,
		CreatedAt:      now,
	}

	ctx := c.Request().Context()
	err = s.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.CreateOrganization(ctx, org); err != nil {
			return err
		}
		return tx.CreateMember(ctx, member)
	})
	if err != nil {
		c.Logger().Error("register failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	token, err := s.issueSession(c, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, UserID: user.ID, OrganizationID: org.ID})
}

// handleLogin verifies credentials and issues a session token.
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	user, err := s.store.GetUserByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	if err != nil {
		c.Logger().Error("login lookup failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	// Placeholder users have no password and cannot log in
	if user.PasswordHash == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	token, err := s.issueSession(c, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, UserID: user.ID})
}

func (s *Server) issueSession(c echo.Context, userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	token := hex.EncodeToString(raw)

	now := time.Now().UTC()
	sess := model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(c.Request().Context(), sess); err != nil {
		c.Logger().Error("session create failed: ", err)
		return "", c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return token, nil
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(c echo.Context) error {
	user := c.Get("user").(model.User)
	return c.JSON(http.StatusOK, user)
}

// handleLogout deletes the current session.
func (s *Server) handleLogout(c echo.Context) error {
	token := c.Get("session_token").(string)
	if err := s.store.DeleteSession(c.Request().Context(), token); err != nil {
		c.Logger().Error("logout failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
