package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/firebase"
	"github.com/Adnan8101/bharatverse/pkg/errors"
	"github.com/Adnan8101/bharatverse/pkg/response"
)

type AuthMiddleware struct {
	firebaseAuth *firebase.FirebaseAuthClient
}

func NewAuthMiddleware(firebaseAuth *firebase.FirebaseAuthClient) *AuthMiddleware {
	return &AuthMiddleware{
		firebaseAuth: firebaseAuth,
	}
}

// Authenticate verifies the Firebase ID token and resolves the caller's chat
// participant ID: the fixed admin identity for admin-role tokens, the uid
// (store ID) for everyone else. WebSocket upgrades cannot set headers, so a
// token query parameter is accepted as a fallback.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return response.Error(c, errors.Unauthorized("Missing authentication token", nil))
		}

		uid, role, err := m.firebaseAuth.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		participantID := uid
		if role == "admin" {
			participantID = entity.AdminParticipantID
		}

		c.Set("uid", uid)
		c.Set("role", role)
		c.Set("participantID", participantID)

		return next(c)
	}
}

// AdminOnly must run after Authenticate.
func (m *AuthMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Get("role") != "admin" {
			return response.Error(c, errors.Forbidden("Admin access required", nil))
		}
		return next(c)
	}
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.QueryParam("token")
}

// ParticipantID returns the chat identity set by Authenticate.
func ParticipantID(c echo.Context) string {
	if id, ok := c.Get("participantID").(string); ok {
		return id
	}
	return ""
}
